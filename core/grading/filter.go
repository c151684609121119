package grading

// FilterByView returns the records visible in `view`, keeping their order.
// Hidden records are not removed from the roster; other views may still show them.
func FilterByView(records []StudentRecord, view *View) []StudentRecord {
	visible := make([]StudentRecord, 0, len(records))
	for _, r := range records {
		if view.Admits(r.Department) {
			visible = append(visible, r)
		}
	}
	return visible
}
