package grading

import (
	"regexp"
	"strconv"
)

var (
	gradeInputRegex       = regexp.MustCompile(`^\d{0,3}$`)
	performanceInputRegex = regexp.MustCompile(`^\d*\.?\d{0,2}$`)

	maxPerformance = 5.0
)

// ValidGradeInput reports whether `raw` may be stored as a score capped at `max`:
// empty, or at most 3 digits not exceeding max.
func ValidGradeInput(raw string, max int) bool {
	if !gradeInputRegex.MatchString(raw) {
		return false
	}
	if raw == "" {
		return true
	}
	n, err := strconv.Atoi(raw)
	return err == nil && n <= max
}

// ValidPerformanceInput reports whether `raw` may be stored as an appraisal score:
// empty, or a decimal in [0,5] with at most 2 fractional digits.
func ValidPerformanceInput(raw string) bool {
	if raw == "" {
		return true
	}
	if !performanceInputRegex.MatchString(raw) {
		return false
	}
	n, err := strconv.ParseFloat(raw, 64)
	return err == nil && n >= 0 && n <= maxPerformance
}

// SetGrade stores `raw` for category `code` if the view grades it and the value is valid.
// It returns false and leaves r untouched otherwise.
func (r *StudentRecord) SetGrade(view *View, code, raw string) bool {
	max, ok := view.MaxScore(code)
	if !ok || !ValidGradeInput(raw, max) {
		return false
	}
	if r.Grades == nil {
		r.Grades = make(map[string]string)
	}
	r.Grades[code] = raw
	return true
}

// SetPerformance stores `raw` as the appraisal score if valid.
// It returns false and leaves r untouched otherwise.
func (r *StudentRecord) SetPerformance(raw string) bool {
	if !ValidPerformanceInput(raw) {
		return false
	}
	r.Performance = raw
	return true
}
