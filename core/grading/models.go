package grading

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// StudentRecord is one roster row: identity fields plus the raw grade inputs.
// Grades and Performance hold the text typed by staff; they are only changed through
// SetGrade and SetPerformance.
type StudentRecord struct {
	ID          string            `json:"id"`
	Position    int               `json:"position"`
	LastName    string            `json:"last_name"`
	FirstName   string            `json:"first_name"`
	MiddleName  string            `json:"middle_name"`
	Strand      string            `json:"strand"`
	Department  string            `json:"department"` // upper-cased
	Grades      map[string]string `json:"grades"`
	Performance string            `json:"performance"`
}

// Clone returns a copy of r that does not share its Grades map.
func (r StudentRecord) Clone() StudentRecord {
	grades := make(map[string]string, len(r.Grades))
	for code, val := range r.Grades {
		grades[code] = val
	}
	r.Grades = grades
	return r
}

// Roster is an uploaded file's worth of StudentRecords.
type Roster struct {
	ID         string          `json:"id"`
	FileName   string          `json:"file_name"`
	UploadedAt time.Time       `json:"uploaded_at"` // UTC
	Students   []StudentRecord `json:"students,omitempty"`
}

// Result is the computed projection of a StudentRecord for one view.
type Result struct {
	WrittenTotal      int    `json:"written_total"`
	WrittenRating     string `json:"written_rating"`
	PerformanceRating int    `json:"performance_rating"`
	FinalGrade        string `json:"final_grade"`
	Remarks           string `json:"remarks"`
}

// ViewRow pairs a visible StudentRecord with its computed Result.
type ViewRow struct {
	Record StudentRecord `json:"record"`
	Result Result        `json:"result"`
}

// NewRoster contains information needed to import a roster.
// Rows are the already-parsed spreadsheet rows, keyed by header.
type NewRoster struct {
	FileName string                   `json:"file_name" validate:"required,notblank"`
	Rows     []map[string]interface{} `json:"rows" validate:"min=1"`
}

func (nr *NewRoster) Validate(validate *validator.Validate) error {
	return validate.Struct(nr)
}

// IngestIssue reports a cell dropped during import.
type IngestIssue struct {
	Row    int    `json:"row"` // 1-based, header excluded
	Header string `json:"header"`
	Value  string `json:"value"`
}
