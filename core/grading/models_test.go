package grading

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learningopt/immersion/core"
)

func TestNewRoster_Validate(t *testing.T) {
	translator := core.NewTranslator()
	validate := core.NewValidator(translator)
	rows := []map[string]interface{}{{HeaderLastName: "Dela Cruz"}}

	tests := []struct {
		name       string
		nr         NewRoster
		wantFields []string
	}{
		{name: "valid", nr: NewRoster{FileName: "batch.xlsx", Rows: rows}},
		{name: "no file name", nr: NewRoster{Rows: rows}, wantFields: []string{"file_name"}},
		{name: "blank file name", nr: NewRoster{FileName: "  ", Rows: rows}, wantFields: []string{"file_name"}},
		{name: "no rows", nr: NewRoster{FileName: "batch.xlsx"}, wantFields: []string{"rows"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := core.TranslateValidationErrors(tt.nr.Validate(validate), translator)
			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}
			var vErr *core.ValidationError
			require.True(t, errors.As(err, &vErr))
			fields := make([]string, 0, len(vErr.Fields))
			for _, f := range vErr.Fields {
				fields = append(fields, f.Field)
			}
			assert.Equal(t, tt.wantFields, fields)
		})
	}
}

func TestStudentRecord_Clone(t *testing.T) {
	rec := StudentRecord{ID: "1", Grades: map[string]string{"WI": "5"}}
	clone := rec.Clone()
	clone.Grades["WI"] = "9"

	assert.Equal(t, "5", rec.Grades["WI"])
	assert.Equal(t, rec.ID, clone.ID)
}
