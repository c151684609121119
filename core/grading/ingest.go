package grading

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/google/uuid"

	"github.com/learningopt/immersion/core"
)

// Roster headers, matched after upper-casing and trimming.
const (
	HeaderLastName    = "LAST NAME"
	HeaderFirstName   = "FIRST NAME"
	HeaderMiddleName  = "MIDDLE NAME"
	HeaderStrand      = "STRAND"
	HeaderDepartment  = "DEPARTMENT"
	HeaderPerformance = "PERFORMANCE APPRAISAL"
)

// cellString renders a parsed spreadsheet cell as the text staff would see.
func cellString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return core.CleanString(val)
	case json.Number:
		return val.String()
	case float64:
		if val == math.Trunc(val) && math.Abs(val) < 1e15 {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return cellString(float64(val))
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return ""
	default:
		return core.CleanString(fmt.Sprint(val))
	}
}

// NormalizeRows turns raw spreadsheet rows into StudentRecords.
// Header keys are upper-cased and trimmed; unknown headers are dropped, missing grade
// columns default to "", and blank rows are skipped. Cells that would not pass
// SetGrade/SetPerformance, and conflicting cells of duplicate headers, are dropped
// and reported as IngestIssues.
func (c *Catalog) NormalizeRows(rows []map[string]interface{}) ([]StudentRecord, []IngestIssue) {
	codes := c.AllCodes()
	records := make([]StudentRecord, 0, len(rows))
	var issues []IngestIssue

	for i, raw := range rows {
		keys := make([]string, 0, len(raw))
		for key := range raw {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		// headers that normalize alike: the first non-empty cell in key order wins
		row := make(map[string]string, len(raw))
		var dupes []IngestIssue
		blank := true
		for _, key := range keys {
			s := cellString(raw[key])
			header := core.CleanString(key, true /* upper */)
			if prev := row[header]; prev != "" {
				if s != "" && s != prev {
					dupes = append(dupes, IngestIssue{Row: i + 1, Header: header, Value: s})
				}
				continue
			}
			row[header] = s
			if s != "" {
				blank = false
			}
		}
		if blank {
			continue
		}
		issues = append(issues, dupes...)

		rec := StudentRecord{
			ID:         uuid.NewString(),
			Position:   len(records),
			LastName:   row[HeaderLastName],
			FirstName:  row[HeaderFirstName],
			MiddleName: row[HeaderMiddleName],
			Strand:     row[HeaderStrand],
			Department: core.CleanString(row[HeaderDepartment], true /* upper */),
			Grades:     make(map[string]string, len(codes)),
		}

		for _, code := range codes {
			val := row[code]
			max, _ := c.maxScore(code)
			if !ValidGradeInput(val, max) {
				issues = append(issues, IngestIssue{Row: i + 1, Header: code, Value: val})
				val = ""
			}
			rec.Grades[code] = val
		}

		if perf := row[HeaderPerformance]; ValidPerformanceInput(perf) {
			rec.Performance = perf
		} else {
			issues = append(issues, IngestIssue{Row: i + 1, Header: HeaderPerformance, Value: perf})
		}

		records = append(records, rec)
	}
	return records, issues
}
