package grading

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// minPerformanceGrade is returned for scores below the lowest threshold.
const minPerformanceGrade = 60

// Step maps an appraisal threshold to a grade.
type Step struct {
	Threshold float64
	Grade     int
}

// PerformanceScale maps a 0-5 appraisal score to a 60-100 grade.
// Steps are sorted by ascending threshold and grades never decrease.
type PerformanceScale []Step

var (
	CoarseScale = PerformanceScale{
		{0, 60},
		{1, 75},
		{2, 79},
		{3, 85},
		{4, 95},
		{5, 100},
	}

	FineScale = PerformanceScale{
		{0, 60},
		{1, 75},
		{1.2, 75},
		{1.4, 75},
		{1.6, 76},
		{1.8, 77},
		{1.9, 78},
		{2, 79},
		{2.2, 80},
		{2.4, 81},
		{2.6, 82},
		{2.8, 83},
		{2.9, 84},
		{3, 85},
		{3.2, 86},
		{3.4, 87},
		{3.6, 88},
		{3.8, 89},
		{4, 95},
		{4.2, 96},
		{4.4, 97},
		{4.6, 98},
		{4.8, 99},
		{5, 100},
	}

	scales = map[string]PerformanceScale{
		"coarse": CoarseScale,
		"fine":   FineScale,
	}
)

// ScaleByName returns the named scale ("coarse" or "fine").
func ScaleByName(name string) (PerformanceScale, bool) {
	s, ok := scales[strings.ToLower(strings.TrimSpace(name))]
	return s, ok
}

// Lookup returns the grade of the greatest threshold <= score.
func (s PerformanceScale) Lookup(score float64) int {
	grade := minPerformanceGrade
	for _, step := range s {
		if score < step.Threshold {
			break
		}
		grade = step.Grade
	}
	return grade
}

// leadingNumberRegex matches the decimal literal a lenient parser reads before any trailing text.
var leadingNumberRegex = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// parseLeadingFloat reads the leading decimal number of `raw` ("4abc" is 4).
// Hex, "Inf" and "NaN" spellings are not numbers; "Infinity" is.
func parseLeadingFloat(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if m := leadingNumberRegex.FindString(s); m != "" {
		f, err := strconv.ParseFloat(m, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return 0, false
		}
		return f, true
	}
	switch {
	case strings.HasPrefix(s, "Infinity"), strings.HasPrefix(s, "+Infinity"):
		return math.Inf(1), true
	case strings.HasPrefix(s, "-Infinity"):
		return math.Inf(-1), true
	}
	return 0, false
}

// LookupRaw parses the leading number of `raw` and looks it up; input without one (including "") yields 0.
func (s PerformanceScale) LookupRaw(raw string) int {
	score, ok := parseLeadingFloat(raw)
	if !ok {
		return 0
	}
	return s.Lookup(score)
}
