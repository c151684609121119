package grading

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

const (
	writtenWeight     = 0.3
	performanceWeight = 0.7
)

// toFixed2 formats the exact binary value of x with 2 decimals, ties rounding away from zero.
func toFixed2(x float64) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return strconv.FormatFloat(x, 'f', 2, 64)
	}
	sign := ""
	if x < 0 {
		sign = "-"
		x = -x
	}

	// |x|*100 + 0.5 is exact at this precision for grade-sized values
	y := new(big.Float).SetPrec(128).SetFloat64(x)
	y.Mul(y, big.NewFloat(100))
	y.Add(y, big.NewFloat(0.5))
	cents, _ := y.Int(nil) // truncates

	digits := cents.String()
	for len(digits) < 3 {
		digits = "0" + digits
	}
	return sign + digits[:len(digits)-2] + "." + digits[len(digits)-2:]
}

func parseFixed(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// Compute projects raw grade inputs onto the view's Result.
// Unparsable or empty values count as zero; it has no side effects.
func Compute(grades map[string]string, performance string, view *View) Result {
	var total int
	for _, code := range view.TotalFields {
		total += atoiOrZero(grades[code])
	}

	written := 0.0
	if view.Denominator > 0 {
		written = float64(float64(total) / float64(view.Denominator) * 50)
	}
	writtenRating := toFixed2(written + 50)
	perfRating := view.Scale.LookupRaw(performance)
	// derived from the displayed written rating; conversions keep products unfused
	finalGrade := toFixed2(float64(parseFixed(writtenRating)*writtenWeight) + float64(float64(perfRating)*performanceWeight))

	remarks := view.PassRemark
	if parseFixed(finalGrade) < passingGrade {
		remarks = RemarkIncomplete
	}

	return Result{
		WrittenTotal:      total,
		WrittenRating:     writtenRating,
		PerformanceRating: perfRating,
		FinalGrade:        finalGrade,
		Remarks:           remarks,
	}
}

// ComputeRecord is Compute applied to a StudentRecord.
func ComputeRecord(r StudentRecord, view *View) Result {
	return Compute(r.Grades, r.Performance, view)
}
