package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPerformanceScale_isMonotonic(t *testing.T) {
	for name, scale := range scales {
		t.Run(name, func(t *testing.T) {
			for i := 1; i < len(scale); i++ {
				assert.Greater(t, scale[i].Threshold, scale[i-1].Threshold)
				assert.GreaterOrEqual(t, scale[i].Grade, scale[i-1].Grade)
			}
			for x := 0.0; x < 5; x += 0.05 {
				assert.LessOrEqual(t, scale.Lookup(x), scale.Lookup(x+0.05), "score %v", x)
			}
		})
	}
}

func TestPerformanceScale_Lookup(t *testing.T) {
	tests := []struct {
		name  string
		scale PerformanceScale
		score float64
		want  int
	}{
		{name: "coarse: below lowest threshold", scale: CoarseScale, score: -1, want: 60},
		{name: "coarse: 0", scale: CoarseScale, score: 0, want: 60},
		{name: "coarse: 0.99", scale: CoarseScale, score: 0.99, want: 60},
		{name: "coarse: 1", scale: CoarseScale, score: 1, want: 75},
		{name: "coarse: 2.5", scale: CoarseScale, score: 2.5, want: 79},
		{name: "coarse: 3", scale: CoarseScale, score: 3, want: 85},
		{name: "coarse: 4.99", scale: CoarseScale, score: 4.99, want: 95},
		{name: "coarse: 5", scale: CoarseScale, score: 5, want: 100},
		{name: "coarse: above 5", scale: CoarseScale, score: 7, want: 100},
		{name: "fine: 0", scale: FineScale, score: 0, want: 60},
		{name: "fine: 1.59", scale: FineScale, score: 1.59, want: 75},
		{name: "fine: 1.6", scale: FineScale, score: 1.6, want: 76},
		{name: "fine: 2.95", scale: FineScale, score: 2.95, want: 84},
		{name: "fine: 4.1", scale: FineScale, score: 4.1, want: 95},
		{name: "fine: 4.99", scale: FineScale, score: 4.99, want: 99},
		{name: "fine: 5", scale: FineScale, score: 5, want: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.scale.Lookup(tt.score))
		})
	}
}

func TestPerformanceScale_LookupRaw(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{raw: "", want: 0},
		{raw: "abc", want: 0},
		{raw: "NaN", want: 0},
		{raw: "0", want: 60},
		{raw: " 3 ", want: 85},
		{raw: "4.5", want: 95},
		{raw: "5", want: 100},
		{raw: ".5", want: 60},
		{raw: "1e0", want: 75},
		{raw: "4abc", want: 95},
		{raw: "3.2.1", want: 85},
		{raw: "-1", want: 60},
		{raw: "Inf", want: 0},
		{raw: "0x1p2", want: 60},
		{raw: "Infinity", want: 100},
		{raw: "-Infinity", want: 60},
		{raw: "1e999", want: 100},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, CoarseScale.LookupRaw(tt.raw))
		})
	}
}

func TestScaleByName(t *testing.T) {
	s, ok := ScaleByName(" Fine ")
	assert.True(t, ok)
	assert.Equal(t, FineScale, s)

	_, ok = ScaleByName("lol")
	assert.False(t, ok)
}
