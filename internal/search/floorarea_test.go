package search

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFloorAreaRange(t *testing.T) {
	tests := []struct {
		name    string
		label   string
		wantMin float64
		wantMax float64
	}{
		{name: "at most", label: "1000m² 이하", wantMin: 0, wantMax: 1000},
		{name: "at least", label: "50001m² 이상", wantMin: 50001, wantMax: math.Inf(1)},
		{name: "between", label: "1001m² ~ 5000m²", wantMin: 1001, wantMax: 5000},
		{name: "between with thousands separators", label: "10,001m² ~ 50,000m²", wantMin: 10001, wantMax: 50000},
		{name: "all sentinel", label: "all", wantMin: 0, wantMax: math.Inf(1)},
		{name: "empty", label: "", wantMin: 0, wantMax: math.Inf(1)},
		{name: "unrecognized label", label: "gigantic", wantMin: 0, wantMax: math.Inf(1)},
		{name: "at most without a number", label: "이하", wantMin: 0, wantMax: math.Inf(1)},
		{name: "at least without a number", label: "이상", wantMin: 0, wantMax: math.Inf(1)},
		{name: "between with malformed upper bound", label: "1001 ~ abc", wantMin: 1001, wantMax: math.Inf(1)},
		{name: "between with malformed lower bound", label: "abc ~ 5000", wantMin: 0, wantMax: 5000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ParseFloorAreaRange(tt.label)
			assert.Equal(t, tt.wantMin, r.Min)
			assert.Equal(t, tt.wantMax, r.Max)
			assert.LessOrEqual(t, r.Min, r.Max)
		})
	}
}

func TestRangeContains(t *testing.T) {
	r := ParseFloorAreaRange("1001m² ~ 5000m²")

	assert.True(t, r.Contains(1001))
	assert.True(t, r.Contains(5000))
	assert.True(t, r.Contains(3000))
	assert.False(t, r.Contains(1000))
	assert.False(t, r.Contains(5001))

	assert.True(t, Unbounded().Contains(0))
	assert.True(t, Unbounded().Contains(math.MaxFloat64))
}
