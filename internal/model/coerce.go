package model

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// CoerceNumber defensively converts a raw stored value into a float64.
// Numbers pass through; strings are parsed after stripping thousands
// separators; everything else (nil, maps, unparsable text) becomes 0.
// It never fails.
func CoerceNumber(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(n, ",", ""))
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return f
	default:
		return 0
	}
}
