package search

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Package search holds the pure filtering/ranking helpers of the discovery
// engine.

// Range is a numeric floor-area interval. Both bounds are inclusive.
type Range struct {
	Min float64
	Max float64
}

// Contains reports whether v falls inside the interval.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Unbounded returns the unrestricted interval [0, +Inf].
func Unbounded() Range {
	return Range{Min: 0, Max: math.Inf(1)}
}

var nonDigits = regexp.MustCompile(`\D`)

// ParseFloorAreaRange turns a floor-area bucket label into an interval.
// Recognized shapes: "X 이하" (at most X), "X 이상" (at least X) and
// "A ~ B" (between). The sentinel "all"/empty and any unrecognized label
// yield the unbounded interval; malformed numbers inside a recognized
// shape coerce to 0 (lower) or +Inf (upper). Never fails.
func ParseFloorAreaRange(label string) Range {
	label = strings.TrimSpace(label)
	if label == "" || label == "all" {
		return Unbounded()
	}

	switch {
	case strings.Contains(label, "이하"):
		return Range{Min: 0, Max: parseBound(nonDigits.ReplaceAllString(label, ""), math.Inf(1))}
	case strings.Contains(label, "이상"):
		return Range{Min: parseBound(nonDigits.ReplaceAllString(label, ""), 0), Max: math.Inf(1)}
	case strings.Contains(label, "~"):
		cleaned := strings.NewReplacer("m²", "", " ", "", ",", "").Replace(label)
		parts := strings.SplitN(cleaned, "~", 2)
		r := Range{Min: parseBound(parts[0], 0), Max: math.Inf(1)}
		if len(parts) > 1 {
			r.Max = parseBound(parts[1], math.Inf(1))
		}
		return r
	}

	return Unbounded()
}

func parseBound(s string, fallback float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return f
}
