package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoerceNumber(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
	}{
		{name: "float64 passes through", in: 1234.5, want: 1234.5},
		{name: "int passes through", in: 7, want: 7},
		{name: "int64 passes through", in: int64(42), want: 42},
		{name: "json number", in: json.Number("99.5"), want: 99.5},
		{name: "plain numeric string", in: "850", want: 850},
		{name: "string with thousands separators", in: "12,345.67", want: 12345.67},
		{name: "string with surrounding whitespace", in: "  300 ", want: 300},
		{name: "empty string", in: "", want: 0},
		{name: "whitespace only", in: "   ", want: 0},
		{name: "separators only", in: ",,,", want: 0},
		{name: "non-numeric text", in: "약 1200평", want: 0},
		{name: "nil", in: nil, want: 0},
		{name: "map", in: map[string]any{"value": 3}, want: 0},
		{name: "slice", in: []any{1, 2}, want: 0},
		{name: "bool", in: true, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CoerceNumber(tt.in))
		})
	}
}
