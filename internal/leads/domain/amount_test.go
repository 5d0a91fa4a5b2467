package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"1.601", 1601},
		{"1.601,50", 1601.5},
		{"invalid", 0},
		{"", 0},
		{"R$ 1.234,56", 1234.56},
		{"1234.56", 1234.56},
		{"1601.00", 1601},
		{"1.5", 1.5},
		{"1.234.567", 1234567},
		{"1.234.56", 0},
		{"250", 250},
		{"0,99", 0.99},
		{"-1.601", -1601},
		{"-", 0},
		{"R$ ,", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.InDelta(t, tt.want, ParseAmount(tt.input), 1e-9)
		})
	}
}
