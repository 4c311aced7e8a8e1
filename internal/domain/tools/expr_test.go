package tools

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		expr string
		want float64
	}{
		{"1", 1},
		{"1+2*3", 7},
		{"(1+2)*3", 9},
		{"10 / 4", 2.5},
		{"-3+5", 2},
		{"--3", 3},
		{"-(2+3)*2", -10},
		{"2*-3", -6},
		{".5+.25", 0.75},
		{"8 − 3", 5},
		{"6 × 7", 42},
		{"9 ÷ 3", 3},
		{"1-2-3", -4},
		{"16/4/2", 2},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Evaluate(tt.expr)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestEvaluateRejects(t *testing.T) {
	tests := []struct {
		expr    string
		wantErr error
	}{
		{"", ErrSyntax},
		{"   ", ErrSyntax},
		{"1+", ErrSyntax},
		{"(1+2", ErrSyntax},
		{"1+2)", ErrSyntax},
		{"2**3", ErrSyntax},
		{"1.2.3", ErrSyntax},
		{"Math.max(1,2)", ErrSyntax},
		{"1;2", ErrSyntax},
		{"0x10", ErrSyntax},
		{"1e5", ErrSyntax},
		{"4/0", ErrDivisionByZero},
		{"4/(2-2)", ErrDivisionByZero},
		{strings.Repeat("(", 100) + "1" + strings.Repeat(")", 100), ErrSyntax},
		{strings.Repeat("-", 100) + "1", ErrSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			_, err := Evaluate(tt.expr)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "14", FormatNumber(14))
	assert.Equal(t, "-3", FormatNumber(-3))
	assert.Equal(t, "2.5", FormatNumber(2.5))
	a, b := 0.1, 0.2
	assert.Equal(t, "0.30000000000000004", FormatNumber(a+b))
	assert.Equal(t, "1e+21", FormatNumber(1e21))
	assert.Equal(t, "0", FormatNumber(math.Copysign(0, -1)))
}
