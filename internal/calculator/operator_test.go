package calculator

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeOperator(t *testing.T) {
	tests := []struct {
		symbol int
		want   Operator
		ok     bool
	}{
		{symbol: 1, want: OpAdd, ok: true},
		{symbol: 2, want: OpSubtract, ok: true},
		{symbol: 3, want: OpMultiply, ok: true},
		{symbol: 4, want: OpDivide, ok: true},
		{symbol: 0, want: OpNone, ok: false},
		{symbol: 5, want: OpNone, ok: false},
		{symbol: 10, want: OpNone, ok: false},
	}

	for _, tt := range tests {
		got, ok := DecodeOperator(tt.symbol)
		assert.Equal(t, tt.ok, ok, "symbol %d", tt.symbol)
		assert.Equal(t, tt.want, got, "symbol %d", tt.symbol)
	}
}

func TestOperator_Apply(t *testing.T) {
	tests := []struct {
		name string
		op   Operator
		a, b int
		want string
	}{
		{name: "add", op: OpAdd, a: 3, b: 4, want: "7"},
		{name: "subtract", op: OpSubtract, a: 2, b: 5, want: "-3"},
		{name: "multiply", op: OpMultiply, a: 6, b: 7, want: "42"},
		{name: "divide exact", op: OpDivide, a: 4, b: 2, want: "2.0"},
		{name: "divide half", op: OpDivide, a: 5, b: 2, want: "2.5"},
		{name: "divide rounds to two decimals", op: OpDivide, a: 2, b: 3, want: "0.67"},
		{name: "divide by ten", op: OpDivide, a: 1, b: 10, want: "0.1"},
		{name: "divide rounds half to even", op: OpDivide, a: 1, b: 8, want: "0.12"},
		{name: "divide rounds half to even above", op: OpDivide, a: 5, b: 8, want: "0.62"},
		{name: "divide rounds half to even past one", op: OpDivide, a: 9, b: 8, want: "1.12"},
		{name: "divide by zero", op: OpDivide, a: 5, b: 0, want: ErrorMarker},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.op.Apply(tt.a, tt.b).String())
		})
	}
}

func TestOperator_DivideByZeroCarriesError(t *testing.T) {
	r := OpDivide.Apply(3, 0)

	assert.True(t, r.IsError())
	assert.True(t, errors.Is(r.Err, ErrDivisionByZero))
}

func TestParseOperator(t *testing.T) {
	for _, op := range []Operator{OpAdd, OpSubtract, OpMultiply, OpDivide} {
		got, ok := ParseOperator(op.Symbol())
		require.True(t, ok)
		assert.Equal(t, op, got)
	}

	_, ok := ParseOperator("%")
	assert.False(t, ok)
}

func TestResult_MarshalJSON(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		want   string
	}{
		{name: "integer", result: OpAdd.Apply(3, 4), want: `7`},
		{name: "quotient", result: OpDivide.Apply(4, 2), want: `2.0`},
		{name: "error", result: OpDivide.Apply(4, 0), want: `"Error"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.result)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
		})
	}
}
