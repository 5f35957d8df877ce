// Package calculator implements the gesture-driven two-operand calculator:
// the stage state machine, its arithmetic and the bounded history log.
package calculator

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// ErrDivisionByZero is carried by a Result whose divisor was zero.
var ErrDivisionByZero = errors.New("division by zero")

// ErrorMarker is how a failed Result is rendered.
const ErrorMarker = "Error"

// Operator is an arithmetic operation selected by gesture.
type Operator int

const (
	// OpNone means no operator has been selected.
	OpNone Operator = iota
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
)

// DecodeOperator maps a confirmed symbol to an operator.
// Only symbols 1-4 are operator codes.
func DecodeOperator(symbol int) (Operator, bool) {
	switch symbol {
	case 1:
		return OpAdd, true
	case 2:
		return OpSubtract, true
	case 3:
		return OpMultiply, true
	case 4:
		return OpDivide, true
	default:
		return OpNone, false
	}
}

// Symbol returns the printable operator sign, or "" for OpNone.
func (o Operator) Symbol() string {
	switch o {
	case OpAdd:
		return "+"
	case OpSubtract:
		return "-"
	case OpMultiply:
		return "*"
	case OpDivide:
		return "/"
	default:
		return ""
	}
}

// String implements fmt.Stringer.
func (o Operator) String() string {
	return o.Symbol()
}

// ParseOperator is the inverse of Symbol.
func ParseOperator(s string) (Operator, bool) {
	for _, o := range []Operator{OpAdd, OpSubtract, OpMultiply, OpDivide} {
		if o.Symbol() == s {
			return o, true
		}
	}
	return OpNone, false
}

// MarshalJSON encodes the operator as its sign, or null when unset.
func (o Operator) MarshalJSON() ([]byte, error) {
	if o == OpNone {
		return []byte("null"), nil
	}
	return json.Marshal(o.Symbol())
}

// Apply computes a op b. Division is rounded to two decimals and a zero
// divisor produces an error Result instead of failing.
func (o Operator) Apply(a, b int) Result {
	switch o {
	case OpAdd:
		return Result{Value: float64(a + b)}
	case OpSubtract:
		return Result{Value: float64(a - b)}
	case OpMultiply:
		return Result{Value: float64(a * b)}
	case OpDivide:
		if b == 0 {
			return Result{Err: ErrDivisionByZero}
		}
		return Result{Value: round2(float64(a) / float64(b)), Fractional: true}
	default:
		return Result{}
	}
}

func round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}

// Result is the outcome of a calculation: a number or an error marker.
type Result struct {
	Value float64
	// Fractional marks quotients, which always print with a decimal point.
	Fractional bool
	Err        error
}

// IsError reports whether the calculation failed.
func (r Result) IsError() bool {
	return r.Err != nil
}

// String renders the result the way it appears in history lines:
// "7", "2.5", "2.0" or "Error".
func (r Result) String() string {
	if r.Err != nil {
		return ErrorMarker
	}
	if !r.Fractional {
		return strconv.FormatFloat(r.Value, 'f', -1, 64)
	}
	s := strconv.FormatFloat(r.Value, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// MarshalJSON encodes a numeric result as a number and a failed one as "Error".
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Err != nil {
		return json.Marshal(ErrorMarker)
	}
	return []byte(r.String()), nil
}
