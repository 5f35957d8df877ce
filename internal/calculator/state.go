package calculator

import "encoding/json"

// Stage is the calculator's position in the A, B, operator, result sequence.
type Stage int

const (
	StageAwaitingA Stage = iota
	StageAwaitingB
	StageAwaitingOperator
	StageShowingResult
)

// String returns the short name shown on the overlay.
func (s Stage) String() string {
	switch s {
	case StageAwaitingA:
		return "A"
	case StageAwaitingB:
		return "B"
	case StageAwaitingOperator:
		return "Operation"
	case StageShowingResult:
		return "Result"
	default:
		return "Unknown"
	}
}

// MarshalJSON encodes the stage by name.
func (s Stage) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// State is a snapshot of the calculator. Unset fields are nil.
type State struct {
	Stage    Stage    `json:"stage"`
	OperandA *int     `json:"operand_a"`
	OperandB *int     `json:"operand_b"`
	Operator Operator `json:"operator"`
	Result   *Result  `json:"result"`
}

// clone returns a deep copy so callers never share pointers with the machine.
func (s State) clone() State {
	out := State{Stage: s.Stage, Operator: s.Operator}
	if s.OperandA != nil {
		a := *s.OperandA
		out.OperandA = &a
	}
	if s.OperandB != nil {
		b := *s.OperandB
		out.OperandB = &b
	}
	if s.Result != nil {
		r := *s.Result
		out.Result = &r
	}
	return out
}
