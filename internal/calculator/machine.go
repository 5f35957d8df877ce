package calculator

import (
	"time"

	"github.com/ayusman/handcalc/internal/timeutil"
)

// DefaultResultDisplay is how long a result stays up before the machine
// re-arms for a new calculation.
const DefaultResultDisplay = 3 * time.Second

// Transition describes the effect of one confirmed symbol on the machine.
type Transition struct {
	Symbol int
	From   Stage
	To     Stage
	// Entry is the completed calculation, set when the machine entered
	// StageShowingResult.
	Entry *Entry
	// Rejected is set when the symbol is not valid input for the stage,
	// such as an operator code outside 1-4.
	Rejected bool
	// Dropped is set when the symbol arrived while a result was displayed.
	Dropped bool
}

// Advanced reports whether the stage changed.
func (t Transition) Advanced() bool {
	return t.From != t.To
}

// Machine drives the calculator stages from confirmed symbols:
//
//	A --symbol--> B --symbol--> Operation --1..4--> Result --timeout--> A
//
// Machine is not safe for concurrent use; Engine serializes access.
type Machine struct {
	clock         timeutil.Clock
	display       time.Duration
	history       *History
	state         State
	resultShownAt time.Time
}

// NewMachine creates a Machine in StageAwaitingA that appends completed
// calculations to history.
func NewMachine(display time.Duration, history *History, clock timeutil.Clock) *Machine {
	if display < 0 {
		display = 0
	}
	if history == nil {
		history = NewHistory(DefaultHistorySize)
	}
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Machine{
		clock:   clock,
		display: display,
		history: history,
	}
}

// Apply feeds a confirmed symbol to the machine.
func (m *Machine) Apply(symbol int) Transition {
	t := Transition{Symbol: symbol, From: m.state.Stage, To: m.state.Stage}

	if symbol < 0 {
		t.Rejected = true
		return t
	}

	switch m.state.Stage {
	case StageAwaitingA:
		a := symbol
		m.state.OperandA = &a
		m.state.Stage = StageAwaitingB

	case StageAwaitingB:
		b := symbol
		m.state.OperandB = &b
		m.state.Stage = StageAwaitingOperator

	case StageAwaitingOperator:
		op, ok := DecodeOperator(symbol)
		if !ok {
			t.Rejected = true
			return t
		}
		result := op.Apply(*m.state.OperandA, *m.state.OperandB)
		now := m.clock.Now()

		m.state.Operator = op
		m.state.Result = &result
		m.state.Stage = StageShowingResult
		m.resultShownAt = now

		entry := Entry{
			OperandA: *m.state.OperandA,
			Operator: op,
			OperandB: *m.state.OperandB,
			Result:   result,
			At:       now,
		}
		m.history.Append(entry)
		t.Entry = &entry

	case StageShowingResult:
		t.Dropped = true
	}

	t.To = m.state.Stage
	return t
}

// Tick re-arms the machine once a result has been displayed for longer than
// the display timeout. It reports whether a reset happened. History is kept.
func (m *Machine) Tick() bool {
	if m.state.Stage != StageShowingResult {
		return false
	}
	if m.clock.Since(m.resultShownAt) <= m.display {
		return false
	}
	m.Reset()
	return true
}

// Reset clears operands, operator and result and returns to StageAwaitingA.
func (m *Machine) Reset() {
	m.state = State{Stage: StageAwaitingA}
	m.resultShownAt = time.Time{}
}

// State returns a copy of the current state.
func (m *Machine) State() State {
	return m.state.clone()
}

// History returns the log completed calculations are appended to.
func (m *Machine) History() *History {
	return m.history
}
