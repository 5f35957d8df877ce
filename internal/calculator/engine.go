package calculator

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/ayusman/handcalc/internal/gesture"
	"github.com/ayusman/handcalc/internal/timeutil"
)

// Config holds the tunables of the calculator core.
type Config struct {
	// BufferSize is the number of identical frames needed to confirm a symbol.
	BufferSize int
	// Cooldown is the minimum spacing between confirmed symbols.
	Cooldown time.Duration
	// ResultDisplay is how long a result is shown before auto reset.
	ResultDisplay time.Duration
	// HistorySize is the number of completed calculations kept.
	HistorySize int
}

// DefaultConfig returns a Config with the standard timings.
func DefaultConfig() Config {
	return Config{
		BufferSize:    gesture.DefaultBufferSize,
		Cooldown:      gesture.DefaultCooldown,
		ResultDisplay: DefaultResultDisplay,
		HistorySize:   DefaultHistorySize,
	}
}

// Outcome reports what one observed frame did to the engine.
type Outcome struct {
	// Processed is false when the frame was skipped: processing disabled or
	// no hands in view.
	Processed bool
	// Signal is the aggregated finger count of the frame.
	Signal int
	// Symbol is the confirmed symbol, valid when Confirmed is set.
	Symbol    int
	Confirmed bool
	// Transition is the machine's reaction to a confirmed symbol.
	Transition *Transition
}

// Engine is the calculator's context object. It owns the stabilizer, the
// state machine and the history, and is driven by a single processing loop
// through Observe and Tick. Snapshot methods may be called concurrently from
// other goroutines.
type Engine struct {
	mu         sync.RWMutex
	stabilizer *gesture.Stabilizer
	machine    *Machine
	history    *History
	enabled    atomic.Bool
}

// NewEngine creates an enabled Engine in StageAwaitingA.
func NewEngine(cfg Config, clock timeutil.Clock) *Engine {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	history := NewHistory(cfg.HistorySize)
	e := &Engine{
		stabilizer: gesture.NewStabilizer(cfg.BufferSize, cfg.Cooldown, clock),
		machine:    NewMachine(cfg.ResultDisplay, history, clock),
		history:    history,
	}
	e.enabled.Store(true)
	return e
}

// Observe processes the hands detected in one frame. Frames are ignored
// while the engine is disabled, and frames without hands are sensor gaps
// that leave the stabilizer untouched.
func (e *Engine) Observe(hands []gesture.HandCount) Outcome {
	if !e.enabled.Load() || len(hands) == 0 {
		return Outcome{}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	out := Outcome{Processed: true, Signal: gesture.Aggregate(hands)}

	symbol, ok := e.stabilizer.Observe(out.Signal)
	if !ok {
		return out
	}
	out.Symbol = symbol
	out.Confirmed = true

	t := e.machine.Apply(symbol)
	out.Transition = &t
	return out
}

// Tick applies the result display timeout. It runs on every loop iteration,
// including while processing is disabled.
func (e *Engine) Tick() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.machine.Tick()
}

// Reset returns the machine to StageAwaitingA and clears the stabilizer and
// its cooldown. History is kept.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.machine.Reset()
	e.stabilizer.Reset()
}

// SetEnabled toggles whether observed frames are processed.
func (e *Engine) SetEnabled(enabled bool) {
	e.enabled.Store(enabled)
}

// Enabled reports whether observed frames are processed.
func (e *Engine) Enabled() bool {
	return e.enabled.Load()
}

// State returns a snapshot of the calculator state.
func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.machine.State()
}

// History returns the formatted history lines, oldest first.
func (e *Engine) History() []string {
	return e.history.Strings()
}

// Entries returns the history entries, oldest first.
func (e *Engine) Entries() []Entry {
	return e.history.Snapshot()
}

// LoadHistory seeds the history log, typically from persisted calculations.
func (e *Engine) LoadHistory(entries []Entry) {
	e.history.Load(entries)
}
