package gesture

import (
	"time"

	"github.com/ayusman/handcalc/internal/timeutil"
)

// Stabilizer defaults.
const (
	// DefaultBufferSize is the number of consecutive identical frames required.
	DefaultBufferSize = 5
	// DefaultCooldown is the minimum spacing between two confirmed symbols.
	DefaultCooldown = 2 * time.Second
)

// Stabilizer converts a noisy stream of per-frame signals into confirmed
// symbols. A symbol is confirmed only when the last N signals are identical
// and nonzero, and the previous confirmation is older than the cooldown.
//
// The buffer is not cleared on confirmation: a gesture that is held keeps
// the buffer unanimous and confirms again once per cooldown window.
//
// Stabilizer is not safe for concurrent use.
type Stabilizer struct {
	size        int
	cooldown    time.Duration
	clock       timeutil.Clock
	buffer      []int
	lastConfirm time.Time
	confirmed   bool
}

// NewStabilizer creates a Stabilizer holding the last size signals.
// Non-positive sizes fall back to DefaultBufferSize and a negative cooldown
// is treated as zero.
func NewStabilizer(size int, cooldown time.Duration, clock timeutil.Clock) *Stabilizer {
	if size <= 0 {
		size = DefaultBufferSize
	}
	if cooldown < 0 {
		cooldown = 0
	}
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Stabilizer{
		size:     size,
		cooldown: cooldown,
		clock:    clock,
		buffer:   make([]int, 0, size),
	}
}

// Observe records one frame signal and reports whether it completed a
// confirmed symbol. It is called once per processed frame.
func (s *Stabilizer) Observe(signal int) (int, bool) {
	if len(s.buffer) >= s.size {
		// Shift buffer left by 1, removing oldest signal
		copy(s.buffer, s.buffer[1:])
		s.buffer = s.buffer[:s.size-1]
	}
	s.buffer = append(s.buffer, signal)

	candidate, ok := s.unanimous()
	if !ok || candidate == 0 {
		return 0, false
	}

	now := s.clock.Now()
	if s.confirmed && now.Sub(s.lastConfirm) <= s.cooldown {
		return 0, false
	}

	s.lastConfirm = now
	s.confirmed = true
	return candidate, true
}

// unanimous returns the common value of a full buffer.
func (s *Stabilizer) unanimous() (int, bool) {
	if len(s.buffer) != s.size {
		return 0, false
	}
	first := s.buffer[0]
	for _, v := range s.buffer[1:] {
		if v != first {
			return 0, false
		}
	}
	return first, true
}

// Reset empties the buffer and forgets the last confirmation time.
func (s *Stabilizer) Reset() {
	s.buffer = s.buffer[:0]
	s.lastConfirm = time.Time{}
	s.confirmed = false
}

// Buffer returns a copy of the buffered signals, oldest first.
func (s *Stabilizer) Buffer() []int {
	out := make([]int, len(s.buffer))
	copy(out, s.buffer)
	return out
}

// Size returns the buffer capacity.
func (s *Stabilizer) Size() int {
	return s.size
}

// Cooldown returns the minimum spacing between confirmations.
func (s *Stabilizer) Cooldown() time.Duration {
	return s.cooldown
}
