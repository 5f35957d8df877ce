package gesture

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/handcalc/internal/timeutil"
)

func newTestStabilizer() (*Stabilizer, *timeutil.MockClock) {
	clock := timeutil.NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	return NewStabilizer(DefaultBufferSize, DefaultCooldown, clock), clock
}

// feed observes every signal and returns the confirmed symbols in order.
func feed(s *Stabilizer, signals ...int) []int {
	var confirmed []int
	for _, v := range signals {
		if sym, ok := s.Observe(v); ok {
			confirmed = append(confirmed, sym)
		}
	}
	return confirmed
}

func TestStabilizer_ShortSequenceNeverConfirms(t *testing.T) {
	for n := 1; n < DefaultBufferSize; n++ {
		s, _ := newTestStabilizer()
		signals := make([]int, n)
		for i := range signals {
			signals[i] = 3
		}
		assert.Empty(t, feed(s, signals...), "sequence of length %d", n)
	}
}

func TestStabilizer_UnanimousRunConfirmsOnce(t *testing.T) {
	s, _ := newTestStabilizer()

	got := feed(s, 4, 4, 4, 4, 4)
	require.Equal(t, []int{4}, got)

	// Held gesture inside the cooldown window confirms nothing more.
	assert.Empty(t, feed(s, 4, 4, 4, 4, 4))
}

func TestStabilizer_ConfirmsAgainAfterCooldown(t *testing.T) {
	s, clock := newTestStabilizer()

	require.Equal(t, []int{2}, feed(s, 2, 2, 2, 2, 2))

	clock.Advance(DefaultCooldown)
	assert.Empty(t, feed(s, 2), "cooldown boundary is exclusive")

	clock.Advance(time.Millisecond)
	assert.Equal(t, []int{2}, feed(s, 2), "buffer is kept across confirmations")
}

func TestStabilizer_ZeroNeverConfirms(t *testing.T) {
	s, clock := newTestStabilizer()

	assert.Empty(t, feed(s, 0, 0, 0, 0, 0))
	clock.Advance(time.Hour)
	assert.Empty(t, feed(s, 0, 0, 0, 0, 0, 0, 0))

	// A zero run does not consume the cooldown.
	assert.Equal(t, []int{1}, feed(s, 1, 1, 1, 1, 1))
}

func TestStabilizer_JitterBlocksConfirmation(t *testing.T) {
	s, _ := newTestStabilizer()

	assert.Empty(t, feed(s, 3, 3, 2, 3, 3))
	assert.Empty(t, feed(s, 3, 3), "misread still in buffer")
	assert.Equal(t, []int{3}, feed(s, 3))
}

func TestStabilizer_DifferentSymbolWithinCooldown(t *testing.T) {
	s, clock := newTestStabilizer()

	require.Equal(t, []int{3}, feed(s, 3, 3, 3, 3, 3))

	clock.Advance(time.Second)
	assert.Empty(t, feed(s, 4, 4, 4, 4, 4))

	clock.Advance(1500 * time.Millisecond)
	assert.Equal(t, []int{4}, feed(s, 4))
}

func TestStabilizer_BufferEvictsOldest(t *testing.T) {
	s, _ := newTestStabilizer()

	feed(s, 1, 2, 3, 4, 5, 6, 7)

	want := []int{3, 4, 5, 6, 7}
	if diff := cmp.Diff(want, s.Buffer()); diff != "" {
		t.Errorf("Buffer() mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, s.Buffer(), s.Size())
}

func TestStabilizer_Reset(t *testing.T) {
	s, _ := newTestStabilizer()

	require.Equal(t, []int{5}, feed(s, 5, 5, 5, 5, 5))
	s.Reset()

	assert.Empty(t, s.Buffer())
	assert.Equal(t, []int{5}, feed(s, 5, 5, 5, 5, 5), "reset forgets cooldown")
}

func TestNewStabilizer_Defaults(t *testing.T) {
	s := NewStabilizer(0, -time.Second, nil)

	assert.Equal(t, DefaultBufferSize, s.Size())
	assert.Equal(t, time.Duration(0), s.Cooldown())
}
