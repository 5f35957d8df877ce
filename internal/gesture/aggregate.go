// Package gesture turns per-frame finger counts into confirmed gesture symbols.
package gesture

// MaxFingersPerHand is the largest finger count a single hand can report.
const MaxFingersPerHand = 5

// HandCount is the finger count extracted from one detected hand.
type HandCount struct {
	Fingers    int    // Extended fingers, 0-5
	Handedness string // "Left" or "Right"
}

// Aggregate sums the finger counts of every hand detected in one frame.
// A frame without hands yields 0.
func Aggregate(hands []HandCount) int {
	total := 0
	for _, h := range hands {
		total += h.Fingers
	}
	return total
}
