package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu       sync.Mutex
	hands    []HandLandmarks
	sequence [][]HandLandmarks
	err      error
	calls    int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetSequence queues per-frame results. Each Detect call pops one entry;
// once the queue is empty Detect falls back to the hands set by SetHands.
func (m *MockDetector) SetSequence(frames [][]HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequence = frames
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect was called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.sequence) > 0 {
		next := m.sequence[0]
		m.sequence = m.sequence[1:]
		return next, nil
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// HandWithFingers returns an upright hand with the first n fingers extended,
// counting from the thumb. The thumb points away from the palm according to
// handedness, so CountFingers reports exactly n (clamped to 0-5).
func HandWithFingers(handedness string, n int) HandLandmarks {
	if n < 0 {
		n = 0
	}
	if n > len(FingerTips) {
		n = len(FingerTips)
	}

	hand := HandLandmarks{
		Handedness: handedness,
		Score:      0.95,
	}

	// Laid out for a right hand; mirrored below for a left hand.
	hand.Points[Wrist] = Point3D{X: 0.50, Y: 0.80}
	hand.Points[ThumbCMC] = Point3D{X: 0.46, Y: 0.76}
	hand.Points[ThumbMCP] = Point3D{X: 0.44, Y: 0.71}
	hand.Points[ThumbIP] = Point3D{X: 0.42, Y: 0.67}
	if n >= 1 {
		hand.Points[ThumbTip] = Point3D{X: 0.37, Y: 0.63}
	} else {
		hand.Points[ThumbTip] = Point3D{X: 0.47, Y: 0.68}
	}

	baseX := [4]float64{0.45, 0.50, 0.55, 0.60}
	for f := 0; f < 4; f++ {
		mcp := FingerTips[f+1] - 3
		x := baseX[f]
		hand.Points[mcp] = Point3D{X: x, Y: 0.68}
		if f+1 < n {
			hand.Points[mcp+1] = Point3D{X: x, Y: 0.55}
			hand.Points[mcp+2] = Point3D{X: x, Y: 0.45}
			hand.Points[mcp+3] = Point3D{X: x, Y: 0.35}
		} else {
			hand.Points[mcp+1] = Point3D{X: x, Y: 0.62, Z: -0.05}
			hand.Points[mcp+2] = Point3D{X: x, Y: 0.66, Z: -0.04}
			hand.Points[mcp+3] = Point3D{X: x, Y: 0.70, Z: -0.02}
		}
	}

	if handedness != HandRight {
		for i := range hand.Points {
			hand.Points[i].X = 1 - hand.Points[i].X
		}
	}

	return hand
}

// FistLandmarks returns a preset right hand with every finger curled.
func FistLandmarks() HandLandmarks {
	return HandWithFingers(HandRight, 0)
}

// OpenPalmLandmarks returns a preset right hand with all fingers extended.
func OpenPalmLandmarks() HandLandmarks {
	return HandWithFingers(HandRight, 5)
}
