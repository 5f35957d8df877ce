// Package testdata holds gesture scripts shared by integration tests.
package testdata

import (
	"gocv.io/x/gocv"

	"github.com/ayusman/handcalc/internal/detector"
	"github.com/ayusman/handcalc/internal/gesture"
)

// Frame sizes used by the fixtures.
const (
	FrameWidth  = 720
	FrameHeight = 560
)

// Script is a calculation performed by holding finger counts in order:
// operand A, operand B, then the operator code.
type Script struct {
	Name  string
	Steps []int
	// Want is the history line the script produces.
	Want string
}

// Scripts are complete calculations reachable by gestures.
var Scripts = []Script{
	{Name: "addition", Steps: []int{3, 4, 1}, Want: "3 + 4 = 7"},
	{Name: "subtraction", Steps: []int{2, 5, 2}, Want: "2 - 5 = -3"},
	{Name: "two hands", Steps: []int{8, 2, 3}, Want: "8 * 2 = 16"},
	{Name: "fraction", Steps: []int{7, 2, 4}, Want: "7 / 2 = 3.5"},
	{Name: "whole quotient", Steps: []int{4, 2, 4}, Want: "4 / 2 = 2.0"},
	{Name: "ten", Steps: []int{10, 10, 4}, Want: "10 / 10 = 1.0"},
}

// Hands returns the landmark sets showing total raised fingers. Counts above
// five are split across a right and a left hand.
func Hands(total int) []detector.HandLandmarks {
	if total <= gesture.MaxFingersPerHand {
		return []detector.HandLandmarks{detector.HandWithFingers(detector.HandRight, total)}
	}
	return []detector.HandLandmarks{
		detector.HandWithFingers(detector.HandRight, gesture.MaxFingersPerHand),
		detector.HandWithFingers(detector.HandLeft, total-gesture.MaxFingersPerHand),
	}
}

// BlankFrame returns a black frame. The caller must Close it.
func BlankFrame() gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), FrameHeight, FrameWidth, gocv.MatTypeCV8UC3)
}
