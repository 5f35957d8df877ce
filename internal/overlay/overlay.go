// Package overlay renders the calculator state and hand skeletons onto video
// frames and encodes them for streaming.
package overlay

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/handcalc/internal/calculator"
	"github.com/ayusman/handcalc/internal/detector"
)

// StoppedText is drawn on the placeholder frame while streaming is off.
const StoppedText = "Camera Stopped"

var (
	colorStage    = color.RGBA{R: 255, G: 255, B: 0, A: 0}
	colorOperand  = color.RGBA{R: 0, G: 255, B: 0, A: 0}
	colorOperator = color.RGBA{R: 0, G: 255, B: 255, A: 0}
	colorResult   = color.RGBA{R: 255, G: 255, B: 255, A: 0}
	colorStopped  = color.RGBA{R: 255, G: 0, B: 0, A: 0}
	colorJoint    = color.RGBA{R: 255, G: 0, B: 0, A: 0}
	colorBone     = color.RGBA{R: 224, G: 224, B: 224, A: 0}
)

// HandConnections are the landmark pairs joined when drawing a hand.
var HandConnections = [][2]int{
	{detector.Wrist, detector.ThumbCMC},
	{detector.ThumbCMC, detector.ThumbMCP},
	{detector.ThumbMCP, detector.ThumbIP},
	{detector.ThumbIP, detector.ThumbTip},
	{detector.Wrist, detector.IndexMCP},
	{detector.IndexMCP, detector.IndexPIP},
	{detector.IndexPIP, detector.IndexDIP},
	{detector.IndexDIP, detector.IndexTip},
	{detector.IndexMCP, detector.MiddleMCP},
	{detector.MiddleMCP, detector.MiddlePIP},
	{detector.MiddlePIP, detector.MiddleDIP},
	{detector.MiddleDIP, detector.MiddleTip},
	{detector.MiddleMCP, detector.RingMCP},
	{detector.RingMCP, detector.RingPIP},
	{detector.RingPIP, detector.RingDIP},
	{detector.RingDIP, detector.RingTip},
	{detector.RingMCP, detector.PinkyMCP},
	{detector.Wrist, detector.PinkyMCP},
	{detector.PinkyMCP, detector.PinkyPIP},
	{detector.PinkyPIP, detector.PinkyDIP},
	{detector.PinkyDIP, detector.PinkyTip},
}

// Line is one row of overlay text.
type Line struct {
	Text   string
	Origin image.Point
	Color  color.RGBA
}

// Lines returns the text rows describing state. The stage row is always
// present; the others appear once their value is set.
func Lines(state calculator.State) []Line {
	lines := []Line{{
		Text:   fmt.Sprintf("Stage: %s", state.Stage),
		Origin: image.Pt(10, 30),
		Color:  colorStage,
	}}

	if state.OperandA != nil {
		lines = append(lines, Line{Text: fmt.Sprintf("A: %d", *state.OperandA), Origin: image.Pt(10, 70), Color: colorOperand})
	}
	if state.OperandB != nil {
		lines = append(lines, Line{Text: fmt.Sprintf("B: %d", *state.OperandB), Origin: image.Pt(10, 110), Color: colorOperand})
	}
	if state.Operator != calculator.OpNone {
		lines = append(lines, Line{Text: fmt.Sprintf("Op: %s", state.Operator.Symbol()), Origin: image.Pt(10, 150), Color: colorOperator})
	}
	if state.Result != nil {
		lines = append(lines, Line{Text: fmt.Sprintf("Result: %s", state.Result), Origin: image.Pt(10, 190), Color: colorResult})
	}
	return lines
}

// DrawState writes the state rows onto frame.
func DrawState(frame *gocv.Mat, state calculator.State) {
	for _, l := range Lines(state) {
		gocv.PutText(frame, l.Text, l.Origin, gocv.FontHersheySimplex, 1, l.Color, 2)
	}
}

// DrawHands draws the landmark skeleton of each hand. Landmark coordinates
// are normalized to the frame size.
func DrawHands(frame *gocv.Mat, hands []detector.HandLandmarks) {
	w, h := frame.Cols(), frame.Rows()
	if w == 0 || h == 0 {
		return
	}

	for i := range hands {
		pts := pixelPoints(&hands[i], w, h)
		for _, c := range HandConnections {
			gocv.Line(frame, pts[c[0]], pts[c[1]], colorBone, 2)
		}
		for _, p := range pts {
			gocv.Circle(frame, p, 3, colorJoint, -1)
		}
	}
}

func pixelPoints(hand *detector.HandLandmarks, w, h int) [detector.NumLandmarks]image.Point {
	var pts [detector.NumLandmarks]image.Point
	for i, p := range hand.Points {
		pts[i] = image.Pt(int(p.X*float64(w)), int(p.Y*float64(h)))
	}
	return pts
}

// StoppedFrame returns a black width x height frame labelled StoppedText.
// The caller must Close it.
func StoppedFrame(width, height int) gocv.Mat {
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), height, width, gocv.MatTypeCV8UC3)
	gocv.PutText(&frame, StoppedText, image.Pt(150, 280), gocv.FontHersheySimplex, 1.5, colorStopped, 3)
	return frame
}

// EncodeJPEG encodes frame as JPEG and returns a Go-owned copy of the bytes.
func EncodeJPEG(frame gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncode(".jpg", frame)
	if err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	defer buf.Close()

	src := buf.GetBytes()
	out := make([]byte, len(src))
	copy(out, src)
	return out, nil
}

// StoppedJPEG renders and encodes the stopped placeholder frame.
func StoppedJPEG(width, height int) ([]byte, error) {
	frame := StoppedFrame(width, height)
	defer frame.Close()
	return EncodeJPEG(frame)
}
