package detector

// CountFingers returns the number of extended fingers on an upright hand.
//
// The thumb is extended when its tip lies outside its IP joint horizontally:
// left of it for a right hand, right of it otherwise. Every other finger is
// extended when its tip is above (smaller Y than) its PIP joint.
func (h *HandLandmarks) CountFingers() int {
	if h == nil {
		return 0
	}

	count := 0

	tip, joint := h.Points[ThumbTip], h.Points[ThumbIP]
	if h.Handedness == HandRight {
		if tip.X < joint.X {
			count++
		}
	} else if tip.X > joint.X {
		count++
	}

	for _, t := range FingerTips[1:] {
		if h.Points[t].Y < h.Points[t-2].Y {
			count++
		}
	}

	return count
}

// CountFingers returns the extended-finger count of each hand, in order.
func CountFingers(hands []HandLandmarks) []int {
	counts := make([]int, len(hands))
	for i := range hands {
		counts[i] = hands[i].CountFingers()
	}
	return counts
}
