// Package gesture provides the pinch and open-palm hand gesture
// classifier and the debounce state machine that turns noisy per-frame
// classifications into discrete session actions.
package gesture

import "github.com/ayusman/repcoach/internal/detector"

// Kind is the per-frame gesture classification.
type Kind string

const (
	None     Kind = "none"
	Pinch    Kind = "pinch"
	OpenPalm Kind = "open_palm"
)

// Classifier thresholds. Distances are normalized by palm scale (wrist
// to middle MCP) so they hold at any distance from the camera. Open
// palm is deliberately stricter than pinch: it additionally requires a
// minimum on-screen hand size and finger spread, because a palm shape
// occurs far more often in natural motion than a held pinch.
const (
	PinchRatioMax      = 0.32
	MinHandScore       = 0.5
	MinPalmArea        = 0.02
	PalmExtensionRatio = 1.40
	PalmSpreadRatio    = 1.10

	degeneratePalmScale = 1e-6
)

// Classify classifies the best hand in the frame. It is stateless: one
// frame in, one Kind out. A nil or empty frame yields None.
//
// The pinch check runs even for a low-score hand and takes priority;
// a partially visible hand pinching is still a deliberate pinch.
func Classify(frame *detector.HandFrame) Kind {
	hand := bestHand(frame)
	if hand == nil {
		return None
	}

	scale := hand.PalmScale()
	if scale < degeneratePalmScale {
		return None
	}

	pinchDist := detector.Distance(hand.Points[detector.ThumbTip], hand.Points[detector.IndexTip])
	if pinchDist/scale < PinchRatioMax {
		return Pinch
	}

	if hand.Score < MinHandScore {
		return None
	}
	if isOpenPalm(hand, scale) {
		return OpenPalm
	}

	return None
}

// bestHand returns the highest-score hand in the frame, or nil.
func bestHand(frame *detector.HandFrame) *detector.HandLandmarks {
	if frame == nil || len(frame.Hands) == 0 {
		return nil
	}
	best := &frame.Hands[0]
	for i := 1; i < len(frame.Hands); i++ {
		if frame.Hands[i].Score > best.Score {
			best = &frame.Hands[i]
		}
	}
	return best
}

func isOpenPalm(hand *detector.HandLandmarks, scale float64) bool {
	if hand.BoundingBoxArea() < MinPalmArea {
		return false
	}

	wrist := hand.Points[detector.Wrist]
	tips := []int{detector.IndexTip, detector.MiddleTip, detector.RingTip, detector.PinkyTip}
	var sum float64
	for _, tip := range tips {
		sum += detector.Distance(wrist, hand.Points[tip])
	}
	if sum/float64(len(tips))/scale < PalmExtensionRatio {
		return false
	}

	spread := detector.Distance(hand.Points[detector.IndexTip], hand.Points[detector.PinkyTip])
	return spread/scale >= PalmSpreadRatio
}
