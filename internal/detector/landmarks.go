// Package detector provides pose and hand detection interfaces and types
// for the RepCoach motion tracking pipeline.
package detector

import "math"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Keypoint is a detected 2D point in normalized image coordinates with a
// per-point confidence in [0,1].
type Keypoint struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Confidence float64 `json:"confidence"`
}

// Distance returns the Euclidean distance between two keypoints.
func Distance(a, b Keypoint) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Keypoint `json:"points"`
	Handedness string                 `json:"handedness"` // "Left" or "Right"
	Score      float64                `json:"score"`
}

// PalmScale returns the wrist to middle-finger-MCP distance, used to
// normalize finger distances so they are invariant to hand size and
// distance from the camera.
func (h *HandLandmarks) PalmScale() float64 {
	return Distance(h.Points[Wrist], h.Points[MiddleMCP])
}

// BoundingBoxArea returns the area of the landmark bounding box in
// normalized image units.
func (h *HandLandmarks) BoundingBoxArea() float64 {
	minX, maxX := h.Points[0].X, h.Points[0].X
	minY, maxY := h.Points[0].Y, h.Points[0].Y
	for _, p := range h.Points[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return (maxX - minX) * (maxY - minY)
}
