package exercise

import (
	"math"

	"github.com/ayusman/repcoach/internal/detector"
)

// VisibilityFloor is the minimum per-joint confidence for a keypoint to
// participate in angle extraction.
const VisibilityFloor = 0.5

// degenerateRay is the squared ray length below which the angle is
// considered undefined and the extended fallback applies.
const degenerateRay = 1e-6

// Angle returns the angle in degrees at vertex b between rays b->a and
// b->c, in [0,180]. A near-zero-length ray yields 180.0: the joint is
// reported fully extended rather than erroring on a coincident keypoint.
func Angle(a, b, c detector.Keypoint) float64 {
	bax := a.X - b.X
	bay := a.Y - b.Y
	bcx := c.X - b.X
	bcy := c.Y - b.Y

	lenBA := bax*bax + bay*bay
	lenBC := bcx*bcx + bcy*bcy
	if lenBA < degenerateRay || lenBC < degenerateRay {
		return 180.0
	}

	cos := (bax*bcx + bay*bcy) / (math.Sqrt(lenBA) * math.Sqrt(lenBC))
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi
}

// triple is the ordered joint triple whose middle joint is the vertex.
type triple struct {
	a, b, c detector.Joint
}

func sideTriples(m Mode) (left, right triple) {
	switch m {
	case Squat:
		return triple{detector.LeftHip, detector.LeftKnee, detector.LeftAnkle},
			triple{detector.RightHip, detector.RightKnee, detector.RightAnkle}
	case Curl, Pushup:
		return triple{detector.LeftShoulder, detector.LeftElbow, detector.LeftWrist},
			triple{detector.RightShoulder, detector.RightElbow, detector.RightWrist}
	default:
		return triple{detector.LeftShoulder, detector.LeftElbow, detector.LeftWrist},
			triple{detector.RightShoulder, detector.RightElbow, detector.RightWrist}
	}
}

// tripleAngle evaluates one side. ok is false when any of the three
// joints is missing or below the visibility floor.
func tripleAngle(frame *detector.PoseFrame, t triple) (float64, bool) {
	a, okA := frame.Joint(t.a)
	b, okB := frame.Joint(t.b)
	c, okC := frame.Joint(t.c)
	if !okA || !okB || !okC {
		return 0, false
	}
	if a.Confidence < VisibilityFloor || b.Confidence < VisibilityFloor || c.Confidence < VisibilityFloor {
		return 0, false
	}
	return Angle(a, b, c), true
}

// PrimaryAngle extracts the single tracked angle for the mode from a
// pose frame. ok is false when neither side is usable this frame; the
// caller treats that as a data gap, not an error.
//
// Squat and pushup average both sides when both are visible. Curl
// deterministically prefers the left elbow and falls back to the right:
// during curls the free arm routinely occludes one side and averaging a
// half-occluded pair produced unstable readings.
func PrimaryAngle(frame *detector.PoseFrame, m Mode) (float64, bool) {
	if frame == nil {
		return 0, false
	}

	left, right := sideTriples(m)
	la, lok := tripleAngle(frame, left)
	ra, rok := tripleAngle(frame, right)

	if m == Curl {
		if lok {
			return la, true
		}
		if rok {
			return ra, true
		}
		return 0, false
	}

	switch {
	case lok && rok:
		return (la + ra) / 2, true
	case lok:
		return la, true
	case rok:
		return ra, true
	default:
		return 0, false
	}
}
