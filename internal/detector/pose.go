package detector

import "time"

// Joint identifies a body landmark following the MediaPipe pose convention.
// Only the joints used for exercise angle tracking are named here; the
// detector may report others and they are carried through untouched.
type Joint int

// Pose landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/pose_landmarker
const (
	Nose          Joint = 0
	LeftShoulder  Joint = 11
	RightShoulder Joint = 12
	LeftElbow     Joint = 13
	RightElbow    Joint = 14
	LeftWrist     Joint = 15
	RightWrist    Joint = 16
	LeftHip       Joint = 23
	RightHip      Joint = 24
	LeftKnee      Joint = 25
	RightKnee     Joint = 26
	LeftAnkle     Joint = 27
	RightAnkle    Joint = 28
)

// PoseFrame holds the body keypoints detected in a single camera frame.
// Absent joints are simply missing from the map. A frame is immutable
// once produced and is discarded after angle extraction.
type PoseFrame struct {
	Width      int                `json:"width"`
	Height     int                `json:"height"`
	Mirrored   bool               `json:"mirrored"`
	CapturedAt time.Time          `json:"captured_at"`
	Joints     map[Joint]Keypoint `json:"joints"`
}

// Joint returns the keypoint for the given joint id, if it was detected.
func (f *PoseFrame) Joint(id Joint) (Keypoint, bool) {
	if f == nil || f.Joints == nil {
		return Keypoint{}, false
	}
	kp, ok := f.Joints[id]
	return kp, ok
}

// HandFrame holds the hands detected in a single camera frame.
type HandFrame struct {
	Width      int             `json:"width"`
	Height     int             `json:"height"`
	Mirrored   bool            `json:"mirrored"`
	CapturedAt time.Time       `json:"captured_at"`
	Hands      []HandLandmarks `json:"hands"`
}

// Age returns how long ago the frame was captured. Callers gate on this
// before acting on hand input so that a stalled detector cannot keep
// driving gestures with stale data.
func (f *HandFrame) Age(now time.Time) time.Duration {
	if f == nil {
		return time.Duration(1<<63 - 1)
	}
	return now.Sub(f.CapturedAt)
}

// Observation bundles everything detected in one processed camera frame.
// Either field may be nil when the corresponding detector found nothing.
type Observation struct {
	Pose  *PoseFrame `json:"pose,omitempty"`
	Hands *HandFrame `json:"hands,omitempty"`
}
