package detector

import (
	"math"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results, either as a fixed
// observation or as a scripted sequence.
type MockDetector struct {
	mu    sync.Mutex
	obs   *Observation
	queue []*Observation
	err   error
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetObservation sets the observation returned by every Detect call
// once the scripted queue is drained.
func (m *MockDetector) SetObservation(obs *Observation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.obs = obs
}

// Enqueue appends observations returned one per Detect call, in order.
func (m *MockDetector) Enqueue(obs ...*Observation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, obs...)
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Detect returns the next scripted observation, or the fixed one.
func (m *MockDetector) Detect(frame *gocv.Mat) (*Observation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	if len(m.queue) > 0 {
		next := m.queue[0]
		m.queue = m.queue[1:]
		return next, nil
	}
	if m.obs != nil {
		return m.obs, nil
	}
	return &Observation{}, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// Test fixtures. Angles are produced geometrically so tests can drive the
// angle extraction with known ground truth.

// vertexRay returns the point at the given distance from vertex, rotated
// angleDeg degrees away from the straight-up direction.
func vertexRay(vertex Keypoint, angleDeg, length, conf float64) Keypoint {
	rad := angleDeg * math.Pi / 180
	return Keypoint{
		X:          vertex.X + length*math.Sin(rad),
		Y:          vertex.Y - length*math.Cos(rad),
		Confidence: conf,
	}
}

// CurlPoseFrame returns a pose frame where both elbows form the given
// angle between shoulder and wrist. Joint confidence is 0.95.
func CurlPoseFrame(elbowAngleDeg float64) *PoseFrame {
	frame := &PoseFrame{
		Width:      640,
		Height:     480,
		CapturedAt: time.Now(),
		Joints:     make(map[Joint]Keypoint),
	}

	place := func(shoulder, elbow, wrist Joint, x float64) {
		e := Keypoint{X: x, Y: 0.5, Confidence: 0.95}
		frame.Joints[elbow] = e
		frame.Joints[shoulder] = vertexRay(e, 0, 0.18, 0.95)
		frame.Joints[wrist] = vertexRay(e, elbowAngleDeg, 0.16, 0.95)
	}

	place(LeftShoulder, LeftElbow, LeftWrist, 0.4)
	place(RightShoulder, RightElbow, RightWrist, 0.6)

	return frame
}

// SquatPoseFrame returns a pose frame where both knees form the given
// angle between hip and ankle. Joint confidence is 0.95.
func SquatPoseFrame(kneeAngleDeg float64) *PoseFrame {
	frame := &PoseFrame{
		Width:      640,
		Height:     480,
		CapturedAt: time.Now(),
		Joints:     make(map[Joint]Keypoint),
	}

	place := func(hip, knee, ankle Joint, x float64) {
		k := Keypoint{X: x, Y: 0.6, Confidence: 0.95}
		frame.Joints[knee] = k
		frame.Joints[hip] = vertexRay(k, 0, 0.2, 0.95)
		frame.Joints[ankle] = vertexRay(k, kneeAngleDeg, 0.2, 0.95)
	}

	place(LeftHip, LeftKnee, LeftAnkle, 0.45)
	place(RightHip, RightKnee, RightAnkle, 0.55)

	return frame
}

// PinchHandLandmarks returns a hand with thumb and index tips touching.
func PinchHandLandmarks() HandLandmarks {
	h := relaxedBase()
	h.Points[ThumbTip] = Keypoint{X: 0.555, Y: 0.555, Confidence: 0.95}
	h.Points[IndexTip] = Keypoint{X: 0.565, Y: 0.560, Confidence: 0.95}
	return h
}

// OpenPalmLandmarks returns a hand with all fingers fully extended.
func OpenPalmLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	set := func(i int, x, y float64) {
		landmarks.Points[i] = Keypoint{X: x, Y: y, Confidence: 0.95}
	}

	// Wrist at base
	set(Wrist, 0.5, 0.8)

	// Thumb extended to the side
	set(ThumbCMC, 0.55, 0.75)
	set(ThumbMCP, 0.62, 0.70)
	set(ThumbIP, 0.68, 0.65)
	set(ThumbTip, 0.73, 0.60)

	// Index finger extended upward
	set(IndexMCP, 0.55, 0.68)
	set(IndexPIP, 0.57, 0.55)
	set(IndexDIP, 0.58, 0.45)
	set(IndexTip, 0.58, 0.35)

	// Middle finger extended upward (slightly longer)
	set(MiddleMCP, 0.50, 0.66)
	set(MiddlePIP, 0.50, 0.52)
	set(MiddleDIP, 0.50, 0.40)
	set(MiddleTip, 0.50, 0.28)

	// Ring finger extended upward
	set(RingMCP, 0.45, 0.68)
	set(RingPIP, 0.43, 0.55)
	set(RingDIP, 0.42, 0.45)
	set(RingTip, 0.42, 0.35)

	// Pinky finger extended upward
	set(PinkyMCP, 0.40, 0.70)
	set(PinkyPIP, 0.37, 0.60)
	set(PinkyDIP, 0.35, 0.50)
	set(PinkyTip, 0.34, 0.42)

	return landmarks
}

// RelaxedHandLandmarks returns a hand with fingers half curled, which
// should classify as neither pinch nor open palm.
func RelaxedHandLandmarks() HandLandmarks {
	return relaxedBase()
}

func relaxedBase() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	set := func(i int, x, y float64) {
		landmarks.Points[i] = Keypoint{X: x, Y: y, Confidence: 0.95}
	}

	set(Wrist, 0.5, 0.8)

	// Thumb half open
	set(ThumbCMC, 0.54, 0.76)
	set(ThumbMCP, 0.58, 0.72)
	set(ThumbIP, 0.60, 0.69)
	set(ThumbTip, 0.61, 0.66)

	// Fingers curled toward the palm: tips barely further from the
	// wrist than the knuckles.
	set(IndexMCP, 0.55, 0.68)
	set(IndexPIP, 0.56, 0.64)
	set(IndexDIP, 0.55, 0.63)
	set(IndexTip, 0.54, 0.65)

	set(MiddleMCP, 0.50, 0.66)
	set(MiddlePIP, 0.50, 0.62)
	set(MiddleDIP, 0.49, 0.61)
	set(MiddleTip, 0.49, 0.64)

	set(RingMCP, 0.45, 0.68)
	set(RingPIP, 0.44, 0.64)
	set(RingDIP, 0.44, 0.63)
	set(RingTip, 0.44, 0.66)

	set(PinkyMCP, 0.40, 0.70)
	set(PinkyPIP, 0.39, 0.67)
	set(PinkyDIP, 0.39, 0.66)
	set(PinkyTip, 0.39, 0.68)

	return landmarks
}

// HandFrameWith wraps hands in a frame captured now.
func HandFrameWith(now time.Time, hands ...HandLandmarks) *HandFrame {
	return &HandFrame{
		Width:      640,
		Height:     480,
		CapturedAt: now,
		Hands:      hands,
	}
}
