package detector

import "gocv.io/x/gocv"

// Detector defines the interface for pose and hand detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns the detected pose and hands.
	// A nil Pose or Hands field means nothing was detected this frame;
	// that is not an error.
	Detect(frame *gocv.Mat) (*Observation, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect (default: 2).
	MaxHands int

	// MinPoseConfidence is the minimum pose detection confidence (0.0-1.0).
	MinPoseConfidence float64

	// MinHandConfidence is the minimum hand detection confidence (0.0-1.0).
	MinHandConfidence float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:          2,
		MinPoseConfidence: 0.5,
		MinHandConfidence: 0.5,
	}
}
