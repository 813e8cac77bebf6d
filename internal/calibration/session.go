// Package calibration implements the two-step wizard that derives
// per-exercise rep thresholds from a pair of captured joint angles.
package calibration

import (
	"fmt"
	"math"

	"github.com/ayusman/repcoach/internal/exercise"
)

// Step is the wizard position.
type Step string

const (
	// StepBaselineUp captures the "top of the movement" angle.
	StepBaselineUp Step = "BASELINE_UP"
	// StepBaselineDown captures the "bottom of the movement" angle.
	StepBaselineDown Step = "BASELINE_DOWN"
)

// Margin tuning: thresholds are pulled inward from the two captured
// extremes by 15% of the observed range, floored at 15 degrees of range.
const (
	marginFraction = 0.15
	minRange       = 15.0
)

// Session is the short-lived calibration wizard. It is driven
// exclusively by confirmed pinch-hold captures while active; open palm
// is inert during calibration.
type Session struct {
	active  bool
	mode    exercise.Mode
	step    Step
	upAngle float64
	status  string
}

// Start begins a calibration session for the mode.
func Start(mode exercise.Mode) *Session {
	return &Session{
		active: true,
		mode:   mode,
		step:   StepBaselineUp,
		status: fmt.Sprintf("Hold the top of your %s and pinch to capture", mode),
	}
}

// Active reports whether the wizard is still collecting.
func (s *Session) Active() bool {
	return s != nil && s.active
}

// Mode returns the mode being calibrated.
func (s *Session) Mode() exercise.Mode {
	return s.mode
}

// Step returns the current wizard step.
func (s *Session) Step() Step {
	return s.step
}

// Status returns the current operator-facing status message.
func (s *Session) Status() string {
	return s.status
}

// Abandon deactivates the session without producing thresholds.
func (s *Session) Abandon() {
	s.active = false
	s.status = "Calibration abandoned"
}

// Capture records the current primary joint angle for the active step.
// ok is false when no angle was available at the capture attempt: the
// session stays on the same step with a retry status.
//
// The second successful capture derives the new thresholds, deactivates
// the session, and returns done=true.
func (s *Session) Capture(angle float64, ok bool) (th exercise.Thresholds, done bool) {
	if !s.active {
		return exercise.Thresholds{}, false
	}

	if !ok {
		s.status = "Could not read the joint angle. Hold still and pinch again"
		return exercise.Thresholds{}, false
	}

	switch s.step {
	case StepBaselineUp:
		s.upAngle = angle
		s.step = StepBaselineDown
		s.status = fmt.Sprintf("Captured %.0f°. Now hold the bottom and pinch again", angle)
		return exercise.Thresholds{}, false

	case StepBaselineDown:
		th = DeriveThresholds(s.mode, s.upAngle, angle)
		s.active = false
		s.status = fmt.Sprintf("Calibrated %s: down %.0f° / up %.0f°", s.mode, th.Down, th.Up)
		return th, true

	default:
		return exercise.Thresholds{}, false
	}
}

// DeriveThresholds pulls the operating band strictly inside the two
// observed extremes: each threshold moves inward by the margin, then is
// clamped to the mode's sane range. For curls "down" is the larger
// angle; for squats and pushups it is the smaller one.
func DeriveThresholds(mode exercise.Mode, upAngle, downAngle float64) exercise.Thresholds {
	margin := math.Max(minRange, math.Abs(upAngle-downAngle)) * marginFraction

	hi := math.Max(upAngle, downAngle)
	lo := math.Min(upAngle, downAngle)

	clampLo, clampHi := mode.CalibrationRange()
	clamp := func(v float64) float64 {
		return math.Max(clampLo, math.Min(clampHi, v))
	}

	if mode.Descending() {
		return exercise.Thresholds{
			Down: clamp(lo + margin),
			Up:   clamp(hi - margin),
		}
	}
	return exercise.Thresholds{
		Down: clamp(hi - margin),
		Up:   clamp(lo + margin),
	}
}
