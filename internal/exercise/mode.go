// Package exercise defines the supported exercise modes and the joint
// geometry used to turn a pose frame into a single tracked angle.
package exercise

import "fmt"

// Mode identifies an exercise. The set is closed: switch statements over
// Mode are written exhaustively so adding a mode is a compile-checked change.
type Mode int

const (
	Curl Mode = iota
	Squat
	Pushup
	numModes
)

// Modes lists all exercise modes in cycle order.
func Modes() []Mode {
	return []Mode{Curl, Squat, Pushup}
}

// String returns the display name of the mode.
func (m Mode) String() string {
	switch m {
	case Curl:
		return "CURL"
	case Squat:
		return "SQUAT"
	case Pushup:
		return "PUSHUP"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Next returns the next mode in the cycle, wrapping around.
func (m Mode) Next() Mode {
	return (m + 1) % numModes
}

// Descending reports whether "deeper" means a smaller tracked angle.
// Squats and pushups bottom out with a bent joint (small angle); curls
// bottom out with the arm extended (large angle).
func (m Mode) Descending() bool {
	switch m {
	case Squat, Pushup:
		return true
	case Curl:
		return false
	default:
		return true
	}
}

// ParseMode converts a display name back into a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "CURL":
		return Curl, nil
	case "SQUAT":
		return Squat, nil
	case "PUSHUP":
		return Pushup, nil
	default:
		return 0, fmt.Errorf("unknown exercise mode %q", s)
	}
}

// Thresholds holds the pair of angle thresholds that bound a rep for one
// mode. For descending modes Down < Up; for curls Down > Up.
type Thresholds struct {
	Down float64 `json:"down"`
	Up   float64 `json:"up"`
}

// Profile maps every mode to its current thresholds. Profiles are
// persisted by the store and replaced wholesale when calibration completes.
type Profile map[Mode]Thresholds

// DefaultProfile returns the built-in thresholds used before any
// calibration has been captured.
func DefaultProfile() Profile {
	return Profile{
		Curl:   {Down: 150, Up: 70},
		Squat:  {Down: 100, Up: 160},
		Pushup: {Down: 100, Up: 155},
	}
}

// Clone returns a copy so callers can hand profiles across goroutines
// without sharing the map.
func (p Profile) Clone() Profile {
	out := make(Profile, len(p))
	for m, t := range p {
		out[m] = t
	}
	return out
}

// TempoSpec is the per-mode tempo policy applied when scoring a rep.
// Durations are milliseconds between consecutive completed reps.
type TempoSpec struct {
	MinGoodMs int64
	MaxGoodMs int64
}

// Tempo returns the tempo policy for the mode. Figures are product
// tuning, not physics.
func (m Mode) Tempo() TempoSpec {
	switch m {
	case Curl:
		return TempoSpec{MinGoodMs: 1200, MaxGoodMs: 6000}
	case Squat:
		return TempoSpec{MinGoodMs: 1500, MaxGoodMs: 6000}
	case Pushup:
		return TempoSpec{MinGoodMs: 1500, MaxGoodMs: 6000}
	default:
		return TempoSpec{MinGoodMs: 1500, MaxGoodMs: 6000}
	}
}

// CalibrationRange returns the sane clamp range for calibrated
// thresholds in this mode.
func (m Mode) CalibrationRange() (lo, hi float64) {
	switch m {
	case Curl:
		return 30, 175
	case Squat, Pushup:
		return 40, 180
	default:
		return 40, 180
	}
}
