package reps

import (
	"fmt"
	"time"

	"github.com/ayusman/repcoach/internal/exercise"
)

// Phase is the rep-cycle position.
type Phase string

const (
	// PhaseIdle is the transient state before the first usable angle.
	PhaseIdle Phase = "IDLE"
	// PhaseUp is the top of the movement.
	PhaseUp Phase = "UP"
	// PhaseDown is the bottom of the movement.
	PhaseDown Phase = "DOWN"
)

// Debounce tuning. The hysteresis margins keep a hovering angle from
// chattering across a threshold, the confirmation streak rejects
// single-frame detector glitches, and the minimum gap bounds the fastest
// countable transition rate. The up margin is smaller: the descent is
// where detector noise concentrates, the ascent ends in a stable stance.
const (
	DownHysteresisMargin = 6.0
	UpHysteresisMargin   = 4.0
	ConfirmFrames        = 3
	MinTransitionGap     = 420 * time.Millisecond
)

// Completed describes a just-finished DOWN-to-UP cycle that was counted.
type Completed struct {
	// Deepest is the extreme smoothed angle reached in the mode's down
	// direction during the cycle.
	Deepest float64
	// HasDepth is false when no angle was ever recorded during the cycle.
	HasDepth bool
	// TempoMs is the elapsed time since the previous counted rep, or 0
	// for the first rep of a session.
	TempoMs int64
}

// Result is the per-frame output of Tracker.Update.
type Result struct {
	Reps      int        `json:"reps"`
	Phase     Phase      `json:"phase"`
	Raw       float64    `json:"raw_angle"`
	Smoothed  float64    `json:"smoothed_angle"`
	HasAngle  bool       `json:"has_angle"`
	DownLimit float64    `json:"down_limit"`
	UpLimit   float64    `json:"up_limit"`
	Completed *Completed `json:"-"`
	// Diagnostic is a short human-readable state summary for overlays
	// and test failure messages; it is not for control flow.
	Diagnostic string `json:"diagnostic"`
}

// Tracker is the per-mode hysteresis state machine. It consumes an
// already-smoothed angle stream; pair it with a Smoother. It is a plain
// single-threaded reducer: the owner serializes calls.
type Tracker struct {
	mode       exercise.Mode
	thresholds exercise.Thresholds

	phase          Phase
	inDown         bool
	reps           int
	streak         int
	lastTransition time.Time
	lastRepAt      time.Time
	deepest        float64
	deepestSet     bool
}

// NewTracker creates a tracker for the mode with the given thresholds.
func NewTracker(mode exercise.Mode, th exercise.Thresholds) *Tracker {
	return &Tracker{
		mode:       mode,
		thresholds: th,
		phase:      PhaseIdle,
	}
}

// SetThresholds swaps in new thresholds, e.g. after calibration.
// Counting state is preserved.
func (t *Tracker) SetThresholds(th exercise.Thresholds) {
	t.thresholds = th
}

// Thresholds returns the thresholds currently in force.
func (t *Tracker) Thresholds() exercise.Thresholds {
	return t.thresholds
}

// Reps returns the current rep count.
func (t *Tracker) Reps() int {
	return t.reps
}

// Phase returns the current rep-cycle phase.
func (t *Tracker) Phase() Phase {
	return t.phase
}

// Reset clears all counting state back to IDLE.
func (t *Tracker) Reset() {
	t.phase = PhaseIdle
	t.inDown = false
	t.reps = 0
	t.streak = 0
	t.lastTransition = time.Time{}
	t.lastRepAt = time.Time{}
	t.deepest = 0
	t.deepestSet = false
}

// limits returns the effective thresholds with the hysteresis margin
// applied in the mode-appropriate direction: entering the down region
// requires crossing beyond Down, and leaving requires crossing beyond Up.
func (t *Tracker) limits() (down, up float64) {
	if t.mode.Descending() {
		return t.thresholds.Down - DownHysteresisMargin, t.thresholds.Up + UpHysteresisMargin
	}
	return t.thresholds.Down + DownHysteresisMargin, t.thresholds.Up - UpHysteresisMargin
}

func (t *Tracker) beyondDown(angle, limit float64) bool {
	if t.mode.Descending() {
		return angle < limit
	}
	return angle > limit
}

func (t *Tracker) beyondUp(angle, limit float64) bool {
	if t.mode.Descending() {
		return angle > limit
	}
	return angle < limit
}

// deeper reports whether a is deeper than b in the mode's down direction.
func (t *Tracker) deeper(a, b float64) bool {
	if t.mode.Descending() {
		return a < b
	}
	return a > b
}

func (t *Tracker) gapElapsed(now time.Time) bool {
	return t.lastTransition.IsZero() || now.Sub(t.lastTransition) >= MinTransitionGap
}

// Update advances the state machine by one frame. ok is false on a
// data-gap tick (missing joints): state carries over unchanged and the
// confirmation streak is not advanced. running gates counting only; the
// phase transitions themselves always run so the machine stays in sync
// with the body.
func (t *Tracker) Update(smoothed, raw float64, ok, running bool, now time.Time) Result {
	res := Result{
		Reps:     t.reps,
		Phase:    t.phase,
		Raw:      raw,
		Smoothed: smoothed,
		HasAngle: ok,
	}
	res.DownLimit, res.UpLimit = t.limits()

	if !ok {
		res.Diagnostic = fmt.Sprintf("%s no-data phase=%s reps=%d", t.mode, t.phase, t.reps)
		return res
	}

	if t.phase == PhaseIdle {
		t.phase = PhaseUp
	}

	if t.inDown {
		if !t.deepestSet || t.deeper(smoothed, t.deepest) {
			t.deepest = smoothed
			t.deepestSet = true
		}
		if t.beyondUp(smoothed, res.UpLimit) && t.gapElapsed(now) {
			t.streak++
			if t.streak >= ConfirmFrames {
				t.confirmUp(now, running, &res)
			}
		} else {
			t.streak = 0
		}
	} else {
		if t.beyondDown(smoothed, res.DownLimit) && t.gapElapsed(now) {
			t.streak++
			if t.streak >= ConfirmFrames {
				t.confirmDown(smoothed, now)
			}
		} else {
			t.streak = 0
		}
	}

	res.Reps = t.reps
	res.Phase = t.phase
	res.Diagnostic = fmt.Sprintf("%s phase=%s angle=%.1f reps=%d streak=%d",
		t.mode, t.phase, smoothed, t.reps, t.streak)
	return res
}

func (t *Tracker) confirmDown(smoothed float64, now time.Time) {
	t.inDown = true
	t.phase = PhaseDown
	t.streak = 0
	t.lastTransition = now
	t.deepest = smoothed
	t.deepestSet = true
}

// confirmUp completes the cycle. The rep is credited here, on the
// confirmed ascent, and only while the session is running.
func (t *Tracker) confirmUp(now time.Time, running bool, res *Result) {
	t.inDown = false
	t.phase = PhaseUp
	t.streak = 0
	t.lastTransition = now

	if running {
		t.reps++
		var tempoMs int64
		if !t.lastRepAt.IsZero() {
			tempoMs = now.Sub(t.lastRepAt).Milliseconds()
		}
		t.lastRepAt = now
		res.Completed = &Completed{
			Deepest:  t.deepest,
			HasDepth: t.deepestSet,
			TempoMs:  tempoMs,
		}
	}

	t.deepest = 0
	t.deepestSet = false
}
