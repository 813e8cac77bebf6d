package gesture

import "time"

// Action is a discrete command emitted by the debouncer. One deliberate
// gesture yields exactly one action, no matter how many frames saw it.
type Action string

const (
	ActionNone               Action = "none"
	ActionToggleRun          Action = "toggle_run"
	ActionNextMode           Action = "next_mode"
	ActionCalibrationCapture Action = "calibration_capture"
)

// Hold and cooldown tuning. The pinch hold is longer than the palm hold
// because pinch is overloaded: it both toggles the session and drives
// calibration captures, so it has to be unmistakably deliberate.
const (
	PinchHold      = 1000 * time.Millisecond
	PalmHold       = 750 * time.Millisecond
	ActionCooldown = 1050 * time.Millisecond
)

// Context is the slice of session state the debouncer needs to resolve
// a fired gesture into an action.
type Context struct {
	Running     bool
	Calibrating bool
}

// Debouncer is the hold-to-confirm gesture state machine. Each gesture
// arms on first sight, fires once after its hold duration, and disarms
// on the opposite gesture, on None, or while the global cooldown runs.
// It is a single-threaded reducer; the owner serializes calls.
type Debouncer struct {
	pinchActive bool
	pinchStart  time.Time
	palmActive  bool
	palmStart   time.Time
	lastAction  time.Time
}

// NewDebouncer creates a Debouncer in the disarmed state.
func NewDebouncer() *Debouncer {
	return &Debouncer{}
}

// Observe consumes one frame's classification. Callers are expected to
// gate on frame freshness first and feed None for stale or absent
// frames.
func (d *Debouncer) Observe(kind Kind, ctx Context, now time.Time) Action {
	if !d.cooldownClear(now) {
		d.pinchActive = false
		d.palmActive = false
		return ActionNone
	}

	switch kind {
	case Pinch:
		d.palmActive = false
		return d.holdPinch(ctx, now)
	case OpenPalm:
		d.pinchActive = false
		return d.holdPalm(ctx, now)
	default:
		d.pinchActive = false
		d.palmActive = false
		return ActionNone
	}
}

func (d *Debouncer) cooldownClear(now time.Time) bool {
	return d.lastAction.IsZero() || now.Sub(d.lastAction) >= ActionCooldown
}

func (d *Debouncer) holdPinch(ctx Context, now time.Time) Action {
	if !d.pinchActive {
		d.pinchActive = true
		d.pinchStart = now
		return ActionNone
	}
	if now.Sub(d.pinchStart) < PinchHold {
		return ActionNone
	}

	d.pinchActive = false
	d.lastAction = now
	if ctx.Calibrating {
		return ActionCalibrationCapture
	}
	return ActionToggleRun
}

func (d *Debouncer) holdPalm(ctx Context, now time.Time) Action {
	// Palm is exclusively the mode-switch gesture; it is inert during
	// active exercise and during calibration so an accidental palm
	// cannot change modes mid-set.
	if ctx.Running || ctx.Calibrating {
		d.palmActive = false
		return ActionNone
	}

	if !d.palmActive {
		d.palmActive = true
		d.palmStart = now
		return ActionNone
	}
	if now.Sub(d.palmStart) < PalmHold {
		return ActionNone
	}

	d.palmActive = false
	d.lastAction = now
	return ActionNextMode
}
