package gesture

import (
	"testing"
	"time"
)

// drive feeds the same kind every interval for the given span and
// collects all non-None actions with their offsets.
func drive(d *Debouncer, kind Kind, ctx Context, start time.Time, span, interval time.Duration) []Action {
	var fired []Action
	for off := time.Duration(0); off <= span; off += interval {
		if a := d.Observe(kind, ctx, start.Add(off)); a != ActionNone {
			fired = append(fired, a)
		}
	}
	return fired
}

func TestPinchHoldFiresToggleOnce(t *testing.T) {
	d := NewDebouncer()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	// Pinch held for two full seconds at 30fps-ish cadence: one toggle,
	// not one per frame past the hold point.
	fired := drive(d, Pinch, Context{}, base, 2*time.Second, 100*time.Millisecond)

	if len(fired) != 1 {
		t.Fatalf("got %d actions, want exactly 1: %v", len(fired), fired)
	}
	if fired[0] != ActionToggleRun {
		t.Errorf("action = %v, want toggle_run", fired[0])
	}
}

func TestPinchReleasedEarlyDoesNotFire(t *testing.T) {
	d := NewDebouncer()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	fired := drive(d, Pinch, Context{}, base, 800*time.Millisecond, 100*time.Millisecond)
	if len(fired) != 0 {
		t.Fatalf("pinch under the hold time fired %v", fired)
	}

	// Release, then pinch again: the hold clock restarts from zero.
	d.Observe(None, Context{}, base.Add(900*time.Millisecond))
	if a := d.Observe(Pinch, Context{}, base.Add(time.Second)); a != ActionNone {
		t.Errorf("re-arm frame fired %v", a)
	}
	if a := d.Observe(Pinch, Context{}, base.Add(1900*time.Millisecond)); a != ActionNone {
		t.Errorf("hold restarted: 900ms into the new pinch fired %v", a)
	}
	if a := d.Observe(Pinch, Context{}, base.Add(2100*time.Millisecond)); a != ActionToggleRun {
		t.Errorf("full new hold fired %v, want toggle_run", a)
	}
}

func TestCooldownBlocksImmediateRepeat(t *testing.T) {
	d := NewDebouncer()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	d.Observe(Pinch, Context{}, base)
	if a := d.Observe(Pinch, Context{}, base.Add(time.Second)); a != ActionToggleRun {
		t.Fatalf("setup fired %v, want toggle_run", a)
	}
	firedAt := base.Add(time.Second)

	// A second pinch starting right away sits inside the cooldown: its
	// frames neither fire nor accumulate hold time.
	for off := 100 * time.Millisecond; off < ActionCooldown; off += 100 * time.Millisecond {
		if a := d.Observe(Pinch, Context{}, firedAt.Add(off)); a != ActionNone {
			t.Fatalf("fired %v only %v after the previous action", a, off)
		}
	}

	// After the cooldown a fresh full hold is required before firing.
	clear := firedAt.Add(ActionCooldown + 50*time.Millisecond)
	if a := d.Observe(Pinch, Context{}, clear); a != ActionNone {
		t.Fatalf("first post-cooldown frame fired %v", a)
	}
	if a := d.Observe(Pinch, Context{}, clear.Add(PinchHold)); a != ActionToggleRun {
		t.Errorf("post-cooldown hold fired %v, want toggle_run", a)
	}
}

func TestPalmHoldFiresNextMode(t *testing.T) {
	d := NewDebouncer()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	fired := drive(d, OpenPalm, Context{}, base, 1500*time.Millisecond, 50*time.Millisecond)
	if len(fired) != 1 || fired[0] != ActionNextMode {
		t.Errorf("got %v, want exactly one next_mode", fired)
	}
}

func TestPalmInertWhileRunning(t *testing.T) {
	d := NewDebouncer()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	fired := drive(d, OpenPalm, Context{Running: true}, base, 2*time.Second, 100*time.Millisecond)
	if len(fired) != 0 {
		t.Errorf("palm fired %v during a running session", fired)
	}
}

func TestPalmInertWhileCalibrating(t *testing.T) {
	d := NewDebouncer()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	fired := drive(d, OpenPalm, Context{Calibrating: true}, base, 2*time.Second, 100*time.Millisecond)
	if len(fired) != 0 {
		t.Errorf("palm fired %v during calibration", fired)
	}
}

func TestPinchDuringCalibrationCaptures(t *testing.T) {
	d := NewDebouncer()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	ctx := Context{Calibrating: true}
	d.Observe(Pinch, ctx, base)
	if a := d.Observe(Pinch, ctx, base.Add(PinchHold)); a != ActionCalibrationCapture {
		t.Errorf("pinch during calibration fired %v, want calibration_capture", a)
	}
}

func TestOppositeGestureDisarms(t *testing.T) {
	d := NewDebouncer()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	// 900ms of pinch, then a palm frame, then pinch again: the pinch
	// hold must restart, so 200ms later nothing fires.
	d.Observe(Pinch, Context{}, base)
	d.Observe(Pinch, Context{}, base.Add(900*time.Millisecond))
	d.Observe(OpenPalm, Context{}, base.Add(950*time.Millisecond))
	d.Observe(Pinch, Context{}, base.Add(time.Second))
	if a := d.Observe(Pinch, Context{}, base.Add(1200*time.Millisecond)); a != ActionNone {
		t.Errorf("pinch fired %v after being disarmed by a palm", a)
	}
}
