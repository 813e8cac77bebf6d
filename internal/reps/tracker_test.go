package reps

import (
	"testing"
	"time"

	"github.com/ayusman/repcoach/internal/exercise"
)

var curlThresholds = exercise.Thresholds{Down: 150, Up: 70}

// feed drives the tracker through a sequence of smoothed angles at a
// fixed frame interval and returns every completed rep it emitted.
func feed(t *testing.T, tr *Tracker, start time.Time, step time.Duration, running bool, angles []float64) (last Result, completed []*Completed) {
	t.Helper()
	now := start
	for _, a := range angles {
		last = tr.Update(a, a, true, running, now)
		if last.Completed != nil {
			completed = append(completed, last.Completed)
		}
		now = now.Add(step)
	}
	return last, completed
}

func TestTrackerCountsOneFullCurlRep(t *testing.T) {
	tr := NewTracker(exercise.Curl, curlThresholds)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	// Descent past 150, then ascent past 70, each held long enough to
	// confirm. Frames arrive every 200ms.
	angles := []float64{90, 160, 160, 160, 65, 65, 65, 65, 65, 65}
	last, completed := feed(t, tr, base, 200*time.Millisecond, true, angles)

	if last.Reps != 1 {
		t.Fatalf("reps = %d, want 1 (%s)", last.Reps, last.Diagnostic)
	}
	if last.Phase != PhaseUp {
		t.Errorf("phase = %s, want UP", last.Phase)
	}
	if len(completed) != 1 {
		t.Fatalf("got %d completed events, want 1", len(completed))
	}
	c := completed[0]
	if !c.HasDepth || c.Deepest != 160 {
		t.Errorf("completed deepest = (%v, %v), want (160, true)", c.Deepest, c.HasDepth)
	}
	if c.TempoMs != 0 {
		t.Errorf("first rep tempo = %d, want 0", c.TempoMs)
	}
}

func TestTrackerIdleEntersUpOnFirstAngle(t *testing.T) {
	tr := NewTracker(exercise.Curl, curlThresholds)

	if tr.Phase() != PhaseIdle {
		t.Fatalf("fresh tracker phase = %s, want IDLE", tr.Phase())
	}

	res := tr.Update(90, 90, true, true, time.Now())
	if res.Phase != PhaseUp {
		t.Errorf("phase after first angle = %s, want UP", res.Phase)
	}
	if res.Reps != 0 {
		t.Errorf("entering UP from IDLE counted a rep")
	}
}

func TestTrackerHysteresisRejectsThresholdHover(t *testing.T) {
	tr := NewTracker(exercise.Curl, curlThresholds)
	base := time.Now()

	// Values cross the raw thresholds but never the hysteresis margins:
	// 155 < 150+6 on the way down, 68 > 70-4 on the way back.
	angles := []float64{90, 152, 155, 149, 155, 152, 90, 68, 67, 71, 68, 90}
	last, completed := feed(t, tr, base, 200*time.Millisecond, true, angles)

	if last.Reps != 0 {
		t.Errorf("reps = %d, want 0 for hovering angles (%s)", last.Reps, last.Diagnostic)
	}
	if len(completed) != 0 {
		t.Errorf("got %d completed events, want 0", len(completed))
	}
	if last.Phase != PhaseUp {
		t.Errorf("phase = %s, want UP throughout", last.Phase)
	}
}

func TestTrackerConfirmationStreakRejectsGlitches(t *testing.T) {
	tr := NewTracker(exercise.Curl, curlThresholds)
	base := time.Now()

	// Two qualifying frames, a glitch, then two more: never three in a
	// row, so no transition.
	angles := []float64{90, 160, 160, 90, 160, 160, 90}
	last, _ := feed(t, tr, base, 200*time.Millisecond, true, angles)

	if last.Phase != PhaseUp {
		t.Errorf("phase = %s, want UP; glitched streak must not confirm", last.Phase)
	}
}

func TestTrackerMinimumTransitionGap(t *testing.T) {
	tr := NewTracker(exercise.Curl, curlThresholds)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	// Reach confirmed DOWN at base+600ms.
	now := base
	for _, a := range []float64{90, 160, 160, 160} {
		tr.Update(a, a, true, true, now)
		now = now.Add(200 * time.Millisecond)
	}
	if tr.Phase() != PhaseDown {
		t.Fatalf("phase = %s, want DOWN after confirmed descent", tr.Phase())
	}
	downAt := base.Add(600 * time.Millisecond)

	// Ascent frames arriving inside the gap cannot confirm, no matter
	// how many there are.
	for _, off := range []time.Duration{100, 200, 300, 400} {
		res := tr.Update(60, 60, true, true, downAt.Add(off*time.Millisecond))
		if res.Phase != PhaseDown {
			t.Fatalf("phase flipped to %s only %v after the DOWN transition", res.Phase, off*time.Millisecond)
		}
	}

	// Once the gap has elapsed, three frames confirm as usual.
	var last Result
	for _, off := range []time.Duration{500, 600, 700} {
		last = tr.Update(60, 60, true, true, downAt.Add(off*time.Millisecond))
	}
	if last.Phase != PhaseUp || last.Reps != 1 {
		t.Errorf("after gap: phase=%s reps=%d, want UP/1", last.Phase, last.Reps)
	}
}

func TestTrackerRepCountMonotonic(t *testing.T) {
	tr := NewTracker(exercise.Curl, curlThresholds)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	step := 250 * time.Millisecond

	cycle := []float64{160, 160, 160, 65, 65, 65, 65, 65, 65}

	now := base
	prev := 0
	tr.Update(90, 90, true, true, now)
	now = now.Add(step)

	for rep := 0; rep < 3; rep++ {
		for _, a := range cycle {
			res := tr.Update(a, a, true, true, now)
			if res.Reps < prev {
				t.Fatalf("rep count went backwards: %d -> %d", prev, res.Reps)
			}
			prev = res.Reps
			now = now.Add(step)
		}
	}

	if prev != 3 {
		t.Errorf("reps = %d after 3 full cycles, want 3", prev)
	}

	second := tr.Update(90, 90, true, true, now)
	if second.Completed != nil {
		t.Error("non-transition frame emitted a completed event")
	}
}

func TestTrackerSecondRepCarriesTempo(t *testing.T) {
	tr := NewTracker(exercise.Curl, curlThresholds)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	step := 250 * time.Millisecond

	angles := []float64{90,
		160, 160, 160, 65, 65, 65, 65, 65, 65,
		160, 160, 160, 65, 65, 65, 65, 65, 65,
	}
	_, completed := feed(t, tr, base, step, true, angles)

	if len(completed) != 2 {
		t.Fatalf("got %d completed events, want 2", len(completed))
	}
	if completed[0].TempoMs != 0 {
		t.Errorf("first rep tempo = %d, want 0", completed[0].TempoMs)
	}
	if completed[1].TempoMs <= 0 {
		t.Errorf("second rep tempo = %d, want positive", completed[1].TempoMs)
	}
}

func TestTrackerDataGapCarriesState(t *testing.T) {
	tr := NewTracker(exercise.Curl, curlThresholds)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	step := 200 * time.Millisecond

	now := base
	for _, a := range []float64{90, 160, 160, 160} {
		tr.Update(a, a, true, true, now)
		now = now.Add(step)
	}
	if tr.Phase() != PhaseDown {
		t.Fatalf("phase = %s, want DOWN", tr.Phase())
	}

	// A burst of no-data frames must not move the machine.
	for i := 0; i < 5; i++ {
		res := tr.Update(0, 0, false, true, now)
		if res.Phase != PhaseDown || res.Reps != 0 {
			t.Fatalf("data gap changed state: phase=%s reps=%d", res.Phase, res.Reps)
		}
		if res.HasAngle {
			t.Fatal("data gap frame reported HasAngle")
		}
		now = now.Add(step)
	}

	// And a gap frame inside a confirmation streak must not reset it:
	// two qualifying frames + gap + one qualifying frame confirms.
	tr2 := NewTracker(exercise.Curl, curlThresholds)
	now = base
	for _, a := range []float64{90, 160, 160} {
		tr2.Update(a, a, true, true, now)
		now = now.Add(step)
	}
	tr2.Update(0, 0, false, true, now)
	now = now.Add(step)
	res := tr2.Update(160, 160, true, true, now)
	if res.Phase != PhaseDown {
		t.Errorf("gap frame reset the confirmation streak: phase=%s", res.Phase)
	}
}

func TestTrackerPausedSessionDoesNotCount(t *testing.T) {
	tr := NewTracker(exercise.Curl, curlThresholds)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	angles := []float64{90, 160, 160, 160, 65, 65, 65, 65, 65, 65}
	last, completed := feed(t, tr, base, 200*time.Millisecond, false, angles)

	if last.Phase != PhaseUp {
		t.Errorf("phase = %s, want UP; the machine still tracks while paused", last.Phase)
	}
	if last.Reps != 0 {
		t.Errorf("reps = %d, want 0 while paused", last.Reps)
	}
	if len(completed) != 0 {
		t.Errorf("got %d completed events while paused, want 0", len(completed))
	}
}

func TestTrackerSquatPolarity(t *testing.T) {
	tr := NewTracker(exercise.Squat, exercise.Thresholds{Down: 100, Up: 160})
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	// Squat descends to a small angle and rises back to a large one.
	angles := []float64{170, 90, 90, 90, 168, 168, 168, 168, 168, 168}
	last, _ := feed(t, tr, base, 200*time.Millisecond, true, angles)

	if last.Reps != 1 {
		t.Errorf("reps = %d, want 1 (%s)", last.Reps, last.Diagnostic)
	}
}

func TestTrackerResetClearsEverything(t *testing.T) {
	tr := NewTracker(exercise.Curl, curlThresholds)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	angles := []float64{90, 160, 160, 160, 65, 65, 65, 65, 65, 65}
	feed(t, tr, base, 200*time.Millisecond, true, angles)

	tr.Reset()
	if tr.Reps() != 0 || tr.Phase() != PhaseIdle {
		t.Errorf("after Reset: reps=%d phase=%s, want 0/IDLE", tr.Reps(), tr.Phase())
	}
}

func TestTrackerSetThresholdsPreservesCount(t *testing.T) {
	tr := NewTracker(exercise.Curl, curlThresholds)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	angles := []float64{90, 160, 160, 160, 65, 65, 65, 65, 65, 65}
	feed(t, tr, base, 200*time.Millisecond, true, angles)

	tr.SetThresholds(exercise.Thresholds{Down: 145, Up: 75})
	if tr.Reps() != 1 {
		t.Errorf("SetThresholds changed the rep count to %d", tr.Reps())
	}
	if got := tr.Thresholds(); got.Down != 145 || got.Up != 75 {
		t.Errorf("Thresholds = %+v, want {145 75}", got)
	}
}
