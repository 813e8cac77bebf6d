// Package e2e drives a complete scripted workout through the session
// controller and the store, the same wiring the camera pipeline uses,
// with fixture frames in place of a live detector.
package e2e

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/repcoach/internal/detector"
	"github.com/ayusman/repcoach/internal/exercise"
	"github.com/ayusman/repcoach/internal/gesture"
	"github.com/ayusman/repcoach/internal/reps"
	"github.com/ayusman/repcoach/internal/session"
	"github.com/ayusman/repcoach/internal/store"
)

// workoutRig is the controller + store pair with a scripted clock.
type workoutRig struct {
	t          *testing.T
	store      *store.Store
	controller *session.Controller
	now        time.Time
	workout    *store.WorkoutSession
	repCount   int
}

func newRig(t *testing.T) *workoutRig {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "e2e.db"))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	profile, err := s.Calibration().Load()
	if err != nil {
		t.Fatalf("load profile: %v", err)
	}

	return &workoutRig{
		t:          t,
		store:      s,
		controller: session.NewController(profile),
		now:        time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func (r *workoutRig) advance(d time.Duration) {
	r.now = r.now.Add(d)
}

// holdGesture feeds one hand fixture for the given span at frame cadence
// and applies the resulting actions the way the pipeline does.
func (r *workoutRig) holdGesture(hand detector.HandLandmarks, span time.Duration) []gesture.Action {
	r.t.Helper()
	var fired []gesture.Action
	for elapsed := time.Duration(0); elapsed <= span; elapsed += 100 * time.Millisecond {
		frame := detector.HandFrameWith(r.now, hand)
		ev := r.controller.HandleHands(frame, r.now)
		if ev.Action != gesture.ActionNone {
			fired = append(fired, ev.Action)
			r.applyAction(ev)
		}
		r.advance(100 * time.Millisecond)
	}
	return fired
}

// holdGestureWithPose feeds a pose and a hand fixture together each
// tick, the way the pipeline delivers one camera frame's observation.
func (r *workoutRig) holdGestureWithPose(pose *detector.PoseFrame, hand detector.HandLandmarks, span time.Duration) []gesture.Action {
	r.t.Helper()
	var fired []gesture.Action
	for elapsed := time.Duration(0); elapsed <= span; elapsed += 100 * time.Millisecond {
		r.controller.HandlePose(pose, r.now)
		ev := r.controller.HandleHands(detector.HandFrameWith(r.now, hand), r.now)
		if ev.Action != gesture.ActionNone {
			fired = append(fired, ev.Action)
			r.applyAction(ev)
		}
		r.advance(100 * time.Millisecond)
	}
	return fired
}

// applyAction mirrors the pipeline's persistence side effects.
func (r *workoutRig) applyAction(ev session.ActionEvent) {
	r.t.Helper()
	switch ev.Action {
	case gesture.ActionToggleRun:
		if r.controller.Running() {
			ws, err := r.store.Workouts().StartSession(r.controller.Mode().String())
			if err != nil {
				r.t.Fatalf("start workout: %v", err)
			}
			r.workout = ws
			r.repCount = 0
		} else if r.workout != nil {
			if err := r.store.Workouts().EndSession(r.workout.ID); err != nil {
				r.t.Fatalf("end workout: %v", err)
			}
			r.workout = nil
		}
	case gesture.ActionCalibrationCapture:
		if ev.NewProfile != nil {
			if err := r.store.Calibration().SaveProfile(ev.NewProfile); err != nil {
				r.t.Fatalf("save profile: %v", err)
			}
		}
	}
}

// poseRun feeds one fixture angle for the given number of frames.
func (r *workoutRig) poseRun(frame *detector.PoseFrame, frames int) {
	r.t.Helper()
	for i := 0; i < frames; i++ {
		tick := r.controller.HandlePose(frame, r.now)
		if tick.Quality != nil && r.workout != nil {
			r.repCount++
			if err := r.store.Workouts().RecordRep(r.workout.ID, r.repCount, *tick.Quality); err != nil {
				r.t.Fatalf("record rep: %v", err)
			}
		}
		r.advance(150 * time.Millisecond)
	}
}

func TestFullSquatWorkout(t *testing.T) {
	r := newRig(t)

	// Switch from the default curl mode to squat with an open palm.
	fired := r.holdGesture(detector.OpenPalmLandmarks(), time.Second)
	if len(fired) != 1 || fired[0] != gesture.ActionNextMode {
		t.Fatalf("palm fired %v, want one next_mode", fired)
	}
	if r.controller.Mode() != exercise.Squat {
		t.Fatalf("mode = %v, want Squat", r.controller.Mode())
	}

	// Start the session with a pinch hold.
	r.advance(2 * time.Second)
	fired = r.holdGesture(detector.PinchHandLandmarks(), 1200*time.Millisecond)
	if len(fired) != 1 || fired[0] != gesture.ActionToggleRun {
		t.Fatalf("pinch fired %v, want one toggle_run", fired)
	}
	if !r.controller.Running() {
		t.Fatal("session should be running")
	}
	workoutID := r.workout.ID

	// Three squats: stand tall, drop below the down threshold, rise.
	standing := detector.SquatPoseFrame(172)
	deep := detector.SquatPoseFrame(88)
	r.poseRun(standing, 8)
	for i := 0; i < 3; i++ {
		r.poseRun(deep, 12)
		r.poseRun(standing, 12)
	}

	// A palm mid-set must not switch modes.
	palmFired := r.holdGesture(detector.OpenPalmLandmarks(), 1500*time.Millisecond)
	if len(palmFired) != 0 {
		t.Fatalf("palm fired %v during a running session", palmFired)
	}
	if r.controller.Mode() != exercise.Squat {
		t.Fatal("mode changed mid-set")
	}

	// Pause with another pinch hold.
	r.advance(2 * time.Second)
	fired = r.holdGesture(detector.PinchHandLandmarks(), 1200*time.Millisecond)
	if len(fired) != 1 || fired[0] != gesture.ActionToggleRun {
		t.Fatalf("pinch fired %v, want one toggle_run", fired)
	}
	if r.controller.Running() {
		t.Fatal("session should be paused")
	}

	// The live counter and the persisted history agree.
	st := r.controller.Snapshot()
	if st.Reps != 3 {
		t.Errorf("live reps = %d, want 3", st.Reps)
	}

	ws, err := r.store.Workouts().GetSession(workoutID)
	if err != nil {
		t.Fatalf("get workout: %v", err)
	}
	if ws.RepCount != 3 {
		t.Errorf("stored reps = %d, want 3", ws.RepCount)
	}
	if ws.EndedAt == nil {
		t.Error("workout was not closed on pause")
	}
	if ws.Mode != "SQUAT" {
		t.Errorf("workout mode = %q, want SQUAT", ws.Mode)
	}

	repRows, err := r.store.Workouts().ListReps(workoutID)
	if err != nil {
		t.Fatalf("list reps: %v", err)
	}
	if len(repRows) != 3 {
		t.Fatalf("got %d rep rows, want 3", len(repRows))
	}
	for _, row := range repRows {
		if row.Verdict == string(reps.VerdictNoData) {
			t.Errorf("rep %d recorded with no depth data", row.RepNumber)
		}
		if row.Score < 0 || row.Score > 100 {
			t.Errorf("rep %d score %v outside [0,100]", row.RepNumber, row.Score)
		}
	}
}

func TestCalibrationPersistsAcrossRestart(t *testing.T) {
	r := newRig(t)

	// Calibrate the default curl mode: top of the movement, then bottom.
	r.controller.StartCalibration()

	fired := r.holdGestureWithPose(detector.CurlPoseFrame(160),
		detector.PinchHandLandmarks(), 1200*time.Millisecond)
	if len(fired) != 1 || fired[0] != gesture.ActionCalibrationCapture {
		t.Fatalf("first capture fired %v", fired)
	}

	r.advance(2 * time.Second)
	fired = r.holdGestureWithPose(detector.CurlPoseFrame(60),
		detector.PinchHandLandmarks(), 1200*time.Millisecond)
	if len(fired) != 1 || fired[0] != gesture.ActionCalibrationCapture {
		t.Fatalf("second capture fired %v", fired)
	}

	if r.controller.Snapshot().Calibrating {
		t.Fatal("wizard still open after both captures")
	}

	// A new controller built from the store sees the calibrated band.
	profile, err := r.store.Calibration().Load()
	if err != nil {
		t.Fatalf("reload profile: %v", err)
	}
	th := profile[exercise.Curl]
	if th.Down != 145 || th.Up != 75 {
		t.Errorf("persisted thresholds = %+v, want {145 75}", th)
	}

	fresh := session.NewController(profile)
	if got := fresh.Snapshot().Thresholds; got != th {
		t.Errorf("restarted controller thresholds = %+v, want %+v", got, th)
	}
}
