package app

import (
	"log"
	"time"

	"github.com/ayusman/repcoach/internal/detector"
	"github.com/ayusman/repcoach/internal/gesture"
	"github.com/ayusman/repcoach/internal/session"
	"github.com/ayusman/repcoach/internal/telemetry"
)

// runPipeline is the main loop. Frames are processed serially to
// completion; a frame that cannot be processed is a data-gap tick, not
// an error. Motion gates the expensive landmark detection: idle mode
// samples at IdleFPS without detection, active mode runs detection at
// ActiveFPS, and 2s without motion drops back to idle.
func (a *App) runPipeline(stopCh chan struct{}) {
	activeMode := false
	lastMotionTime := time.Now()

	frameInterval := time.Second / time.Duration(IdleFPS)
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !a.IsEnabled() {
				continue
			}

			now := time.Now()

			frame, err := a.Camera().ReadFrame()
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				a.tick(nil, now)
				continue
			}

			motionDetected, _ := a.motion.Detect(frame)

			if motionDetected {
				lastMotionTime = now

				if !activeMode {
					activeMode = true
					a.Camera().SetFPS(ActiveFPS)
					frameInterval = time.Second / time.Duration(ActiveFPS)
					ticker.Reset(frameInterval)
					log.Println("Switched to active mode")
				}
			} else if activeMode {
				if time.Since(lastMotionTime) > time.Duration(IdleTimeoutMs)*time.Millisecond {
					activeMode = false
					a.Camera().SetFPS(IdleFPS)
					frameInterval = time.Second / time.Duration(IdleFPS)
					ticker.Reset(frameInterval)
					log.Println("Switched to idle mode")
				}
			}

			if !activeMode || a.Detector() == nil {
				frame.Close()
				// Keep the state machines ticking so gesture holds and
				// rep phases decay instead of freezing mid-flight.
				a.tick(nil, now)
				continue
			}

			obs, err := a.Detector().Detect(frame)
			frame.Close()

			if err != nil {
				// Detector failure is a data gap, never a crash.
				log.Printf("Error detecting landmarks: %v", err)
				obs = nil
			}

			a.tick(obs, now)
		}
	}
}

// tick feeds one observation (or nil) through both session streams and
// applies the side effects of whatever they produced.
func (a *App) tick(obs *detector.Observation, now time.Time) {
	var poseFrame *detector.PoseFrame
	var handFrame *detector.HandFrame
	if obs != nil {
		poseFrame = obs.Pose
		handFrame = obs.Hands
	}

	poseTick := a.controller.HandlePose(poseFrame, now)
	if poseTick.Quality != nil {
		a.recordRep(poseTick.Result.Reps, poseTick)
		a.notifyStatus()
	}

	ev := a.controller.HandleHands(handFrame, now)
	if ev.Action != gesture.ActionNone {
		a.applyActionEffects(ev)
		a.notifyStatus()
	}
}

// recordRep persists and publishes one counted rep.
func (a *App) recordRep(repNumber int, tick session.PoseTick) {
	log.Printf("Rep %d: %s (depth %.0f%%, score %.0f)",
		repNumber, tick.Quality.Verdict, tick.Quality.DepthPct, tick.Quality.Score)

	a.mu.RLock()
	workout := a.workout
	a.mu.RUnlock()

	if a.config.Store != nil && workout != nil {
		if err := a.config.Store.Workouts().RecordRep(workout.ID, repNumber, *tick.Quality); err != nil {
			log.Printf("Failed to record rep: %v", err)
		}
	}

	if a.config.Telemetry != nil {
		sessionID := ""
		if workout != nil {
			sessionID = workout.ID
		}
		a.config.Telemetry.Publish(telemetry.Event{
			Type:      "rep",
			SessionID: sessionID,
			Mode:      a.controller.Mode().String(),
			RepNumber: repNumber,
			Quality:   tick.Quality,
		})
	}
}

// applyActionEffects handles the persistence and telemetry side of a
// fired gesture action. The session state itself was already mutated by
// the controller.
func (a *App) applyActionEffects(ev session.ActionEvent) {
	switch ev.Action {
	case gesture.ActionToggleRun:
		if a.controller.Running() {
			a.startWorkout()
		} else {
			a.endWorkout()
		}

	case gesture.ActionNextMode:
		log.Printf("Mode switched to %s", a.controller.Mode())
		if a.config.Telemetry != nil {
			a.config.Telemetry.Publish(telemetry.Event{
				Type: "mode_switch",
				Mode: a.controller.Mode().String(),
			})
		}

	case gesture.ActionCalibrationCapture:
		log.Printf("Calibration: %s", a.controller.Snapshot().Message)
		if ev.NewProfile != nil && a.config.Store != nil {
			if err := a.config.Store.Calibration().SaveProfile(ev.NewProfile); err != nil {
				log.Printf("Failed to save calibration profile: %v", err)
			}
		}
	}
}

func (a *App) startWorkout() {
	mode := a.controller.Mode().String()
	log.Printf("Session running (%s)", mode)

	if a.config.Store != nil {
		ws, err := a.config.Store.Workouts().StartSession(mode)
		if err != nil {
			log.Printf("Failed to start workout session: %v", err)
		} else {
			a.mu.Lock()
			a.workout = ws
			a.mu.Unlock()
		}
	}

	if a.config.Telemetry != nil {
		a.mu.RLock()
		sessionID := ""
		if a.workout != nil {
			sessionID = a.workout.ID
		}
		a.mu.RUnlock()
		a.config.Telemetry.Publish(telemetry.Event{
			Type:      "session_start",
			SessionID: sessionID,
			Mode:      mode,
		})
	}
}

func (a *App) endWorkout() {
	log.Println("Session paused")

	a.mu.Lock()
	workout := a.workout
	a.workout = nil
	a.mu.Unlock()

	if workout == nil {
		return
	}

	if a.config.Store != nil {
		if err := a.config.Store.Workouts().EndSession(workout.ID); err != nil {
			log.Printf("Failed to end workout session: %v", err)
		}
	}

	if a.config.Telemetry != nil {
		a.config.Telemetry.Publish(telemetry.Event{
			Type:      "session_end",
			SessionID: workout.ID,
			Mode:      workout.Mode,
		})
	}
}
