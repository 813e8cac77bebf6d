// Package session owns the per-session state: the active exercise mode,
// the running flag, one rep tracker per mode, the gesture debouncer and
// the calibration wizard. All session mutations funnel through one
// mutex so a mode switch and a rep tick can never race.
package session

import (
	"sync"
	"time"

	"github.com/ayusman/repcoach/internal/calibration"
	"github.com/ayusman/repcoach/internal/detector"
	"github.com/ayusman/repcoach/internal/exercise"
	"github.com/ayusman/repcoach/internal/gesture"
	"github.com/ayusman/repcoach/internal/reps"
)

// MaxHandAge is the freshness gate on hand frames: anything older is
// treated as "no gesture this tick".
const MaxHandAge = 250 * time.Millisecond

// rawAngleTTL bounds how long a pose-stream angle may serve a
// calibration capture arriving on the hand stream.
const rawAngleTTL = time.Second

// PoseTick is the outcome of feeding one pose frame.
type PoseTick struct {
	Result reps.Result
	// Quality is set once per completed, counted rep.
	Quality *reps.Quality
}

// ActionEvent is the outcome of feeding one hand frame.
type ActionEvent struct {
	Action gesture.Action
	// NewProfile is set when a calibration capture completed the wizard;
	// the caller persists it.
	NewProfile exercise.Profile
}

// Status is a point-in-time snapshot for the tray, the HTTP API and the
// websocket broadcast.
type Status struct {
	Running       bool                `json:"running"`
	Mode          string              `json:"mode"`
	Reps          int                 `json:"reps"`
	Phase         reps.Phase          `json:"phase"`
	Calibrating   bool                `json:"calibrating"`
	CalibrationAt string              `json:"calibration_step,omitempty"`
	Message       string              `json:"message,omitempty"`
	Thresholds    exercise.Thresholds `json:"thresholds"`
	LastQuality   *reps.Quality       `json:"last_quality,omitempty"`
}

// Controller is the session reducer. Pose ticks and hand ticks may
// arrive from different goroutines; each call is applied atomically.
type Controller struct {
	mu sync.Mutex

	profile   exercise.Profile
	mode      exercise.Mode
	running   bool
	trackers  map[exercise.Mode]*reps.Tracker
	smoothers map[exercise.Mode]*reps.Smoother
	debouncer *gesture.Debouncer
	calib     *calibration.Session

	lastRawAngle float64
	lastRawAt    time.Time
	lastQuality  *reps.Quality
	message      string
}

// NewController creates a controller with the given calibration profile.
// A nil profile falls back to the built-in defaults.
func NewController(profile exercise.Profile) *Controller {
	if profile == nil {
		profile = exercise.DefaultProfile()
	}
	c := &Controller{
		profile:   profile.Clone(),
		mode:      exercise.Curl,
		trackers:  make(map[exercise.Mode]*reps.Tracker),
		smoothers: make(map[exercise.Mode]*reps.Smoother),
		debouncer: gesture.NewDebouncer(),
	}
	return c
}

func (c *Controller) tracker(m exercise.Mode) *reps.Tracker {
	t, ok := c.trackers[m]
	if !ok {
		t = reps.NewTracker(m, c.profile[m])
		c.trackers[m] = t
	}
	return t
}

func (c *Controller) smoother(m exercise.Mode) *reps.Smoother {
	s, ok := c.smoothers[m]
	if !ok {
		s = reps.NewSmoother(reps.DefaultAlpha)
		c.smoothers[m] = s
	}
	return s
}

// HandlePose feeds one pose frame (or nil for a no-detection tick) at
// the given time and returns the rep result for the active mode.
func (c *Controller) HandlePose(frame *detector.PoseFrame, now time.Time) PoseTick {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, ok := exercise.PrimaryAngle(frame, c.mode)

	smoothed := 0.0
	if ok {
		smoothed = c.smoother(c.mode).Update(raw)
		c.lastRawAngle = raw
		c.lastRawAt = now
	} else if v, init := c.smoother(c.mode).Value(); init {
		// Carry the last smoothed value into the result for display,
		// flagged as no-data by ok=false.
		smoothed = v
	}

	res := c.tracker(c.mode).Update(smoothed, raw, ok, c.running, now)

	tick := PoseTick{Result: res}
	if res.Completed != nil {
		q := reps.ScoreRep(c.mode, c.tracker(c.mode).Thresholds(), *res.Completed)
		c.lastQuality = &q
		tick.Quality = &q
	}
	return tick
}

// HandleHands feeds one hand frame (or nil) at the given time,
// classifies it, runs the debouncer, and applies any fired action.
func (c *Controller) HandleHands(frame *detector.HandFrame, now time.Time) ActionEvent {
	c.mu.Lock()
	defer c.mu.Unlock()

	kind := gesture.None
	if frame != nil && frame.Age(now) <= MaxHandAge {
		kind = gesture.Classify(frame)
	}

	ctx := gesture.Context{
		Running:     c.running,
		Calibrating: c.calib.Active(),
	}

	action := c.debouncer.Observe(kind, ctx, now)
	return c.apply(action, now)
}

// apply resolves a fired action against the session state. Caller holds
// the lock.
func (c *Controller) apply(action gesture.Action, now time.Time) ActionEvent {
	ev := ActionEvent{Action: action}

	switch action {
	case gesture.ActionToggleRun:
		c.running = !c.running
		if c.running {
			c.message = "Session running"
		} else {
			c.message = "Session paused"
		}

	case gesture.ActionNextMode:
		c.mode = c.mode.Next()
		// A fresh mode starts with a clean count and filter.
		c.tracker(c.mode).Reset()
		c.smoother(c.mode).Reset()
		c.lastQuality = nil
		c.message = "Mode: " + c.mode.String()

	case gesture.ActionCalibrationCapture:
		angle, ok := c.freshRawAngle(now)
		th, done := c.calib.Capture(angle, ok)
		c.message = c.calib.Status()
		if done {
			c.profile[c.calib.Mode()] = th
			c.tracker(c.calib.Mode()).SetThresholds(th)
			ev.NewProfile = c.profile.Clone()
		}
	}

	return ev
}

func (c *Controller) freshRawAngle(now time.Time) (float64, bool) {
	if c.lastRawAt.IsZero() || now.Sub(c.lastRawAt) > rawAngleTTL {
		return 0, false
	}
	return c.lastRawAngle, true
}

// StartCalibration opens the calibration wizard for the active mode.
// The session is paused while calibrating.
func (c *Controller) StartCalibration() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	c.calib = calibration.Start(c.mode)
	c.message = c.calib.Status()
}

// AbandonCalibration closes an in-flight wizard, if any.
func (c *Controller) AbandonCalibration() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calib.Active() {
		c.calib.Abandon()
		c.message = c.calib.Status()
	}
}

// SetProfile replaces the calibration profile, e.g. after an API edit.
func (c *Controller) SetProfile(p exercise.Profile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.profile = p.Clone()
	for m, t := range c.trackers {
		t.SetThresholds(c.profile[m])
	}
}

// Profile returns a copy of the current calibration profile.
func (c *Controller) Profile() exercise.Profile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.profile.Clone()
}

// Running reports whether the session is counting.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Mode returns the active exercise mode.
func (c *Controller) Mode() exercise.Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// ResetReps zeroes the active mode's counter.
func (c *Controller) ResetReps() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tracker(c.mode).Reset()
	c.smoother(c.mode).Reset()
	c.lastQuality = nil
}

// Snapshot returns a point-in-time status.
func (c *Controller) Snapshot() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.tracker(c.mode)
	st := Status{
		Running:     c.running,
		Mode:        c.mode.String(),
		Reps:        t.Reps(),
		Phase:       t.Phase(),
		Calibrating: c.calib.Active(),
		Message:     c.message,
		Thresholds:  c.profile[c.mode],
		LastQuality: c.lastQuality,
	}
	if c.calib.Active() {
		st.CalibrationAt = string(c.calib.Step())
	}
	return st
}
