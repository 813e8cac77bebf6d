// Package reps turns a smoothed joint-angle stream into counted,
// scored repetitions via a hysteresis state machine.
package reps

// DefaultAlpha is the EMA blend factor: higher is more reactive, lower
// is more stable.
const DefaultAlpha = 0.35

// Smoother is an exponential moving average over a scalar stream.
// The first sample initializes the filter so there is no warm-up lag.
// One Smoother is owned per (session, mode) pair; angle semantics differ
// between modes, so filters are never shared.
type Smoother struct {
	alpha       float64
	value       float64
	initialized bool
}

// NewSmoother creates a Smoother with the given alpha. Alpha outside
// (0,1] falls back to DefaultAlpha.
func NewSmoother(alpha float64) *Smoother {
	if alpha <= 0 || alpha > 1 {
		alpha = DefaultAlpha
	}
	return &Smoother{alpha: alpha}
}

// Update feeds a raw sample and returns the smoothed value. On a data
// gap the caller must not call Update; the filter holds its state.
func (s *Smoother) Update(raw float64) float64 {
	if !s.initialized {
		s.value = raw
		s.initialized = true
		return s.value
	}
	s.value = s.alpha*raw + (1-s.alpha)*s.value
	return s.value
}

// Value returns the current smoothed value and whether the filter has
// seen at least one sample.
func (s *Smoother) Value() (float64, bool) {
	return s.value, s.initialized
}

// Reset clears the filter to its uninitialized state.
func (s *Smoother) Reset() {
	s.value = 0
	s.initialized = false
}
