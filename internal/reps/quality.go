package reps

import (
	"math"

	"github.com/ayusman/repcoach/internal/exercise"
)

// Verdict is the per-rep quality category.
type Verdict string

const (
	VerdictNoData         Verdict = "NO DATA"
	VerdictTooFastShallow Verdict = "TOO FAST, TOO SHALLOW"
	VerdictTooFast        Verdict = "TOO FAST"
	VerdictTooSlow        Verdict = "TOO SLOW"
	VerdictShallow        Verdict = "SHALLOW"
	VerdictExcellent      Verdict = "EXCELLENT"
	VerdictGood           Verdict = "GOOD"
)

// Scoring constants. Magnitudes are product tuning; the invariants are
// that perfect depth at acceptable tempo scores highest, any tempo
// violation scores below what depth alone would give, and the score
// stays in [0,100].
const (
	shallowDepthPct   = 70.0
	excellentDepthPct = 90.0
	tempoPenalty      = 25.0
	tooFastPenalty    = 10.0
	excellentBonus    = 5.0
	minThresholdSpan  = 1.0
)

// Quality is the scored outcome of one completed rep.
type Quality struct {
	DepthPct float64 `json:"depth_pct"`
	TempoMs  int64   `json:"tempo_ms"`
	Score    float64 `json:"score"`
	Verdict  Verdict `json:"verdict"`
	Tips     string  `json:"tips"`
}

// DepthPercent maps the deepest angle of a cycle onto [0,100], where
// the up threshold is 0% and the down threshold is 100%. The span is
// floored at one degree so a degenerate profile cannot blow up the
// division.
func DepthPercent(th exercise.Thresholds, deepest float64) float64 {
	span := th.Down - th.Up
	if math.Abs(span) < minThresholdSpan {
		span = math.Copysign(minThresholdSpan, span)
		if span == 0 {
			span = minThresholdSpan
		}
	}
	pct := (deepest - th.Up) / span * 100
	return math.Max(0, math.Min(100, pct))
}

// ScoreRep scores one completed rep. tempoMs of 0 means this was the
// first rep of the session: no tempo penalty, no tempo bonus.
func ScoreRep(mode exercise.Mode, th exercise.Thresholds, c Completed) Quality {
	q := Quality{TempoMs: c.TempoMs}

	if !c.HasDepth {
		q.Verdict = VerdictNoData
		q.Tips = "Could not see the joint clearly. Adjust the camera and try again."
		return q
	}

	q.DepthPct = DepthPercent(th, c.Deepest)

	tempo := mode.Tempo()
	tooFast := c.TempoMs > 0 && c.TempoMs < tempo.MinGoodMs
	tooSlow := c.TempoMs > 0 && tempo.MaxGoodMs > 0 && c.TempoMs > tempo.MaxGoodMs
	tempoOK := !tooFast && !tooSlow

	// First match wins.
	switch {
	case tooFast && q.DepthPct < shallowDepthPct:
		q.Verdict = VerdictTooFastShallow
		q.Tips = "Slow down and sink deeper into the movement."
	case tooFast:
		q.Verdict = VerdictTooFast
		q.Tips = "Good depth. Control the movement, count two seconds each way."
	case tooSlow:
		q.Verdict = VerdictTooSlow
		q.Tips = "Keep the movement continuous without long pauses."
	case q.DepthPct < shallowDepthPct:
		q.Verdict = VerdictShallow
		q.Tips = "Go deeper to hit the full range of motion."
	case q.DepthPct >= excellentDepthPct:
		q.Verdict = VerdictExcellent
		q.Tips = "Full range at a controlled tempo. Keep it up."
	default:
		q.Verdict = VerdictGood
		q.Tips = "Solid rep. A little more depth makes it excellent."
	}

	score := q.DepthPct
	if !tempoOK {
		score -= tempoPenalty
	}
	if tooFast {
		score -= tooFastPenalty
	}
	if q.DepthPct >= excellentDepthPct && tempoOK {
		score += excellentBonus
	}
	q.Score = math.Max(0, math.Min(100, score))

	return q
}
