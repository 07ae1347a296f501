// Package rtfatigue classifies response times, accumulates per-module
// RT statistics, advances session elapsed time, and derives the global
// fatigue factor applied during item selection.
//
// This package owns the single site where ModuleStats.Correct is
// incremented. The bayes package never touches it, reconciling the
// original double-counted correct in favour of counting it exactly
// once, here, alongside the other RT-derived counters it naturally
// belongs with.
package rtfatigue

import (
	"time"

	"github.com/danielpatrickdp/dyslexia-screening/go-engine/internal/state"
)

// ClassifyResponseTime flags a response as slow-but-correct or
// rapid-guess relative to an item's max_time_seconds ceiling, using the
// configured slow-RT factor and rapid-guess fraction. Both flags are
// false whenever maxTimeSeconds <= 0.
func ClassifyResponseTime(rtSeconds, maxTimeSeconds, slowRTFactor, rapidGuessFraction float64, correct bool) (slowCorrect, rapidGuess bool) {
	if maxTimeSeconds <= 0 {
		return false, false
	}
	slowCorrect = correct && rtSeconds > slowRTFactor*maxTimeSeconds
	rapidGuess = !correct && rtSeconds < rapidGuessFraction*maxTimeSeconds
	return slowCorrect, rapidGuess
}

// UpdateModuleRTStats updates sum_rt, correct, slow_correct, and
// rapid_guess on stats for one response. This is the single site that
// increments Correct; bayes.UpdatePosterior never does.
func UpdateModuleRTStats(stats *state.ModuleStats, rtSeconds, maxTimeSeconds, slowRTFactor, rapidGuessFraction float64, correct bool) {
	slowCorrect, rapidGuess := ClassifyResponseTime(rtSeconds, maxTimeSeconds, slowRTFactor, rapidGuessFraction, correct)

	stats.SumRT += rtSeconds

	if correct {
		stats.Correct++
		if slowCorrect {
			stats.SlowCorrect++
		}
	}
	if rapidGuess {
		stats.RapidGuess++
	}
}

// UpdateSessionTime advances last_update_at and total_time_seconds
// given the timestamp of the latest response, clamping elapsed time at
// zero.
func UpdateSessionTime(session *state.SessionState, responseTimestamp time.Time) {
	session.LastUpdateAt = responseTimestamp
	elapsed := responseTimestamp.Sub(session.StartedAt).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}
	session.TotalTimeSeconds = elapsed
}

// FatigueFactor computes the multiplicative scalar applied to
// information gain during selection: linear decay from 1.0, floored at
// minFactor.
func FatigueFactor(totalTimeSeconds, slope, minFactor float64) float64 {
	minutes := totalTimeSeconds / 60.0
	raw := 1.0 - slope*minutes
	if raw > 1.0 {
		raw = 1.0
	}
	if raw < minFactor {
		raw = minFactor
	}
	return raw
}
