// Package selection picks the next item to administer within a
// module: expected post-item entropy, information gain, fatigue-scaled
// adjusted gain, and the argmax over remaining candidates.
package selection

import (
	"github.com/danielpatrickdp/dyslexia-screening/go-engine/internal/bayes"
	"github.com/danielpatrickdp/dyslexia-screening/go-engine/internal/config"
	"github.com/danielpatrickdp/dyslexia-screening/go-engine/internal/rtfatigue"
	"github.com/danielpatrickdp/dyslexia-screening/go-engine/internal/state"
)

const degenerateProb = 1e-12

// ExpectedPostEntropy computes the entropy expected if item (a, b)
// were administered next, given the module's current posterior. When
// P(correct) or P(incorrect) is degenerate (<1e-12), it returns the
// entropy of the single dominant-outcome posterior rather than a
// weighted average, avoiding a 0*infinity term.
func ExpectedPostEntropy(posterior, grid []float64, tau, a, b float64) float64 {
	pCorrect := 0.0
	for i, theta := range grid {
		pCorrect += posterior[i] * bayes.ProbCorrect(theta, a, b)
	}
	if pCorrect < 0 {
		pCorrect = 0
	}
	if pCorrect > 1 {
		pCorrect = 1
	}
	pIncorrect := 1.0 - pCorrect

	if pCorrect < degenerateProb || pIncorrect < degenerateProb {
		outcome := pCorrect >= pIncorrect
		post := bayes.UpdatePosterior(posterior, grid, a, b, outcome)
		pw, ps := bayes.ProjectWeakStrong(post, grid, tau)
		return bayes.Entropy(pw, ps)
	}

	postCorrect := bayes.UpdatePosterior(posterior, grid, a, b, true)
	pwC, psC := bayes.ProjectWeakStrong(postCorrect, grid, tau)
	hCorrect := bayes.Entropy(pwC, psC)

	postIncorrect := bayes.UpdatePosterior(posterior, grid, a, b, false)
	pwI, psI := bayes.ProjectWeakStrong(postIncorrect, grid, tau)
	hIncorrect := bayes.Entropy(pwI, psI)

	return pCorrect*hCorrect + pIncorrect*hIncorrect
}

// InformationGain is current entropy minus the expected post-item
// entropy, floored at zero to absorb tiny numerical negatives.
func InformationGain(currentEntropy, expectedPostEntropy float64) float64 {
	gain := currentEntropy - expectedPostEntropy
	if gain < 0 {
		return 0
	}
	return gain
}

// AdjustedGain scales baseGain by the fatigue factor. A zero base gain
// short-circuits to zero regardless of the fatigue factor.
func AdjustedGain(baseGain, fatigueFactor float64) float64 {
	if baseGain <= 0 {
		return 0
	}
	return baseGain * fatigueFactor
}

// SelectNextItem picks the highest-adjusted-gain item remaining in
// moduleID, among candidates in itemPool, subject to cfg.MinInfoGain.
// Ties go to the first-encountered candidate in the module's
// items_remaining iteration order. Returns (nil, false) if no
// candidate qualifies.
func SelectNextItem(cfg config.Config, session *state.SessionState, moduleID config.ModuleID, itemPool map[int]state.ItemDescriptor) (*state.ItemDescriptor, bool) {
	stats, ok := session.Modules[moduleID]
	if !ok {
		return nil, false
	}

	a := cfg.DiscriminationFor(moduleID)
	fatigue := rtfatigue.FatigueFactor(session.TotalTimeSeconds, cfg.FatigueSlope, cfg.MinFatigueFactor)

	var best *state.ItemDescriptor
	bestGain := 0.0

	for _, itemID := range stats.ItemsRemaining {
		item, ok := itemPool[itemID]
		if !ok || item.ModuleID != moduleID {
			continue
		}

		expected := ExpectedPostEntropy(stats.ThetaPosterior, cfg.ThetaGrid, cfg.ThetaWeakThreshold, a, item.Difficulty)
		base := InformationGain(stats.Entropy, expected)
		adjusted := AdjustedGain(base, fatigue)

		if adjusted < cfg.MinInfoGain {
			continue
		}
		if best == nil || adjusted > bestGain {
			itemCopy := item
			best = &itemCopy
			bestGain = adjusted
		}
	}

	return best, best != nil
}
