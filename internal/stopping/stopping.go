// Package stopping implements the module-settled predicate and the
// multi-criterion global stop decision (S1-S4).
package stopping

import (
	"github.com/danielpatrickdp/dyslexia-screening/go-engine/internal/config"
	"github.com/danielpatrickdp/dyslexia-screening/go-engine/internal/selection"
	"github.com/danielpatrickdp/dyslexia-screening/go-engine/internal/state"
)

// ModuleSettled reports whether a module's posterior is confident
// enough to stop administering items in it: enough items seen, low
// enough entropy, and a confident weak/strong split, all three ANDed.
func ModuleSettled(stats *state.ModuleStats, cfg config.Config) bool {
	if stats.NumItems < cfg.MinItemsPerModule {
		return false
	}
	if stats.Entropy > cfg.EntropyThreshold {
		return false
	}
	if max(stats.PWeak, stats.PStrong) < cfg.PConfident {
		return false
	}
	return true
}

// MaxAchievableGain scans every not-yet-settled module's remaining
// items and returns the greatest base (not fatigue-adjusted) gain
// found, or zero if nothing remains.
func MaxAchievableGain(session *state.SessionState, itemPool map[int]state.ItemDescriptor, cfg config.Config) float64 {
	maxGain := 0.0

	for moduleID, stats := range session.Modules {
		if ModuleSettled(stats, cfg) {
			continue
		}

		a := cfg.DiscriminationFor(moduleID)
		for _, itemID := range stats.ItemsRemaining {
			item, ok := itemPool[itemID]
			if !ok || item.ModuleID != moduleID {
				continue
			}

			expected := selection.ExpectedPostEntropy(stats.ThetaPosterior, cfg.ThetaGrid, cfg.ThetaWeakThreshold, a, item.Difficulty)
			gain := selection.InformationGain(stats.Entropy, expected)
			if gain > maxGain {
				maxGain = gain
			}
		}
	}

	return maxGain
}

// ShouldStopGlobally evaluates S1-S4 and reports whether the session
// should terminate.
func ShouldStopGlobally(session *state.SessionState, itemPool map[int]state.ItemDescriptor, cfg config.Config) bool {
	totalItems := 0
	for _, stats := range session.Modules {
		totalItems += stats.NumItems
	}
	if totalItems >= cfg.MaxItemsTotal { // S1
		return true
	}

	if session.TotalTimeSeconds/60.0 >= cfg.MaxTestTimeMinutes { // S2
		return true
	}

	keyA, okA := session.Modules[cfg.KeyModules[0]]
	keyB, okB := session.Modules[cfg.KeyModules[1]]
	if okA && okB && ModuleSettled(keyA, cfg) && ModuleSettled(keyB, cfg) { // S3
		return true
	}

	if MaxAchievableGain(session, itemPool, cfg) < cfg.MinInfoGain { // S4
		return true
	}

	return false
}
