// Package config holds the immutable hyperparameters for the adaptive
// screening engine: module order, theta grid, discrimination, fatigue,
// stopping, and risk thresholds. A Config is read-only once constructed;
// nothing in the engine mutates it mid-session.
package config

import "fmt"

// ModuleID identifies one of the fixed cognitive modules under screening.
// It is a closed set in practice, but kept as a string type (rather than
// an int enum) because it round-trips directly through JSON snapshots and
// the per-module maps the rest of the engine is built around.
type ModuleID string

const (
	ModulePhonemicAwareness ModuleID = "phonemic_awareness"
	ModuleRAN               ModuleID = "ran"
	ModuleObjectRecognition ModuleID = "object_recognition"
)

// ModuleLabels maps each module id to the human-readable name used in
// report-facing text (explanations, CLI output), mirroring the original
// backend's MODULE_LABELS table.
var ModuleLabels = map[ModuleID]string{
	ModulePhonemicAwareness: "Phonemic Awareness",
	ModuleRAN:               "Rapid Automatized Naming (RAN)",
	ModuleObjectRecognition: "Object Recognition",
}

// LabelFor returns the human-readable label for module, falling back to
// the raw id when it has no entry in ModuleLabels.
func LabelFor(module ModuleID) string {
	if label, ok := ModuleLabels[module]; ok {
		return label
	}
	return string(module)
}

// Config bundles every hyperparameter the engine consults. All fields are
// set once at construction and never mutated afterward; a tuning harness
// should build a fresh Config per run rather than editing one in place.
type Config struct {
	// ModuleOrder is the canonical, ordered module sequence. Round-robin
	// selection in choose_next_module walks this slice, never a map, so
	// iteration order is stable regardless of Go's randomized map order.
	ModuleOrder []ModuleID

	// ThetaGrid is the ordered discrete latent-ability grid, e.g.
	// [-2, -1, 0, 1, 2].
	ThetaGrid []float64

	// ThetaWeakThreshold (tau) splits the grid into weak (< tau) and
	// strong (>= tau) halves.
	ThetaWeakThreshold float64

	// Discrimination holds the per-module 2PL discrimination parameter a.
	// A module absent from this map defaults to 1.0.
	Discrimination map[ModuleID]float64

	// SlowRTFactor: a correct response is "slow-but-correct" if its RT
	// exceeds SlowRTFactor * item.max_time_seconds. Must be > 1.
	SlowRTFactor float64

	// RapidGuessFraction: an incorrect response is a "rapid guess" if its
	// RT is below RapidGuessFraction * item.max_time_seconds. In (0, 1).
	RapidGuessFraction float64

	// FatigueSlope is the per-minute decay rate applied to the fatigue
	// factor. >= 0.
	FatigueSlope float64

	// MinFatigueFactor floors the fatigue factor. In (0, 1].
	MinFatigueFactor float64

	// MinItemsPerModule is the minimum administered-item count before a
	// module can be considered settled.
	MinItemsPerModule int

	// MaxItemsTotal is the hard cap on items administered across all
	// modules before the session stops (S1).
	MaxItemsTotal int

	// MaxTestTimeMinutes is the hard cap on elapsed session time (S2).
	MaxTestTimeMinutes float64

	// PConfident is the minimum max(p_weak, p_strong) required to call a
	// module settled. In (0.5, 1).
	PConfident float64

	// EntropyThreshold is the maximum module entropy allowed to call it
	// settled. In (0, 1].
	EntropyThreshold float64

	// MinInfoGain is the minimum adjusted information gain an item must
	// offer to be selectable, and the floor used by the global stop scan
	// (S4).
	MinInfoGain float64

	// ModuleWeights weights each module's P(weak) in the global risk
	// score. Typically sums to 1, but this is not enforced.
	ModuleWeights map[ModuleID]float64

	// RiskScoreHigh / RiskScoreModerate are the category cut points.
	// 0 <= RiskScoreModerate < RiskScoreHigh <= 1.
	RiskScoreHigh     float64
	RiskScoreModerate float64

	// KeyModules is the pair whose joint settling is, on its own,
	// sufficient to stop the session (S3). Surfaced here per spec.md
	// OQ3 rather than hardcoded in the stopping package.
	KeyModules [2]ModuleID
}

// Default returns the hyperparameters carried over from the original
// EF-ADS backend's config.py, translated into Config's shape. Values
// here are not re-derived from data; item difficulty/discrimination
// remain externally supplied per item or per module.
func Default() Config {
	return Config{
		ModuleOrder: []ModuleID{
			ModulePhonemicAwareness,
			ModuleRAN,
			ModuleObjectRecognition,
		},
		ThetaGrid:          []float64{-2.0, -1.0, 0.0, 1.0, 2.0},
		ThetaWeakThreshold: 0.0,
		Discrimination: map[ModuleID]float64{
			ModulePhonemicAwareness: 1.2,
			ModuleRAN:               1.0,
			ModuleObjectRecognition: 1.0,
		},
		SlowRTFactor:       1.3,
		RapidGuessFraction: 0.25,
		FatigueSlope:       0.05,
		MinFatigueFactor:   0.4,
		MinItemsPerModule:  4,
		MaxItemsTotal:      25,
		MaxTestTimeMinutes: 25.0,
		PConfident:         0.75,
		EntropyThreshold:   0.6,
		MinInfoGain:        0.01,
		ModuleWeights: map[ModuleID]float64{
			ModulePhonemicAwareness: 0.45,
			ModuleRAN:               0.35,
			ModuleObjectRecognition: 0.20,
		},
		RiskScoreHigh:     0.7,
		RiskScoreModerate: 0.4,
		KeyModules:        [2]ModuleID{ModulePhonemicAwareness, ModuleRAN},
	}
}

// DiscriminationFor returns the configured discrimination for a module,
// defaulting to 1.0 when the module has no explicit entry.
func (c Config) DiscriminationFor(module ModuleID) float64 {
	if a, ok := c.Discrimination[module]; ok {
		return a
	}
	return 1.0
}

// WeightFor returns the configured module weight, defaulting to 0 when
// absent (an unweighted module contributes nothing to the global score).
func (c Config) WeightFor(module ModuleID) float64 {
	return c.ModuleWeights[module]
}

// HasModule reports whether module is part of the configured module set.
func (c Config) HasModule(module ModuleID) bool {
	for _, m := range c.ModuleOrder {
		if m == module {
			return true
		}
	}
	return false
}

// Validate performs a light sanity check on a Config, catching the kind
// of misconfiguration that would otherwise surface as a confusing
// numerical failure deep inside the engine. It is not invoked
// automatically — callers who construct a Config by hand are expected to
// call it once at startup.
func (c Config) Validate() error {
	if len(c.ModuleOrder) == 0 {
		return fmt.Errorf("config: module order must not be empty")
	}
	if len(c.ThetaGrid) == 0 {
		return fmt.Errorf("config: theta grid must not be empty")
	}
	if c.SlowRTFactor <= 1 {
		return fmt.Errorf("config: slow_rt_factor must be > 1, got %v", c.SlowRTFactor)
	}
	if c.RapidGuessFraction <= 0 || c.RapidGuessFraction >= 1 {
		return fmt.Errorf("config: rapid_guess_fraction must be in (0,1), got %v", c.RapidGuessFraction)
	}
	if c.MinFatigueFactor <= 0 || c.MinFatigueFactor > 1 {
		return fmt.Errorf("config: min_fatigue_factor must be in (0,1], got %v", c.MinFatigueFactor)
	}
	if c.MinItemsPerModule < 1 {
		return fmt.Errorf("config: min_items_per_module must be >= 1, got %v", c.MinItemsPerModule)
	}
	if c.PConfident <= 0.5 || c.PConfident >= 1 {
		return fmt.Errorf("config: p_confident must be in (0.5,1), got %v", c.PConfident)
	}
	if c.EntropyThreshold <= 0 || c.EntropyThreshold > 1 {
		return fmt.Errorf("config: entropy_threshold must be in (0,1], got %v", c.EntropyThreshold)
	}
	if c.RiskScoreModerate < 0 || c.RiskScoreModerate >= c.RiskScoreHigh || c.RiskScoreHigh > 1 {
		return fmt.Errorf("config: require 0 <= risk_score_moderate < risk_score_high <= 1")
	}
	if !c.HasModule(c.KeyModules[0]) || !c.HasModule(c.KeyModules[1]) {
		return fmt.Errorf("config: key modules %v must be part of module order", c.KeyModules)
	}
	return nil
}
