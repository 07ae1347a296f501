// Package state defines the per-session mutable record the engine
// evolves: per-module posteriors, RT/fatigue counters, and remaining-
// item pools, plus snapshot (de)serialisation. Values here carry only
// small invariant-preserving helpers; the Bayesian, RT, selection,
// stopping, and risk math live in their own packages and operate on
// these types rather than owning them.
package state

import (
	"time"

	"github.com/danielpatrickdp/dyslexia-screening/go-engine/internal/config"
)

// ItemDescriptor is the immutable, externally-supplied description of
// a single screening item. Content delivery (prompt text, media,
// answer options) is a collaborator's concern and does not appear
// here.
type ItemDescriptor struct {
	ID             int
	ModuleID       config.ModuleID
	Difficulty     float64
	MaxTimeSeconds float64
}

// ModuleStats is one module's posterior and administration record
// within a session.
type ModuleStats struct {
	// ThetaPosterior is a probability mass function over the
	// configured theta grid; it always sums to 1 within tolerance.
	ThetaPosterior []float64

	PWeak   float64
	PStrong float64
	Entropy float64

	NumItems int

	// ItemsRemaining is the set of candidate item ids not yet
	// administered in this module. Kept as a slice rather than a map
	// so iteration order — and therefore the first-encountered tie
	// break in selection's argmax — is deterministic.
	ItemsRemaining []int

	SumRT       float64
	SlowCorrect int
	Correct     int
	RapidGuess  int

	// LastStartedAt records when this module was last entered. The
	// core never reads it back; it is carried for snapshot parity
	// with the original per-module record.
	LastStartedAt *time.Time
}

// ContainsRemaining reports whether itemID is still a candidate in
// this module.
func (m *ModuleStats) ContainsRemaining(itemID int) bool {
	for _, id := range m.ItemsRemaining {
		if id == itemID {
			return true
		}
	}
	return false
}

// RemoveRemaining removes itemID from the remaining set if present,
// reporting whether it was found.
func (m *ModuleStats) RemoveRemaining(itemID int) bool {
	for i, id := range m.ItemsRemaining {
		if id == itemID {
			m.ItemsRemaining = append(m.ItemsRemaining[:i], m.ItemsRemaining[i+1:]...)
			return true
		}
	}
	return false
}

// SessionState is the full mutable record of one adaptive screening
// session. It evolves solely through engine.ProcessResponse; nothing
// outside the engine package mutates its fields directly once a
// session has started.
type SessionState struct {
	TestID int

	StartedAt        time.Time
	LastUpdateAt     time.Time
	TotalTimeSeconds float64

	// RoundNumber counts full cyclic passes over ModuleOrder: the
	// engine increments it each time choose_next_module wraps back to
	// an index at or before the one it started scanning from without
	// having stopped the session. This resolves the field's original
	// ambiguity (it was carried but never advanced) by giving it a
	// concrete meaning rather than dropping it from the snapshot.
	RoundNumber int

	CurrentModuleIndex int
	Stopped            bool

	Modules map[config.ModuleID]*ModuleStats
}

// NewSession builds a fresh SessionState with uniform posteriors over
// cfg's theta grid and per-module remaining-item lists taken from
// moduleItemIDs. A configured module absent from moduleItemIDs starts
// with an empty remaining list rather than an error: an empty module
// is valid, it simply never offers a selectable item.
func NewSession(cfg config.Config, testID int, moduleItemIDs map[config.ModuleID][]int, startedAt time.Time) *SessionState {
	uniform := make([]float64, len(cfg.ThetaGrid))
	for i := range uniform {
		uniform[i] = 1.0 / float64(len(cfg.ThetaGrid))
	}

	modules := make(map[config.ModuleID]*ModuleStats, len(cfg.ModuleOrder))
	for _, m := range cfg.ModuleOrder {
		items := append([]int(nil), moduleItemIDs[m]...)
		posterior := append([]float64(nil), uniform...)
		modules[m] = &ModuleStats{
			ThetaPosterior: posterior,
			PWeak:          0.5,
			PStrong:        0.5,
			Entropy:        1.0,
			NumItems:       0,
			ItemsRemaining: items,
		}
	}

	return &SessionState{
		TestID:             testID,
		StartedAt:          startedAt,
		LastUpdateAt:       startedAt,
		TotalTimeSeconds:   0,
		RoundNumber:        1,
		CurrentModuleIndex: 0,
		Stopped:            false,
		Modules:            modules,
	}
}
