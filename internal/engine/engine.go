// Package engine orchestrates the decision core: session lifecycle,
// module/item selection, and the process_response pipeline that ties
// Bayesian updates, RT/fatigue counters, stopping, and risk together.
package engine

import (
	"time"

	"github.com/danielpatrickdp/dyslexia-screening/go-engine/internal/bayes"
	"github.com/danielpatrickdp/dyslexia-screening/go-engine/internal/config"
	"github.com/danielpatrickdp/dyslexia-screening/go-engine/internal/errs"
	"github.com/danielpatrickdp/dyslexia-screening/go-engine/internal/risk"
	"github.com/danielpatrickdp/dyslexia-screening/go-engine/internal/rtfatigue"
	"github.com/danielpatrickdp/dyslexia-screening/go-engine/internal/selection"
	"github.com/danielpatrickdp/dyslexia-screening/go-engine/internal/state"
	"github.com/danielpatrickdp/dyslexia-screening/go-engine/internal/stopping"
)

// ProcessResult is the outcome of one ProcessResponse call.
type ProcessResult struct {
	ShouldStop bool
	NextItem   *state.ItemDescriptor
	GlobalRisk *risk.GlobalRiskResult
}

// InitialiseSession constructs a fresh SessionState with uniform
// posteriors and per-module remaining lists; a module absent from
// moduleItemIDs gets an empty remaining list.
func InitialiseSession(cfg config.Config, testID int, moduleItemIDs map[config.ModuleID][]int, startedAt time.Time) *state.SessionState {
	return state.NewSession(cfg, testID, moduleItemIDs, startedAt)
}

// ChooseNextModule scans cfg.ModuleOrder cyclically starting at
// session.CurrentModuleIndex for the first module that is not settled
// and still has items_remaining, updates the cursor, and returns its
// id. When the scan has to wrap past the end of the order to find its
// answer, RoundNumber is incremented — a full cycle was completed
// without the session stopping. Returns ("", false) if no such module
// exists.
func ChooseNextModule(session *state.SessionState, cfg config.Config) (config.ModuleID, bool) {
	n := len(cfg.ModuleOrder)
	if n == 0 {
		return "", false
	}

	start := session.CurrentModuleIndex % n
	for i := 0; i < n; i++ {
		idx := (start + i) % n
		moduleID := cfg.ModuleOrder[idx]

		stats, ok := session.Modules[moduleID]
		if !ok || stopping.ModuleSettled(stats, cfg) || len(stats.ItemsRemaining) == 0 {
			continue
		}

		if i > 0 && idx <= start {
			session.RoundNumber++
		}
		session.CurrentModuleIndex = idx
		return moduleID, true
	}

	return "", false
}

// StartNewTest initialises a session, positions the cursor at the
// start of the module order, and picks the first module and item.
func StartNewTest(cfg config.Config, testID int, moduleItemIDs map[config.ModuleID][]int, itemPool map[int]state.ItemDescriptor, startedAt time.Time) (*state.SessionState, *state.ItemDescriptor) {
	session := InitialiseSession(cfg, testID, moduleItemIDs, startedAt)
	session.CurrentModuleIndex = 0

	moduleID, ok := ChooseNextModule(session, cfg)
	if !ok {
		return session, nil
	}

	item, ok := selection.SelectNextItem(cfg, session, moduleID, itemPool)
	if !ok {
		return session, nil
	}
	return session, item
}

// ProcessResponse runs one response through the full pipeline: session
// time, Bayesian update (on the prior posterior), counter increments,
// RT/fatigue classification, remaining-item removal, global stop
// evaluation, and (if continuing) next module/item selection.
func ProcessResponse(
	cfg config.Config,
	session *state.SessionState,
	moduleID config.ModuleID,
	item state.ItemDescriptor,
	correct bool,
	rtSeconds float64,
	timestamp time.Time,
	itemPool map[int]state.ItemDescriptor,
) (ProcessResult, error) {
	if session.Stopped {
		return ProcessResult{}, errs.New(errs.InvalidInput, "process_response called on a stopped session (test_id=%d)", session.TestID)
	}
	if !cfg.HasModule(moduleID) {
		return ProcessResult{}, errs.New(errs.InvalidInput, "unknown module_id %q", moduleID)
	}
	stats, ok := session.Modules[moduleID]
	if !ok {
		return ProcessResult{}, errs.New(errs.InvalidInput, "session has no module %q configured", moduleID)
	}
	poolItem, ok := itemPool[item.ID]
	if !ok || poolItem.ModuleID != moduleID {
		return ProcessResult{}, errs.New(errs.InvalidInput, "item %d not found in item_pool for module %q", item.ID, moduleID)
	}
	if rtSeconds < 0 {
		return ProcessResult{}, errs.New(errs.InvalidInput, "rt_seconds must be non-negative, got %v", rtSeconds)
	}

	rtfatigue.UpdateSessionTime(session, timestamp)

	a := cfg.DiscriminationFor(moduleID)
	priorPosterior := stats.ThetaPosterior
	stats.ThetaPosterior = bayes.UpdatePosterior(priorPosterior, cfg.ThetaGrid, a, poolItem.Difficulty, correct)
	stats.PWeak, stats.PStrong = bayes.ProjectWeakStrong(stats.ThetaPosterior, cfg.ThetaGrid, cfg.ThetaWeakThreshold)
	stats.Entropy = bayes.Entropy(stats.PWeak, stats.PStrong)
	stats.NumItems++

	rtfatigue.UpdateModuleRTStats(stats, rtSeconds, poolItem.MaxTimeSeconds, cfg.SlowRTFactor, cfg.RapidGuessFraction, correct)

	stats.RemoveRemaining(item.ID)

	if stopping.ShouldStopGlobally(session, itemPool, cfg) {
		return stopSession(session, cfg), nil
	}

	nextModuleID, ok := ChooseNextModule(session, cfg)
	if !ok {
		return stopSession(session, cfg), nil
	}

	nextItem, ok := selection.SelectNextItem(cfg, session, nextModuleID, itemPool)
	if !ok {
		return stopSession(session, cfg), nil
	}

	return ProcessResult{ShouldStop: false, NextItem: nextItem}, nil
}

func stopSession(session *state.SessionState, cfg config.Config) ProcessResult {
	session.Stopped = true
	result := risk.ComputeGlobalRisk(session, cfg)
	return ProcessResult{ShouldStop: true, GlobalRisk: &result}
}
