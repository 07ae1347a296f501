// Package replay runs a recorded sequence of item responses through a
// fresh engine-driven session outside of any interactive loop, for
// regression testing and debugging against fixtures.
package replay

import (
	"time"

	"github.com/danielpatrickdp/dyslexia-screening/go-engine/internal/config"
	"github.com/danielpatrickdp/dyslexia-screening/go-engine/internal/engine"
	"github.com/danielpatrickdp/dyslexia-screening/go-engine/internal/risk"
	"github.com/danielpatrickdp/dyslexia-screening/go-engine/internal/state"
)

// Interaction is a single recorded turn: the item administered, its
// outcome, and when it happened.
type Interaction struct {
	ModuleID  config.ModuleID
	Item      state.ItemDescriptor
	Correct   bool
	RTSeconds float64
	Timestamp time.Time
}

// StepResult captures one interaction's outcome within a replay run.
type StepResult struct {
	ModuleID   config.ModuleID
	ItemID     int
	ShouldStop bool
	Err        error
}

// Summary is the aggregate outcome of a replay run.
type Summary struct {
	Steps     []StepResult
	StoppedAt int // index into Steps where the session stopped, or -1
	FinalRisk *risk.GlobalRiskResult
}

// Replay feeds interactions through engine.ProcessResponse on a single
// fresh session, stopping early if the engine stops the session or
// rejects an interaction. itemPool must contain every item referenced
// by interactions.
func Replay(cfg config.Config, testID int, moduleItemIDs map[config.ModuleID][]int, itemPool map[int]state.ItemDescriptor, interactions []Interaction, startedAt time.Time) (*state.SessionState, Summary) {
	session := engine.InitialiseSession(cfg, testID, moduleItemIDs, startedAt)

	summary := Summary{
		Steps:     make([]StepResult, 0, len(interactions)),
		StoppedAt: -1,
	}

	for i, inter := range interactions {
		result, err := engine.ProcessResponse(cfg, session, inter.ModuleID, inter.Item, inter.Correct, inter.RTSeconds, inter.Timestamp, itemPool)
		step := StepResult{
			ModuleID: inter.ModuleID,
			ItemID:   inter.Item.ID,
			Err:      err,
		}
		if err != nil {
			summary.Steps = append(summary.Steps, step)
			break
		}

		step.ShouldStop = result.ShouldStop
		summary.Steps = append(summary.Steps, step)

		if result.ShouldStop {
			summary.StoppedAt = i
			summary.FinalRisk = result.GlobalRisk
			break
		}
	}

	return session, summary
}
