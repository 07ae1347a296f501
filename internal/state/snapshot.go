package state

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/danielpatrickdp/dyslexia-screening/go-engine/internal/config"
	"github.com/danielpatrickdp/dyslexia-screening/go-engine/internal/errs"
)

// timeLayout is the ISO-8601 encoding used for every timestamp field in
// a snapshot.
const timeLayout = time.RFC3339Nano

// ModuleSnapshot is the JSON-facing form of ModuleStats. Field names
// match the stable snapshot contract exactly.
type ModuleSnapshot struct {
	ThetaPosterior []float64 `json:"theta_posterior"`
	PWeak          float64   `json:"p_weak"`
	PStrong        float64   `json:"p_strong"`
	Entropy        float64   `json:"entropy"`
	NumItems       int       `json:"num_items"`
	ItemsRemaining []int     `json:"items_remaining"`
	SumRT          float64   `json:"sum_rt"`
	SlowCorrect    int       `json:"slow_correct"`
	Correct        int       `json:"correct"`
	RapidGuess     int       `json:"rapid_guess"`
	LastStartedAt  *string   `json:"last_started_at"`
}

// Snapshot is the JSON-facing form of SessionState.
type Snapshot struct {
	TestID             int                       `json:"test_id"`
	StartedAt          string                    `json:"started_at"`
	LastUpdateAt       string                    `json:"last_update_at"`
	TotalTimeSeconds   float64                   `json:"total_time_seconds"`
	RoundNumber        int                       `json:"round_number"`
	CurrentModuleIndex int                       `json:"current_module_index"`
	Stopped            bool                      `json:"stopped"`
	Modules            map[string]ModuleSnapshot `json:"modules"`
}

// ToSnapshot converts s into its JSON-serialisable form.
func (s *SessionState) ToSnapshot() Snapshot {
	modules := make(map[string]ModuleSnapshot, len(s.Modules))
	for id, stats := range s.Modules {
		var lastStarted *string
		if stats.LastStartedAt != nil {
			v := stats.LastStartedAt.Format(timeLayout)
			lastStarted = &v
		}
		modules[string(id)] = ModuleSnapshot{
			ThetaPosterior: append([]float64(nil), stats.ThetaPosterior...),
			PWeak:          stats.PWeak,
			PStrong:        stats.PStrong,
			Entropy:        stats.Entropy,
			NumItems:       stats.NumItems,
			ItemsRemaining: append([]int(nil), stats.ItemsRemaining...),
			SumRT:          stats.SumRT,
			SlowCorrect:    stats.SlowCorrect,
			Correct:        stats.Correct,
			RapidGuess:     stats.RapidGuess,
			LastStartedAt:  lastStarted,
		}
	}

	return Snapshot{
		TestID:             s.TestID,
		StartedAt:          s.StartedAt.Format(timeLayout),
		LastUpdateAt:       s.LastUpdateAt.Format(timeLayout),
		TotalTimeSeconds:   s.TotalTimeSeconds,
		RoundNumber:        s.RoundNumber,
		CurrentModuleIndex: s.CurrentModuleIndex,
		Stopped:            s.Stopped,
		Modules:            modules,
	}
}

// requiredSnapshotFields and requiredModuleFields enumerate the keys a
// well-formed snapshot must carry, used to reject a malformed snapshot
// before json.Unmarshal silently fills in zero values for anything
// absent.
var requiredSnapshotFields = []string{
	"test_id", "started_at", "last_update_at", "total_time_seconds",
	"round_number", "current_module_index", "stopped", "modules",
}

var requiredModuleFields = []string{
	"theta_posterior", "p_weak", "p_strong", "entropy", "num_items",
	"items_remaining", "sum_rt", "slow_correct", "correct", "rapid_guess",
	"last_started_at",
}

// ParseSnapshotJSON decodes raw JSON into a Snapshot, rejecting any
// missing top-level or per-module field as SnapshotMalformed rather
// than silently defaulting it.
func ParseSnapshotJSON(data []byte) (Snapshot, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Snapshot{}, errs.Wrap(errs.SnapshotMalformed, err, "decode snapshot")
	}
	for _, key := range requiredSnapshotFields {
		if _, ok := raw[key]; !ok {
			return Snapshot{}, errs.New(errs.SnapshotMalformed, "missing field %q", key)
		}
	}

	var rawModules map[string]map[string]json.RawMessage
	if err := json.Unmarshal(raw["modules"], &rawModules); err != nil {
		return Snapshot{}, errs.Wrap(errs.SnapshotMalformed, err, "decode modules")
	}
	for moduleID, fields := range rawModules {
		for _, key := range requiredModuleFields {
			if _, ok := fields[key]; !ok {
				return Snapshot{}, errs.New(errs.SnapshotMalformed, "module %q missing field %q", moduleID, key)
			}
		}
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, errs.Wrap(errs.SnapshotMalformed, err, "decode snapshot fields")
	}
	return snap, nil
}

// FromSnapshot reconstructs a SessionState from a Snapshot, validating
// timestamps and posterior shape against cfg's theta grid.
func FromSnapshot(cfg config.Config, snap Snapshot) (*SessionState, error) {
	startedAt, err := time.Parse(timeLayout, snap.StartedAt)
	if err != nil {
		return nil, errs.Wrap(errs.SnapshotMalformed, err, "parse started_at")
	}
	lastUpdateAt, err := time.Parse(timeLayout, snap.LastUpdateAt)
	if err != nil {
		return nil, errs.Wrap(errs.SnapshotMalformed, err, "parse last_update_at")
	}

	modules := make(map[config.ModuleID]*ModuleStats, len(snap.Modules))
	for idStr, ms := range snap.Modules {
		if len(ms.ThetaPosterior) != len(cfg.ThetaGrid) {
			return nil, errs.New(errs.SnapshotMalformed,
				"module %q theta_posterior has %d points, expected %d", idStr, len(ms.ThetaPosterior), len(cfg.ThetaGrid))
		}

		var lastStarted *time.Time
		if ms.LastStartedAt != nil {
			t, err := time.Parse(timeLayout, *ms.LastStartedAt)
			if err != nil {
				return nil, errs.Wrap(errs.SnapshotMalformed, err, "module %q parse last_started_at", idStr)
			}
			lastStarted = &t
		}

		modules[config.ModuleID(idStr)] = &ModuleStats{
			ThetaPosterior: append([]float64(nil), ms.ThetaPosterior...),
			PWeak:          ms.PWeak,
			PStrong:        ms.PStrong,
			Entropy:        ms.Entropy,
			NumItems:       ms.NumItems,
			ItemsRemaining: append([]int(nil), ms.ItemsRemaining...),
			SumRT:          ms.SumRT,
			SlowCorrect:    ms.SlowCorrect,
			Correct:        ms.Correct,
			RapidGuess:     ms.RapidGuess,
			LastStartedAt:  lastStarted,
		}
	}

	return &SessionState{
		TestID:             snap.TestID,
		StartedAt:          startedAt,
		LastUpdateAt:       lastUpdateAt,
		TotalTimeSeconds:   snap.TotalTimeSeconds,
		RoundNumber:        snap.RoundNumber,
		CurrentModuleIndex: snap.CurrentModuleIndex,
		Stopped:            snap.Stopped,
		Modules:            modules,
	}, nil
}

// MarshalJSON is a convenience so callers can go straight from
// SessionState to bytes without naming the intermediate Snapshot type.
func (s *SessionState) MarshalJSON() ([]byte, error) {
	b, err := json.Marshal(s.ToSnapshot())
	if err != nil {
		return nil, fmt.Errorf("marshal session snapshot: %w", err)
	}
	return b, nil
}
