package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/danielpatrickdp/dyslexia-screening/go-engine/internal/config"
	"github.com/danielpatrickdp/dyslexia-screening/go-engine/internal/state"
)

// Fixture is the top-level JSON structure for a recorded replay run.
type Fixture struct {
	Description   string               `json:"description"`
	TestID        int                  `json:"test_id"`
	StartedAt     string               `json:"started_at"`
	ModuleItemIDs map[string][]int     `json:"module_item_ids"`
	ItemPool      []FixtureItem        `json:"item_pool"`
	Interactions  []FixtureInteraction `json:"interactions"`
}

// FixtureItem mirrors state.ItemDescriptor with JSON tags.
type FixtureItem struct {
	ID             int     `json:"id"`
	ModuleID       string  `json:"module_id"`
	Difficulty     float64 `json:"difficulty"`
	MaxTimeSeconds float64 `json:"max_time_seconds"`
}

// FixtureInteraction mirrors Interaction with JSON tags.
type FixtureInteraction struct {
	ModuleID  string  `json:"module_id"`
	ItemID    int     `json:"item_id"`
	Correct   bool    `json:"correct"`
	RTSeconds float64 `json:"rt_seconds"`
	Timestamp string  `json:"timestamp"`
}

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// ModuleItemIDsByModule converts the fixture's string-keyed module item
// map into config.ModuleID-keyed form.
func (f *Fixture) ModuleItemIDsByModule() map[config.ModuleID][]int {
	out := make(map[config.ModuleID][]int, len(f.ModuleItemIDs))
	for k, v := range f.ModuleItemIDs {
		out[config.ModuleID(k)] = v
	}
	return out
}

// ItemPoolMap converts the fixture's item list into the map form the
// engine expects.
func (f *Fixture) ItemPoolMap() map[int]state.ItemDescriptor {
	out := make(map[int]state.ItemDescriptor, len(f.ItemPool))
	for _, it := range f.ItemPool {
		out[it.ID] = state.ItemDescriptor{
			ID:             it.ID,
			ModuleID:       config.ModuleID(it.ModuleID),
			Difficulty:     it.Difficulty,
			MaxTimeSeconds: it.MaxTimeSeconds,
		}
	}
	return out
}

// ToInteractions converts the fixture's interactions into domain
// Interaction values, resolving each item_id against pool.
func (f *Fixture) ToInteractions(pool map[int]state.ItemDescriptor) ([]Interaction, error) {
	out := make([]Interaction, 0, len(f.Interactions))
	for _, fi := range f.Interactions {
		item, ok := pool[fi.ItemID]
		if !ok {
			return nil, fmt.Errorf("fixture interaction references unknown item_id %d", fi.ItemID)
		}
		ts, err := time.Parse(time.RFC3339Nano, fi.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("fixture interaction item_id %d: parse timestamp: %w", fi.ItemID, err)
		}
		out = append(out, Interaction{
			ModuleID:  config.ModuleID(fi.ModuleID),
			Item:      item,
			Correct:   fi.Correct,
			RTSeconds: fi.RTSeconds,
			Timestamp: ts,
		})
	}
	return out, nil
}

// StartedAtTime parses the fixture's started_at timestamp.
func (f *Fixture) StartedAtTime() (time.Time, error) {
	return time.Parse(time.RFC3339Nano, f.StartedAt)
}
