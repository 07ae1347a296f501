// Command fixture-export exports an archived session's recorded
// response history as a replay fixture JSON file.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/danielpatrickdp/dyslexia-screening/go-engine/internal/archive"
	"github.com/danielpatrickdp/dyslexia-screening/go-engine/internal/replay"
	_ "modernc.org/sqlite"
)

func main() {
	dbPath := flag.String("db", "", "path to archive db")
	testID := flag.Int("test-id", 0, "test_id to export")
	outPath := flag.String("out", "", "output fixture JSON path")
	flag.Parse()

	if *dbPath == "" || *testID == 0 || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --db path/to/archive.db --test-id N --out path/to/fixture.json")
		os.Exit(2)
	}

	if err := run(*dbPath, *testID, *outPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(dbPath string, testID int, outPath string) error {
	store, err := archive.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer store.Close()

	decisions, err := store.ListDecisions(testID)
	if err != nil {
		return fmt.Errorf("list decisions: %w", err)
	}
	if len(decisions) == 0 {
		return fmt.Errorf("no provenance entries found for test_id=%d", testID)
	}

	fixture := buildFixture(testID, decisions)

	data, err := json.MarshalIndent(fixture, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}

	fmt.Printf("Wrote fixture to %s (%d bytes, %d interactions)\n", outPath, len(data), len(fixture.Interactions))
	return nil
}

// buildFixture reconstructs a fixture's item pool from the distinct
// (module_id, item_id) pairs seen in the provenance log. Difficulty
// and max_time_seconds are not recorded in provenance, so they are
// left at zero; callers needing exact item parameters should patch
// the exported file against the original item bank before replaying.
func buildFixture(testID int, decisions []archive.DecisionEntry) replay.Fixture {
	moduleItemIDs := make(map[string][]int)
	seen := make(map[int]bool)
	var pool []replay.FixtureItem
	interactions := make([]replay.FixtureInteraction, len(decisions))

	for i, d := range decisions {
		if !seen[d.ItemID] {
			seen[d.ItemID] = true
			moduleItemIDs[d.ModuleID] = append(moduleItemIDs[d.ModuleID], d.ItemID)
			pool = append(pool, replay.FixtureItem{
				ID:       d.ItemID,
				ModuleID: d.ModuleID,
			})
		}
		interactions[i] = replay.FixtureInteraction{
			ModuleID:  d.ModuleID,
			ItemID:    d.ItemID,
			Correct:   d.Correct,
			RTSeconds: d.RTSeconds,
			Timestamp: d.CreatedAt.Format(time.RFC3339Nano),
		}
	}

	startedAt := decisions[0].CreatedAt
	return replay.Fixture{
		Description:   fmt.Sprintf("Archived session export: test_id=%d, %d recorded responses", testID, len(decisions)),
		TestID:        testID,
		StartedAt:     startedAt.Format(time.RFC3339Nano),
		ModuleItemIDs: moduleItemIDs,
		ItemPool:      pool,
		Interactions:  interactions,
	}
}
