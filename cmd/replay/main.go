// Command replay runs a recorded sequence of item responses from a
// fixture file through the engine outside of any interactive loop, or
// prints an archived session's provenance log as recorded (DB mode
// does not re-run the engine).
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/dyslexia-screening/go-engine/internal/archive"
	"github.com/danielpatrickdp/dyslexia-screening/go-engine/internal/config"
	"github.com/danielpatrickdp/dyslexia-screening/go-engine/internal/replay"
)

func main() {
	dbPath := flag.String("db", "", "path to archive db (DB mode)")
	testID := flag.Int("test-id", 0, "test_id to replay (DB mode)")
	fixturePath := flag.String("fixture", "", "path to fixture JSON (fixture mode)")
	flag.Parse()

	if (*dbPath == "" && *fixturePath == "") || (*dbPath != "" && *fixturePath != "") {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json")
		fmt.Fprintln(os.Stderr, "       replay --db path/to/archive.db --test-id N")
		os.Exit(2)
	}

	var exitCode int
	if *fixturePath != "" {
		exitCode = runFixtureMode(*fixturePath)
	} else {
		exitCode = runDBMode(*dbPath, *testID)
	}
	os.Exit(exitCode)
}

func runFixtureMode(path string) int {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}

	pool := f.ItemPoolMap()
	interactions, err := f.ToInteractions(pool)
	if err != nil {
		fmt.Fprintf(os.Stderr, "convert interactions: %v\n", err)
		return 2
	}
	startedAt, err := f.StartedAtTime()
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse started_at: %v\n", err)
		return 2
	}

	cfg := config.Default()
	_, summary := replay.Replay(cfg, f.TestID, f.ModuleItemIDsByModule(), pool, interactions, startedAt)
	return printSummary(summary)
}

func runDBMode(dbPath string, testID int) int {
	store, err := archive.NewStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open archive: %v\n", err)
		return 2
	}
	defer store.Close()

	decisions, err := store.ListDecisions(testID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list decisions: %v\n", err)
		return 2
	}
	if len(decisions) == 0 {
		fmt.Fprintf(os.Stderr, "no provenance entries found for test_id=%d\n", testID)
		return 2
	}

	fmt.Printf("%-20s| %-8s| %-9s| %s\n", "module", "item_id", "stopped", "reason")
	for _, d := range decisions {
		fmt.Printf("%-20s| %-8d| %-9v| %s\n", d.ModuleID, d.ItemID, d.ShouldStop, d.Reason)
	}
	return 0
}

func printSummary(summary replay.Summary) int {
	fmt.Printf("%-6s| %-20s| %-8s| %s\n", "step", "module", "item_id", "status")
	for i, s := range summary.Steps {
		status := "continue"
		if s.Err != nil {
			status = fmt.Sprintf("error: %v", s.Err)
		} else if s.ShouldStop {
			status = "stopped"
		}
		fmt.Printf("%-6d| %-20s| %-8d| %s\n", i, s.ModuleID, s.ItemID, status)
	}

	if summary.StoppedAt >= 0 && summary.FinalRisk != nil {
		fmt.Printf("\nFinal risk: category=%s score=%.3f confidence=%.3f\n",
			summary.FinalRisk.RiskCategory, summary.FinalRisk.RiskScore, summary.FinalRisk.Confidence)
	}

	for _, s := range summary.Steps {
		if s.Err != nil {
			return 1
		}
	}
	return 0
}
