// Command inspect prints archived session snapshots and their derived
// risk, either as a table of recent snapshots or a single snapshot's
// full detail.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/dyslexia-screening/go-engine/internal/archive"
	"github.com/danielpatrickdp/dyslexia-screening/go-engine/internal/config"
	"github.com/danielpatrickdp/dyslexia-screening/go-engine/internal/risk"
	"github.com/danielpatrickdp/dyslexia-screening/go-engine/internal/state"
	_ "modernc.org/sqlite"
)

func main() {
	dbPath := flag.String("db", "", "path to archive db")
	testID := flag.Int("test-id", 0, "test_id to inspect")
	last := flag.Int("last", 20, "show N most recent snapshots")
	versionID := flag.String("version", "", "show single snapshot detail by archive row id")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/archive.db --test-id N [--last N] [--version id] [--json]")
		os.Exit(2)
	}

	store, err := archive.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	cfg := config.Default()

	if *versionID != "" {
		if err := runDetailMode(store, cfg, *versionID, *jsonOut); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}
	if *testID == 0 {
		fmt.Fprintln(os.Stderr, "--test-id is required unless --version is given")
		os.Exit(2)
	}
	if err := runListMode(store, cfg, *testID, *last, *jsonOut); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type listRow struct {
	ArchiveRowID string  `json:"archive_row_id"`
	CreatedAt    string  `json:"created_at"`
	RoundNumber  int     `json:"round_number"`
	Stopped      bool    `json:"stopped"`
	RiskCategory string  `json:"risk_category,omitempty"`
	RiskScore    float64 `json:"risk_score,omitempty"`
}

func runListMode(store *archive.Store, cfg config.Config, testID, last int, jsonOut bool) error {
	rows, err := store.ListSnapshots(testID, last)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(os.Stderr, "no snapshots found")
		return nil
	}

	out := make([]listRow, len(rows))
	for i, r := range rows {
		lr := listRow{
			ArchiveRowID: r.ArchiveRowID,
			CreatedAt:    r.CreatedAt.Format("2006-01-02T15:04:05Z"),
			RoundNumber:  r.Snapshot.RoundNumber,
			Stopped:      r.Snapshot.Stopped,
		}
		if session, err := state.FromSnapshot(cfg, r.Snapshot); err == nil {
			result := risk.ComputeGlobalRisk(session, cfg)
			lr.RiskCategory = string(result.RiskCategory)
			lr.RiskScore = result.RiskScore
		}
		out[i] = lr
	}

	if jsonOut {
		return printJSON(out)
	}
	return printListTable(out)
}

func printListTable(rows []listRow) error {
	fmt.Printf("%-10s  %5s  %-8s  %-10s  %6s  %s\n", "Row", "Round", "Stopped", "Category", "Score", "Time")
	fmt.Printf("%-10s  %5s  %-8s  %-10s  %6s  %s\n", "----------", "-----", "--------", "----------", "------", "--------------------")
	for _, r := range rows {
		fmt.Printf("%-10s  %5d  %-8v  %-10s  %6.2f  %s\n",
			shortID(r.ArchiveRowID), r.RoundNumber, r.Stopped, r.RiskCategory, r.RiskScore, r.CreatedAt)
	}
	return nil
}

type detailOutput struct {
	ArchiveRowID string              `json:"archive_row_id"`
	TestID       int                 `json:"test_id"`
	CreatedAt    string              `json:"created_at"`
	Snapshot     state.Snapshot      `json:"snapshot"`
	Risk         *risk.GlobalRiskResult `json:"risk,omitempty"`
}

func runDetailMode(store *archive.Store, cfg config.Config, archiveRowID string, jsonOut bool) error {
	row, err := store.GetSnapshot(archiveRowID)
	if err != nil {
		return err
	}

	out := detailOutput{
		ArchiveRowID: row.ArchiveRowID,
		TestID:       row.TestID,
		CreatedAt:    row.CreatedAt.Format("2006-01-02T15:04:05Z"),
		Snapshot:     row.Snapshot,
	}
	if session, err := state.FromSnapshot(cfg, row.Snapshot); err == nil {
		result := risk.ComputeGlobalRisk(session, cfg)
		out.Risk = &result
	}

	if jsonOut {
		return printJSON(out)
	}

	fmt.Printf("Archive row: %s\n", out.ArchiveRowID)
	fmt.Printf("Test:        %d\n", out.TestID)
	fmt.Printf("Created:     %s\n", out.CreatedAt)
	fmt.Printf("Round:       %d\n", out.Snapshot.RoundNumber)
	fmt.Printf("Stopped:     %v\n", out.Snapshot.Stopped)
	if out.Risk != nil {
		fmt.Printf("\nRisk:\n")
		fmt.Printf("  Category:   %s\n", out.Risk.RiskCategory)
		fmt.Printf("  Score:      %.4f\n", out.Risk.RiskScore)
		fmt.Printf("  Confidence: %.4f\n", out.Risk.Confidence)
	}
	return nil
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
