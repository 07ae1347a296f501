// Command screen is an interactive REPL over the adaptive screening
// engine: it loads an item pool from a JSON file, starts a test, and
// drives process_response from stdin until the session stops.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/danielpatrickdp/dyslexia-screening/go-engine/internal/config"
	"github.com/danielpatrickdp/dyslexia-screening/go-engine/internal/engine"
	"github.com/danielpatrickdp/dyslexia-screening/go-engine/internal/risk"
	"github.com/danielpatrickdp/dyslexia-screening/go-engine/internal/state"
)

// poolFile is the on-disk shape of an item pool plus per-module item
// listing, the input this REPL needs to start a test.
type poolFile struct {
	ModuleItemIDs map[string][]int `json:"module_item_ids"`
	Items         []struct {
		ID             int     `json:"id"`
		ModuleID       string  `json:"module_id"`
		Difficulty     float64 `json:"difficulty"`
		MaxTimeSeconds float64 `json:"max_time_seconds"`
	} `json:"items"`
}

func main() {
	poolPath := envOr("SCREEN_POOL", "pool.json")
	testID := envInt("SCREEN_TEST_ID", 1)

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	moduleItemIDs, itemPool, err := loadPool(poolPath)
	if err != nil {
		log.Fatalf("failed to load item pool %s: %v", poolPath, err)
	}

	session, item := engine.StartNewTest(cfg, testID, moduleItemIDs, itemPool, time.Now())
	fmt.Println("Adaptive screening session ready.")
	fmt.Printf("  pool: %s | test_id: %d\n", poolPath, testID)

	if item == nil {
		fmt.Println("No selectable item at start — nothing to administer.")
		return
	}
	printNextItem(item)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}

		moduleID, itemID, correct, rt, err := parseResponseLine(line)
		if err != nil {
			fmt.Printf("could not parse response: %v\n", err)
			fmt.Println("expected: <module_id> <item_id> <true|false> <rt_seconds>")
			continue
		}

		poolItem, ok := itemPool[itemID]
		if !ok {
			fmt.Printf("item %d is not in the loaded pool\n", itemID)
			continue
		}

		result, err := engine.ProcessResponse(cfg, session, config.ModuleID(moduleID), poolItem, correct, rt, time.Now(), itemPool)
		if err != nil {
			fmt.Printf("rejected: %v\n", err)
			continue
		}

		log.Printf("processed module=%s item=%d correct=%v rt=%.2f round=%d", moduleID, itemID, correct, rt, session.RoundNumber)

		if result.ShouldStop {
			fmt.Println("Session stopped.")
			printRisk(result.GlobalRisk)
			break
		}
		printNextItem(result.NextItem)
	}
}

func printNextItem(item *state.ItemDescriptor) {
	if item == nil {
		fmt.Println("No further item to administer.")
		return
	}
	fmt.Printf("next item: module=%s id=%d difficulty=%.2f max_time=%.1fs\n", item.ModuleID, item.ID, item.Difficulty, item.MaxTimeSeconds)
}

func printRisk(result *risk.GlobalRiskResult) {
	if result == nil {
		return
	}
	body, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Printf("risk result: %+v\n", result)
		return
	}
	fmt.Println(string(body))
}

func parseResponseLine(line string) (moduleID string, itemID int, correct bool, rtSeconds float64, err error) {
	fields := strings.Fields(line)
	if len(fields) != 4 {
		return "", 0, false, 0, fmt.Errorf("expected 4 fields, got %d", len(fields))
	}
	moduleID = fields[0]
	itemID, err = strconv.Atoi(fields[1])
	if err != nil {
		return "", 0, false, 0, fmt.Errorf("item_id: %w", err)
	}
	correct, err = strconv.ParseBool(fields[2])
	if err != nil {
		return "", 0, false, 0, fmt.Errorf("correct: %w", err)
	}
	rtSeconds, err = strconv.ParseFloat(fields[3], 64)
	if err != nil {
		return "", 0, false, 0, fmt.Errorf("rt_seconds: %w", err)
	}
	return moduleID, itemID, correct, rtSeconds, nil
}

func loadPool(path string) (map[config.ModuleID][]int, map[int]state.ItemDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read pool file: %w", err)
	}
	var pf poolFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return nil, nil, fmt.Errorf("parse pool file: %w", err)
	}

	moduleItemIDs := make(map[config.ModuleID][]int, len(pf.ModuleItemIDs))
	for k, v := range pf.ModuleItemIDs {
		moduleItemIDs[config.ModuleID(k)] = v
	}

	itemPool := make(map[int]state.ItemDescriptor, len(pf.Items))
	for _, it := range pf.Items {
		itemPool[it.ID] = state.ItemDescriptor{
			ID:             it.ID,
			ModuleID:       config.ModuleID(it.ModuleID),
			Difficulty:     it.Difficulty,
			MaxTimeSeconds: it.MaxTimeSeconds,
		}
	}

	return moduleItemIDs, itemPool, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
