package state

import (
	"testing"
	"time"

	"github.com/danielpatrickdp/dyslexia-screening/go-engine/internal/config"
)

func testConfig() config.Config {
	return config.Default()
}

func TestNewSessionUniformPosteriorAndRemaining(t *testing.T) {
	cfg := testConfig()
	started := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	items := map[config.ModuleID][]int{
		config.ModulePhonemicAwareness: {1, 2, 3},
		config.ModuleRAN:               {4, 5},
	}
	s := NewSession(cfg, 1, items, started)

	if len(s.Modules) != len(cfg.ModuleOrder) {
		t.Fatalf("expected %d modules, got %d", len(cfg.ModuleOrder), len(s.Modules))
	}

	pa := s.Modules[config.ModulePhonemicAwareness]
	want := 1.0 / float64(len(cfg.ThetaGrid))
	for i, p := range pa.ThetaPosterior {
		if p != want {
			t.Fatalf("posterior[%d] = %v, want %v", i, p, want)
		}
	}
	if len(pa.ItemsRemaining) != 3 {
		t.Fatalf("expected 3 remaining items, got %d", len(pa.ItemsRemaining))
	}

	objRec := s.Modules[config.ModuleObjectRecognition]
	if len(objRec.ItemsRemaining) != 0 {
		t.Fatalf("expected empty remaining for unlisted module, got %v", objRec.ItemsRemaining)
	}

	if s.RoundNumber != 1 {
		t.Fatalf("expected initial round_number 1, got %d", s.RoundNumber)
	}
	if s.Stopped {
		t.Fatal("new session must not start stopped")
	}
}

func TestRemoveRemaining(t *testing.T) {
	m := &ModuleStats{ItemsRemaining: []int{10, 20, 30}}
	if !m.ContainsRemaining(20) {
		t.Fatal("expected 20 to be present")
	}
	if !m.RemoveRemaining(20) {
		t.Fatal("expected removal to report found")
	}
	if m.ContainsRemaining(20) {
		t.Fatal("20 should no longer be remaining")
	}
	if len(m.ItemsRemaining) != 2 {
		t.Fatalf("expected 2 remaining, got %d", len(m.ItemsRemaining))
	}
	if m.RemoveRemaining(999) {
		t.Fatal("removing an absent id should report false")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	cfg := testConfig()
	started := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	items := map[config.ModuleID][]int{
		config.ModulePhonemicAwareness: {1, 2},
		config.ModuleRAN:               {3},
	}
	s := NewSession(cfg, 42, items, started)
	s.Modules[config.ModuleRAN].NumItems = 2
	s.Modules[config.ModuleRAN].Correct = 1
	s.Modules[config.ModuleRAN].SumRT = 12.5
	lastStarted := started.Add(5 * time.Second)
	s.Modules[config.ModuleRAN].LastStartedAt = &lastStarted
	s.TotalTimeSeconds = 30
	s.LastUpdateAt = started.Add(30 * time.Second)
	s.CurrentModuleIndex = 1
	s.RoundNumber = 2

	snap := s.ToSnapshot()
	rebuilt, err := FromSnapshot(cfg, snap)
	if err != nil {
		t.Fatalf("FromSnapshot: %v", err)
	}

	if rebuilt.TestID != s.TestID {
		t.Fatalf("test_id mismatch: got %d want %d", rebuilt.TestID, s.TestID)
	}
	if !rebuilt.StartedAt.Equal(s.StartedAt) {
		t.Fatalf("started_at mismatch: got %v want %v", rebuilt.StartedAt, s.StartedAt)
	}
	if rebuilt.RoundNumber != 2 || rebuilt.CurrentModuleIndex != 1 {
		t.Fatalf("flow-control fields did not round-trip: %+v", rebuilt)
	}

	ran := rebuilt.Modules[config.ModuleRAN]
	if ran.NumItems != 2 || ran.Correct != 1 || ran.SumRT != 12.5 {
		t.Fatalf("ran stats did not round-trip: %+v", ran)
	}
	if ran.LastStartedAt == nil || !ran.LastStartedAt.Equal(lastStarted) {
		t.Fatalf("last_started_at did not round-trip: %+v", ran.LastStartedAt)
	}
	if len(ran.ItemsRemaining) != 1 || ran.ItemsRemaining[0] != 3 {
		t.Fatalf("items_remaining did not round-trip: %v", ran.ItemsRemaining)
	}
}

func TestParseSnapshotJSONMissingTopLevelField(t *testing.T) {
	raw := `{"test_id":1,"started_at":"2026-01-01T00:00:00Z","last_update_at":"2026-01-01T00:00:00Z","total_time_seconds":0,"round_number":1,"current_module_index":0,"modules":{}}`
	_, err := ParseSnapshotJSON([]byte(raw))
	if err == nil {
		t.Fatal("expected error for missing 'stopped' field")
	}
}

func TestParseSnapshotJSONMissingModuleField(t *testing.T) {
	raw := `{
		"test_id":1,"started_at":"2026-01-01T00:00:00Z","last_update_at":"2026-01-01T00:00:00Z",
		"total_time_seconds":0,"round_number":1,"current_module_index":0,"stopped":false,
		"modules":{"ran":{"theta_posterior":[0.2,0.2,0.2,0.2,0.2],"p_weak":0.5,"p_strong":0.5,"entropy":1.0,"num_items":0,"items_remaining":[],"sum_rt":0,"slow_correct":0,"correct":0}}
	}`
	_, err := ParseSnapshotJSON([]byte(raw))
	if err == nil {
		t.Fatal("expected error for module missing 'rapid_guess'/'last_started_at'")
	}
}

func TestFromSnapshotGridMismatch(t *testing.T) {
	cfg := testConfig()
	s := NewSession(cfg, 1, nil, time.Now())
	snap := s.ToSnapshot()
	ran := snap.Modules[string(config.ModuleRAN)]
	ran.ThetaPosterior = ran.ThetaPosterior[:len(ran.ThetaPosterior)-1]
	snap.Modules[string(config.ModuleRAN)] = ran

	_, err := FromSnapshot(cfg, snap)
	if err == nil {
		t.Fatal("expected error for theta_posterior length mismatch")
	}
}

func TestFromSnapshotBadTimestamp(t *testing.T) {
	cfg := testConfig()
	s := NewSession(cfg, 1, nil, time.Now())
	snap := s.ToSnapshot()
	snap.StartedAt = "not-a-timestamp"

	_, err := FromSnapshot(cfg, snap)
	if err == nil {
		t.Fatal("expected error for malformed started_at")
	}
}
