package risk

import (
	"testing"
	"time"

	"github.com/danielpatrickdp/dyslexia-screening/go-engine/internal/config"
	"github.com/danielpatrickdp/dyslexia-screening/go-engine/internal/state"
)

func approxEqual(a, b, tol float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tol
}

func strongStats() *state.ModuleStats {
	return &state.ModuleStats{
		ThetaPosterior: []float64{0.02, 0.02, 0.02, 0.02, 0.92},
		PWeak:          0.08,
		PStrong:        0.92,
		Entropy:        0.2,
		NumItems:       6,
		Correct:        6,
	}
}

func weakStats() *state.ModuleStats {
	return &state.ModuleStats{
		ThetaPosterior: []float64{0.92, 0.02, 0.02, 0.02, 0.02},
		PWeak:          0.9,
		PStrong:        0.1,
		Entropy:        0.2,
		NumItems:       6,
		Correct:        3,
	}
}

func TestClassifyModuleLabelsWeakStrongUncertain(t *testing.T) {
	cfg := config.Default()

	weak := ClassifyModule(config.ModulePhonemicAwareness, weakStats(), cfg)
	if weak.Label != LabelWeak {
		t.Fatalf("expected weak, got %v", weak.Label)
	}

	strong := ClassifyModule(config.ModuleRAN, strongStats(), cfg)
	if strong.Label != LabelStrong {
		t.Fatalf("expected strong, got %v", strong.Label)
	}

	uncertainStats := &state.ModuleStats{
		PWeak:    0.5,
		PStrong:  0.5,
		Entropy:  1.0,
		NumItems: 4,
	}
	uncertain := ClassifyModule(config.ModuleObjectRecognition, uncertainStats, cfg)
	if uncertain.Label != LabelUncertain {
		t.Fatalf("expected uncertain, got %v", uncertain.Label)
	}
}

func TestClassifyModuleZeroItemsAvoidsDivideByZero(t *testing.T) {
	cfg := config.Default()
	stats := &state.ModuleStats{PWeak: 0.5, PStrong: 0.5, Entropy: 1.0}
	mc := ClassifyModule(config.ModuleRAN, stats, cfg)
	if mc.AvgRT != 0 || mc.SlowCorrectRatio != 0 || mc.RapidGuessRatio != 0 {
		t.Fatalf("expected all-zero ratios for zero-item module, got %+v", mc)
	}
}

// Sc7: RT adjustment applies when RAN is not labeled weak but more than
// half its correct responses were slow.
func TestComputeGlobalRiskAppliesRTAdjustment(t *testing.T) {
	cfg := config.Default()
	session := state.NewSession(cfg, 1, nil, time.Now())

	ran := strongStats()
	ran.SumRT = 0
	ran.SlowCorrect = 4 // 4/6 correct were slow => ratio 0.666 > 0.5
	session.Modules[config.ModuleRAN] = ran
	session.Modules[config.ModulePhonemicAwareness] = strongStats()
	session.Modules[config.ModuleObjectRecognition] = strongStats()

	withAdj := ComputeGlobalRisk(session, cfg)

	session2 := state.NewSession(cfg, 1, nil, time.Now())
	ranNoSlow := strongStats()
	session2.Modules[config.ModuleRAN] = ranNoSlow
	session2.Modules[config.ModulePhonemicAwareness] = strongStats()
	session2.Modules[config.ModuleObjectRecognition] = strongStats()
	withoutAdj := ComputeGlobalRisk(session2, cfg)

	if !approxEqual(withAdj.RiskScore-withoutAdj.RiskScore, 0.05, 1e-9) {
		t.Fatalf("expected RT adjustment of 0.05, got delta %v", withAdj.RiskScore-withoutAdj.RiskScore)
	}
}

func TestComputeGlobalRiskNoRTAdjustmentWhenRANWeak(t *testing.T) {
	cfg := config.Default()
	session := state.NewSession(cfg, 1, nil, time.Now())

	ran := weakStats()
	ran.SlowCorrect = 3 // all correct were slow, ratio 1.0 > 0.5, but label is weak
	session.Modules[config.ModuleRAN] = ran
	session.Modules[config.ModulePhonemicAwareness] = strongStats()
	session.Modules[config.ModuleObjectRecognition] = strongStats()

	result := ComputeGlobalRisk(session, cfg)

	expectedBase := cfg.WeightFor(config.ModulePhonemicAwareness)*strongStats().PWeak +
		cfg.WeightFor(config.ModuleRAN)*ran.PWeak +
		cfg.WeightFor(config.ModuleObjectRecognition)*strongStats().PWeak

	if !approxEqual(result.RiskScore, clamp01(expectedBase), 1e-9) {
		t.Fatalf("expected no RT adjustment when ran is weak, got score %v want %v", result.RiskScore, expectedBase)
	}
}

func TestComputeGlobalRiskCategoryThresholds(t *testing.T) {
	cfg := config.Default()

	highSession := state.NewSession(cfg, 1, nil, time.Now())
	for _, m := range []config.ModuleID{config.ModulePhonemicAwareness, config.ModuleRAN, config.ModuleObjectRecognition} {
		highSession.Modules[m] = weakStats()
	}
	high := ComputeGlobalRisk(highSession, cfg)
	if high.RiskCategory != CategoryHigh {
		t.Fatalf("expected high category, got %v (score %v)", high.RiskCategory, high.RiskScore)
	}

	lowSession := state.NewSession(cfg, 1, nil, time.Now())
	for _, m := range []config.ModuleID{config.ModulePhonemicAwareness, config.ModuleRAN, config.ModuleObjectRecognition} {
		lowSession.Modules[m] = strongStats()
	}
	low := ComputeGlobalRisk(lowSession, cfg)
	if low.RiskCategory != CategoryLow {
		t.Fatalf("expected low category, got %v (score %v)", low.RiskCategory, low.RiskScore)
	}
}

// EmptyState: a session with zero administered items anywhere still
// produces a valid, well-formed result rather than an error.
func TestComputeGlobalRiskEmptyStateIsValidLowConfidence(t *testing.T) {
	cfg := config.Default()
	session := state.NewSession(cfg, 1, nil, time.Now())

	result := ComputeGlobalRisk(session, cfg)

	if len(result.Modules) != len(cfg.ModuleOrder) {
		t.Fatalf("expected one classification per configured module, got %d", len(result.Modules))
	}
	for _, mc := range result.Modules {
		if mc.Label != LabelUncertain {
			t.Fatalf("expected uncertain label on fresh module, got %v", mc.Label)
		}
		if mc.AvgRT != 0 || mc.SlowCorrectRatio != 0 || mc.RapidGuessRatio != 0 {
			t.Fatalf("expected zero ratios on fresh module, got %+v", mc)
		}
	}
	if result.Confidence < 0 || result.Confidence > 1 {
		t.Fatalf("confidence out of bounds: %v", result.Confidence)
	}
	if result.RiskScore < 0 || result.RiskScore > 1 {
		t.Fatalf("risk score out of bounds: %v", result.RiskScore)
	}
}

func TestBuildExplanationIncludesRatioNotes(t *testing.T) {
	cfg := config.Default()
	session := state.NewSession(cfg, 1, nil, time.Now())

	ran := strongStats()
	ran.SlowCorrect = 4
	ran.RapidGuess = 3
	ran.NumItems = 6
	session.Modules[config.ModuleRAN] = ran
	session.Modules[config.ModulePhonemicAwareness] = strongStats()
	session.Modules[config.ModuleObjectRecognition] = strongStats()

	result := ComputeGlobalRisk(session, cfg)
	notes := result.Explanation.Modules[config.ModuleRAN].Notes
	if len(notes) != 3 {
		t.Fatalf("expected label note + slow-correct note + rapid-guess note, got %v", notes)
	}
}
