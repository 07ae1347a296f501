// Package risk aggregates per-module classifications into a global
// risk score, category, confidence, and structured explanation.
package risk

import (
	"fmt"

	"github.com/danielpatrickdp/dyslexia-screening/go-engine/internal/config"
	"github.com/danielpatrickdp/dyslexia-screening/go-engine/internal/state"
)

// Label is the closed set of per-module classification outcomes.
type Label string

const (
	LabelWeak      Label = "weak"
	LabelStrong    Label = "strong"
	LabelUncertain Label = "uncertain"
)

// Category is the closed set of global risk categories.
type Category string

const (
	CategoryHigh     Category = "high"
	CategoryModerate Category = "moderate"
	CategoryLow      Category = "low"
)

// ModuleClassification is the per-module risk summary.
type ModuleClassification struct {
	ModuleID         config.ModuleID
	Label            Label
	PWeak            float64
	PStrong          float64
	Entropy          float64
	NumItems         int
	AvgRT            float64
	SlowCorrectRatio float64
	RapidGuessRatio  float64
}

// ModuleExplanation is the per-module block of the structured
// explanation object.
type ModuleExplanation struct {
	Label            Label    `json:"label"`
	PWeak            float64  `json:"p_weak"`
	PStrong          float64  `json:"p_strong"`
	Entropy          float64  `json:"entropy"`
	NumItems         int      `json:"num_items"`
	AvgRT            float64  `json:"avg_rt"`
	SlowCorrectRatio float64  `json:"slow_correct_ratio"`
	RapidGuessRatio  float64  `json:"rapid_guess_ratio"`
	Notes            []string `json:"notes"`
}

// GlobalExplanation is the global summary block of the explanation.
type GlobalExplanation struct {
	RiskCategory Category `json:"risk_category"`
	RiskScore    float64  `json:"risk_score"`
	Confidence   float64  `json:"confidence"`
}

// Explanation is the full structured (non-free-text) explanation
// object.
type Explanation struct {
	Global  GlobalExplanation                     `json:"global"`
	Modules map[config.ModuleID]ModuleExplanation `json:"modules"`
}

// GlobalRiskResult is the final output of one session's risk
// aggregation.
type GlobalRiskResult struct {
	RiskCategory Category
	RiskScore    float64
	Confidence   float64
	Modules      map[config.ModuleID]ModuleClassification
	Explanation  Explanation
}

// ClassifyModule labels a single module weak/strong/uncertain and
// derives its RT ratios. Valid on a zero-item module: avg_rt,
// slow_correct_ratio, and rapid_guess_ratio all default to 0 rather
// than dividing by zero.
func ClassifyModule(moduleID config.ModuleID, stats *state.ModuleStats, cfg config.Config) ModuleClassification {
	label := LabelUncertain
	if stats.Entropy <= cfg.EntropyThreshold && max(stats.PWeak, stats.PStrong) >= cfg.PConfident {
		if stats.PWeak > stats.PStrong {
			label = LabelWeak
		} else {
			label = LabelStrong
		}
	}

	avgRT := 0.0
	if stats.NumItems > 0 {
		avgRT = stats.SumRT / float64(stats.NumItems)
	}
	slowCorrectRatio := 0.0
	if stats.Correct > 0 {
		slowCorrectRatio = float64(stats.SlowCorrect) / float64(stats.Correct)
	}
	rapidGuessRatio := 0.0
	if stats.NumItems > 0 {
		rapidGuessRatio = float64(stats.RapidGuess) / float64(stats.NumItems)
	}

	return ModuleClassification{
		ModuleID:         moduleID,
		Label:            label,
		PWeak:            stats.PWeak,
		PStrong:          stats.PStrong,
		Entropy:          stats.Entropy,
		NumItems:         stats.NumItems,
		AvgRT:            avgRT,
		SlowCorrectRatio: slowCorrectRatio,
		RapidGuessRatio:  rapidGuessRatio,
	}
}

// ComputeGlobalRisk aggregates every module's classification into a
// weighted risk score with a single RT-based adjustment, a category,
// a confidence figure, and the explanation object. Valid on a session
// with zero administered items anywhere: every module classifies as
// uncertain with zero ratios, yielding a low-confidence but well-formed
// result rather than an error.
//
// Per design decision OQ4, the commented-out "high-risk profile"
// override (RAN weak AND (PA weak OR RAN very slow) forcing an
// immediate high category) is deliberately NOT implemented here.
func ComputeGlobalRisk(session *state.SessionState, cfg config.Config) GlobalRiskResult {
	classifications := make(map[config.ModuleID]ModuleClassification, len(session.Modules))
	for moduleID, stats := range session.Modules {
		classifications[moduleID] = ClassifyModule(moduleID, stats, cfg)
	}

	baseScore := 0.0
	for moduleID, mc := range classifications {
		baseScore += cfg.WeightFor(moduleID) * mc.PWeak
	}

	rtAdjustment := 0.0
	if ran, ok := classifications[config.ModuleRAN]; ok {
		if ran.SlowCorrectRatio > 0.5 && ran.Label != LabelWeak {
			rtAdjustment += 0.05
		}
	}

	riskScore := clamp01(baseScore + rtAdjustment)

	category := CategoryLow
	switch {
	case riskScore >= cfg.RiskScoreHigh:
		category = CategoryHigh
	case riskScore >= cfg.RiskScoreModerate:
		category = CategoryModerate
	}

	avgEntropy := 0.0
	if len(session.Modules) > 0 {
		sum := 0.0
		for _, mc := range classifications {
			sum += mc.Entropy
		}
		avgEntropy = sum / float64(len(session.Modules))
	}
	confidence := clamp01(1.0 - avgEntropy)

	explanation := buildExplanation(category, riskScore, confidence, classifications)

	return GlobalRiskResult{
		RiskCategory: category,
		RiskScore:    riskScore,
		Confidence:   confidence,
		Modules:      classifications,
		Explanation:  explanation,
	}
}

func buildExplanation(category Category, riskScore, confidence float64, classifications map[config.ModuleID]ModuleClassification) Explanation {
	modules := make(map[config.ModuleID]ModuleExplanation, len(classifications))

	for moduleID, mc := range classifications {
		label := config.LabelFor(moduleID)

		var notes []string
		switch mc.Label {
		case LabelWeak:
			notes = append(notes, fmt.Sprintf("Performance in %s suggests a likely weakness (P(weak)=%.2f).", label, mc.PWeak))
		case LabelStrong:
			notes = append(notes, fmt.Sprintf("Performance in %s appears strong (P(strong)=%.2f).", label, mc.PStrong))
		default:
			notes = append(notes, fmt.Sprintf("Results in %s are still uncertain; more data would improve confidence.", label))
		}

		if mc.SlowCorrectRatio > 0.5 {
			notes = append(notes, "Many correct responses were slower than expected, indicating potential speed or fatigue issues.")
		}
		if mc.RapidGuessRatio > 0.2 {
			notes = append(notes, "Frequent very fast incorrect responses may indicate guessing or low engagement.")
		}

		modules[moduleID] = ModuleExplanation{
			Label:            mc.Label,
			PWeak:            mc.PWeak,
			PStrong:          mc.PStrong,
			Entropy:          mc.Entropy,
			NumItems:         mc.NumItems,
			AvgRT:            mc.AvgRT,
			SlowCorrectRatio: mc.SlowCorrectRatio,
			RapidGuessRatio:  mc.RapidGuessRatio,
			Notes:            notes,
		}
	}

	return Explanation{
		Global: GlobalExplanation{
			RiskCategory: category,
			RiskScore:    riskScore,
			Confidence:   confidence,
		},
		Modules: modules,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
