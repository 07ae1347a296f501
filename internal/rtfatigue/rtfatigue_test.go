package rtfatigue

import (
	"testing"
	"time"

	"github.com/danielpatrickdp/dyslexia-screening/go-engine/internal/state"
)

// Sc3: slow-correct detection.
func TestClassifyResponseTimeSlowCorrect(t *testing.T) {
	slowCorrect, _ := ClassifyResponseTime(14, 10, 1.3, 0.25, true)
	if !slowCorrect {
		t.Fatal("expected slow-correct for rt=14, max=10, factor=1.3")
	}
	slowCorrect, _ = ClassifyResponseTime(12, 10, 1.3, 0.25, true)
	if slowCorrect {
		t.Fatal("expected not slow-correct for rt=12, max=10, factor=1.3")
	}
}

// Sc4: rapid-guess detection.
func TestClassifyResponseTimeRapidGuess(t *testing.T) {
	_, rapidGuess := ClassifyResponseTime(1.5, 8, 1.3, 0.25, false)
	if !rapidGuess {
		t.Fatal("expected rapid-guess for rt=1.5, max=8, fraction=0.25, incorrect")
	}
}

func TestClassifyResponseTimeZeroMaxTimeAlwaysFalse(t *testing.T) {
	slowCorrect, rapidGuess := ClassifyResponseTime(100, 0, 1.3, 0.25, true)
	if slowCorrect || rapidGuess {
		t.Fatal("expected both flags false when max_time_seconds <= 0")
	}
	slowCorrect, rapidGuess = ClassifyResponseTime(100, -5, 1.3, 0.25, false)
	if slowCorrect || rapidGuess {
		t.Fatal("expected both flags false for negative max_time_seconds")
	}
}

func TestClassifyResponseTimeCorrectCannotRapidGuess(t *testing.T) {
	_, rapidGuess := ClassifyResponseTime(0.1, 8, 1.3, 0.25, true)
	if rapidGuess {
		t.Fatal("a correct response must never be flagged as a rapid guess")
	}
}

func TestUpdateModuleRTStatsIncrementsCorrectExactlyOnce(t *testing.T) {
	m := &state.ModuleStats{}
	UpdateModuleRTStats(m, 14, 10, 1.3, 0.25, true)
	if m.Correct != 1 {
		t.Fatalf("expected correct=1, got %d", m.Correct)
	}
	if m.SlowCorrect != 1 {
		t.Fatalf("expected slow_correct=1, got %d", m.SlowCorrect)
	}
	if m.SumRT != 14 {
		t.Fatalf("expected sum_rt=14, got %v", m.SumRT)
	}

	UpdateModuleRTStats(m, 1.5, 8, 1.3, 0.25, false)
	if m.Correct != 1 {
		t.Fatalf("incorrect response must not increment correct, got %d", m.Correct)
	}
	if m.RapidGuess != 1 {
		t.Fatalf("expected rapid_guess=1, got %d", m.RapidGuess)
	}
	if m.SumRT != 15.5 {
		t.Fatalf("expected sum_rt=15.5, got %v", m.SumRT)
	}
}

func TestUpdateSessionTimeClampsNegativeElapsed(t *testing.T) {
	started := time.Date(2026, 1, 1, 0, 0, 10, 0, time.UTC)
	s := &state.SessionState{StartedAt: started}

	// Response timestamp before started_at (clock skew, replay, etc).
	UpdateSessionTime(s, started.Add(-5*time.Second))
	if s.TotalTimeSeconds != 0 {
		t.Fatalf("expected elapsed clamped to 0, got %v", s.TotalTimeSeconds)
	}

	UpdateSessionTime(s, started.Add(90*time.Second))
	if s.TotalTimeSeconds != 90 {
		t.Fatalf("expected elapsed=90, got %v", s.TotalTimeSeconds)
	}
	if !s.LastUpdateAt.Equal(started.Add(90 * time.Second)) {
		t.Fatalf("last_update_at not updated: %v", s.LastUpdateAt)
	}
}

// Sc5: fatigue factor.
func TestFatigueFactorScenario(t *testing.T) {
	const slope = 0.05
	const minFactor = 0.4

	cases := []struct {
		totalSeconds float64
		want         float64
	}{
		{0, 1.0},
		{600, 0.5},
		{1200, 0.4},
		{-100, 1.0},
	}
	for _, c := range cases {
		got := FatigueFactor(c.totalSeconds, slope, minFactor)
		if got != c.want {
			t.Fatalf("FatigueFactor(%v) = %v, want %v", c.totalSeconds, got, c.want)
		}
	}
}

// P10: fatigue factor is monotone non-increasing in total_time_seconds
// and bounded in [min_fatigue_factor, 1].
func TestFatigueFactorMonotoneAndBounded(t *testing.T) {
	const slope = 0.05
	const minFactor = 0.4

	prev := FatigueFactor(0, slope, minFactor)
	for _, seconds := range []float64{60, 300, 600, 900, 1200, 2000} {
		cur := FatigueFactor(seconds, slope, minFactor)
		if cur > prev {
			t.Fatalf("fatigue factor increased from %v to %v at t=%v", prev, cur, seconds)
		}
		if cur < minFactor || cur > 1.0 {
			t.Fatalf("fatigue factor %v out of [%v,1] at t=%v", cur, minFactor, seconds)
		}
		prev = cur
	}
}
