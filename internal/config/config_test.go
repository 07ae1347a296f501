package config

import "testing"

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config should validate, got: %v", err)
	}
}

func TestDiscriminationForDefaultsToOne(t *testing.T) {
	c := Default()
	if got := c.DiscriminationFor(ModuleID("unknown_module")); got != 1.0 {
		t.Fatalf("expected default discrimination 1.0, got %v", got)
	}
	if got := c.DiscriminationFor(ModuleRAN); got != 1.0 {
		t.Fatalf("expected ran discrimination 1.0, got %v", got)
	}
	if got := c.DiscriminationFor(ModulePhonemicAwareness); got != 1.2 {
		t.Fatalf("expected phonemic_awareness discrimination 1.2, got %v", got)
	}
}

func TestWeightForUnknownModuleIsZero(t *testing.T) {
	c := Default()
	if got := c.WeightFor(ModuleID("unknown_module")); got != 0 {
		t.Fatalf("expected zero weight for unknown module, got %v", got)
	}
}

func TestHasModule(t *testing.T) {
	c := Default()
	if !c.HasModule(ModuleRAN) {
		t.Fatal("expected ran to be a configured module")
	}
	if c.HasModule(ModuleID("not_a_module")) {
		t.Fatal("expected unknown module to report false")
	}
}

func TestValidateRejectsBadSlowRTFactor(t *testing.T) {
	c := Default()
	c.SlowRTFactor = 1.0
	if err := c.Validate(); err == nil {
		t.Fatal("expected validation error for slow_rt_factor <= 1")
	}
}

func TestValidateRejectsBadRiskThresholds(t *testing.T) {
	c := Default()
	c.RiskScoreModerate = c.RiskScoreHigh
	if err := c.Validate(); err == nil {
		t.Fatal("expected validation error when moderate >= high")
	}
}

func TestValidateRejectsKeyModuleOutsideOrder(t *testing.T) {
	c := Default()
	c.KeyModules = [2]ModuleID{ModuleID("ghost_module"), ModuleRAN}
	if err := c.Validate(); err == nil {
		t.Fatal("expected validation error for key module not in module order")
	}
}
