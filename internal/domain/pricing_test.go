package domain

import (
	"math"
	"testing"
)

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestEstimateCost_Tiers(t *testing.T) {
	tests := []struct {
		name  string
		model string
		want  float64
	}{
		{"sonnet", "claude-sonnet-4-20250514", 4.50},
		{"opus", "claude-opus-4-20250514", 22.50},
		{"haiku", "claude-3-5-haiku-20241022", 1.20},
		{"uppercase", "Claude-OPUS", 22.50},
		{"empty model defaults to mid tier", "", 4.50},
		{"unknown model defaults to mid tier", "gpt-something", 4.50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateCost(1_000_000, 100_000, 0, 0, tt.model)
			if !floatEquals(got, tt.want) {
				t.Errorf("EstimateCost(%q) = %.6f, want %.6f", tt.model, got, tt.want)
			}
		})
	}
}

func TestEstimateCost_CacheRates(t *testing.T) {
	if got := EstimateCost(0, 0, 1_000_000, 0, ""); !floatEquals(got, 0.30) {
		t.Errorf("cache read cost = %.6f, want 0.30", got)
	}
	if got := EstimateCost(0, 0, 0, 1_000_000, ""); !floatEquals(got, 3.75) {
		t.Errorf("cache creation cost = %.6f, want 3.75", got)
	}
}

func TestEstimateCost_ZeroTokens(t *testing.T) {
	if got := EstimateCost(0, 0, 0, 0, "claude-opus-4"); got != 0.0 {
		t.Errorf("Expected exactly 0, got %v", got)
	}
}

func TestEstimateCost_RoundsToFourDecimals(t *testing.T) {
	// 1234 input at $3/M = 0.003702
	got := EstimateCost(1234, 0, 0, 0, "sonnet")
	if !floatEquals(got, 0.0037) {
		t.Errorf("Expected 0.0037, got %v", got)
	}
}

func TestModelPricing_CalculateCost_Unrounded(t *testing.T) {
	// 1000 input, 500 output, 100 cache read, 50 cache write
	// $0.003 + $0.0075 + $0.00003 + $0.0001875 = $0.0107175
	cost := SonnetPricing.CalculateCost(1000, 500, 100, 50)
	if !floatEquals(cost, 0.0107175) {
		t.Errorf("Expected cost %.7f, got %.7f", 0.0107175, cost)
	}
}

func TestPricingForModel(t *testing.T) {
	assertEqual(t, "opus tier", "opus", PricingForModel("claude-opus-4-1").Tier)
	assertEqual(t, "haiku tier", "haiku", PricingForModel("claude-haiku-4-5").Tier)
	assertEqual(t, "default tier", "sonnet", PricingForModel("").Tier)
}

func assertEqual[T comparable](t *testing.T, name string, expected, actual T) {
	t.Helper()
	if expected != actual {
		t.Errorf("%s: expected %v, got %v", name, expected, actual)
	}
}
