package domain

import (
	"math"
	"strings"
)

// ModelPricing holds per-million token rates for one model tier.
type ModelPricing struct {
	Tier             string
	InputPerMillion  float64
	OutputPerMillion float64
}

var (
	OpusPricing   = ModelPricing{Tier: "opus", InputPerMillion: 15.00, OutputPerMillion: 75.00}
	SonnetPricing = ModelPricing{Tier: "sonnet", InputPerMillion: 3.00, OutputPerMillion: 15.00}
	HaikuPricing  = ModelPricing{Tier: "haiku", InputPerMillion: 0.80, OutputPerMillion: 4.00}
)

const (
	cacheWriteMultiplier = 1.25
	cacheReadMultiplier  = 0.10
)

// PricingForModel picks the tier by case-insensitive substring match.
// Unknown or empty model names get sonnet rates.
func PricingForModel(model string) ModelPricing {
	m := strings.ToLower(model)
	switch {
	case strings.Contains(m, "opus"):
		return OpusPricing
	case strings.Contains(m, "haiku"):
		return HaikuPricing
	default:
		return SonnetPricing
	}
}

// CalculateCost returns the unrounded USD cost. Cache writes are billed at
// 1.25x and cache reads at 0.1x the input rate.
func (p ModelPricing) CalculateCost(input, output, cacheRead, cacheWrite int64) float64 {
	cost := float64(input) * p.InputPerMillion
	cost += float64(output) * p.OutputPerMillion
	cost += float64(cacheWrite) * p.InputPerMillion * cacheWriteMultiplier
	cost += float64(cacheRead) * p.InputPerMillion * cacheReadMultiplier
	return cost / 1_000_000
}

// EstimateCost prices token usage for a model, rounded to 4 decimals.
func EstimateCost(input, output, cacheRead, cacheCreation int64, model string) float64 {
	return RoundCost(PricingForModel(model).CalculateCost(input, output, cacheRead, cacheCreation))
}

// RoundCost rounds a USD amount to 4 decimal places.
func RoundCost(v float64) float64 {
	return math.Round(v*10_000) / 10_000
}
