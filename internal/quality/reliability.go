package quality

import "math"

// Reliability tuning
const (
	RetryPenalty       = 12
	LatencyGraceMs     = 25000
	LatencyStepMs      = 4000
	LatencyStepPenalty = 3
	MaxLatencyPenalty  = 30
	MinReliability     = 40
	MaxReliability     = 100
)

// Outcome describes how a generation request went, independent of its text.
type Outcome struct {
	Succeeded bool
	Attempts  int
	LatencyMs int64
}

// ReliabilityScore discounts retries and slow responses. A failed request
// scores 0; any response obtained scores at least MinReliability.
func ReliabilityScore(o Outcome) int {
	if !o.Succeeded {
		return 0
	}

	score := MaxReliability
	if retries := o.Attempts - 1; retries > 0 {
		score -= retries * RetryPenalty
	}
	if o.LatencyMs > LatencyGraceMs {
		steps := math.Round(float64(o.LatencyMs-LatencyGraceMs) / LatencyStepMs)
		score -= min(MaxLatencyPenalty, int(steps)*LatencyStepPenalty)
	}

	return max(MinReliability, min(MaxReliability, score))
}

// DeliveryTotal discounts quality by reliability. Failed requests score 0.
func DeliveryTotal(quality, reliability int, succeeded bool) int {
	if !succeeded {
		return 0
	}
	return int(math.Round(float64(quality) * float64(reliability) / 100))
}
