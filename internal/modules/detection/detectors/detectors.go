// Package detectors holds the built-in detector rules. Every detector
// follows the same shape: dedup check, fetch recent state, compute a derived
// metric, compare to a threshold, emit with evidence.
package detectors

import (
	"github.com/avelara/beacon/internal/modules/detection"
	"github.com/rs/zerolog"
)

// NewPopulatedRegistry returns a registry with every built-in detector
// registered.
func NewPopulatedRegistry(log zerolog.Logger) *detection.Registry {
	registry := detection.NewRegistry(log)
	registry.Register(NewUsageSpike(log))
	registry.Register(NewNearingPaywall(log))
	registry.Register(NewTrialEnding(log))
	registry.Register(NewDecisionMakerSignup(log))
	registry.Register(NewHealthScoreDecrease(log))
	registry.Register(NewUsageDecline(log))
	registry.Register(NewIncompleteOnboarding(log))
	return registry
}

// percentChange computes (current-previous)/previous with a zero baseline
// treated as 1 to avoid division by zero.
func percentChange(current, previous float64) float64 {
	base := previous
	if base == 0 {
		base = 1
	}
	return (current - previous) / base
}
