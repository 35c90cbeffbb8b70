// Package detection provides the detector framework: a registry of named
// rules that inspect account history and emit discrete signals. Detectors are
// independent of the scoring engine at runtime but share its signal taxonomy.
package detection

import (
	"context"
	"time"

	"github.com/avelara/beacon/internal/domain"
)

// Params holds a detector's tunable parameters (thresholds, lookback
// windows). Defaults come from the detector; callers override per detector
// name.
type Params map[string]any

// Merge returns a copy of the defaults with the override keys applied.
func (p Params) Merge(overrides Params) Params {
	merged := make(Params, len(p)+len(overrides))
	for k, v := range p {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}

// Float reads a numeric parameter, tolerating the int/float ambiguity of
// YAML-sourced overrides.
func (p Params) Float(key string, fallback float64) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return fallback
	}
}

// Int reads an integer parameter.
func (p Params) Int(key string, fallback int) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return fallback
	}
}

// Detector is a named, versionable rule. Detect returns a signal when the
// rule fires, nil when it does not; both with a nil error.
type Detector interface {
	// Name returns the unique registry key, which is also the signal type
	// the detector emits.
	Name() string

	// Category returns the category of the emitted signal.
	Category() domain.SignalCategory

	// Description explains what the rule looks for.
	Description() string

	// DefaultParams returns the detector's tunable defaults.
	DefaultParams() Params

	// Detect evaluates the rule for the account in dctx.
	Detect(ctx context.Context, dctx *Context) (*domain.DetectedSignal, error)
}

// Context carries everything a single detector invocation needs: the storage
// handle, the account snapshot, the effective parameters, and the evaluation
// time. Detectors must treat it as read-only.
type Context struct {
	Now         time.Time
	Store       Store
	Account     domain.Account
	WorkspaceID string
	Params      Params
}

// RecentlyFired reports whether a signal of the given type already exists for
// the account within the lookback window. Every detector checks this before
// evaluating its rule; it bounds signal volume and gives each detector an
// implicit re-fire cooldown.
func (c *Context) RecentlyFired(ctx context.Context, signalType string, lookbackDays float64) (bool, error) {
	since := c.Now.Add(-time.Duration(lookbackDays * 24 * float64(time.Hour)))
	existing, err := c.Store.SignalsSince(ctx, c.Account.ID, signalType, since)
	if err != nil {
		return false, err
	}
	return len(existing) > 0, nil
}

// Days converts a day count to a duration.
func Days(d float64) time.Duration {
	return time.Duration(d * 24 * float64(time.Hour))
}
