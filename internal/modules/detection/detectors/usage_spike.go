package detectors

import (
	"context"
	"fmt"

	"github.com/avelara/beacon/internal/domain"
	"github.com/avelara/beacon/internal/modules/detection"
	"github.com/rs/zerolog"
)

// UsageSpike fires when event volume in the most recent window grew by at
// least the threshold versus the preceding window of equal length.
type UsageSpike struct {
	log zerolog.Logger
}

// NewUsageSpike creates the usage spike detector.
func NewUsageSpike(log zerolog.Logger) *UsageSpike {
	return &UsageSpike{log: log.With().Str("detector", domain.SignalUsageSpike).Logger()}
}

func (d *UsageSpike) Name() string                    { return domain.SignalUsageSpike }
func (d *UsageSpike) Category() domain.SignalCategory { return domain.CategoryExpansion }

func (d *UsageSpike) Description() string {
	return "Event volume grew at least 20% versus the preceding window"
}

func (d *UsageSpike) DefaultParams() detection.Params {
	return detection.Params{
		"time_window_days": 7.0,
		"threshold":        0.20,
		"lookback_days":    7.0,
	}
}

func (d *UsageSpike) Detect(ctx context.Context, dctx *detection.Context) (*domain.DetectedSignal, error) {
	fired, err := dctx.RecentlyFired(ctx, d.Name(), dctx.Params.Float("lookback_days", 7))
	if err != nil {
		return nil, fmt.Errorf("dedup check: %w", err)
	}
	if fired {
		return nil, nil
	}

	window := detection.Days(dctx.Params.Float("time_window_days", 7))
	accountID := dctx.Account.ID

	current, err := dctx.Store.CountEvents(ctx, accountID, dctx.Now.Add(-window), dctx.Now)
	if err != nil {
		return nil, fmt.Errorf("count current window: %w", err)
	}
	previous, err := dctx.Store.CountEvents(ctx, accountID, dctx.Now.Add(-2*window), dctx.Now.Add(-window))
	if err != nil {
		return nil, fmt.Errorf("count previous window: %w", err)
	}

	change := percentChange(float64(current), float64(previous))
	if change < dctx.Params.Float("threshold", 0.20) {
		return nil, nil
	}

	d.log.Debug().
		Str("account_id", accountID).
		Int("current_events", current).
		Int("previous_events", previous).
		Float64("change", change).
		Msg("Usage spike detected")

	return &domain.DetectedSignal{
		AccountID:   accountID,
		WorkspaceID: dctx.WorkspaceID,
		Type:        d.Name(),
		Category:    d.Category(),
		Value:       change,
		Details: map[string]any{
			"current_events":  current,
			"previous_events": previous,
			"window_days":     dctx.Params.Float("time_window_days", 7),
		},
	}, nil
}
