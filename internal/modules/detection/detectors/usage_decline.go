package detectors

import (
	"context"
	"fmt"

	"github.com/avelara/beacon/internal/domain"
	"github.com/avelara/beacon/internal/modules/detection"
	"github.com/rs/zerolog"
)

// UsageDecline fires when the trailing 7-day event count fell by at least the
// threshold versus the prior 7 days.
type UsageDecline struct {
	log zerolog.Logger
}

// NewUsageDecline creates the usage decline detector.
func NewUsageDecline(log zerolog.Logger) *UsageDecline {
	return &UsageDecline{log: log.With().Str("detector", domain.SignalUsageDecline).Logger()}
}

func (d *UsageDecline) Name() string                    { return domain.SignalUsageDecline }
func (d *UsageDecline) Category() domain.SignalCategory { return domain.CategoryChurnRisk }

func (d *UsageDecline) Description() string {
	return "Week-over-week event volume declined at least 15%"
}

func (d *UsageDecline) DefaultParams() detection.Params {
	return detection.Params{
		"threshold":     -0.15,
		"lookback_days": 7.0,
	}
}

func (d *UsageDecline) Detect(ctx context.Context, dctx *detection.Context) (*domain.DetectedSignal, error) {
	fired, err := dctx.RecentlyFired(ctx, d.Name(), dctx.Params.Float("lookback_days", 7))
	if err != nil {
		return nil, fmt.Errorf("dedup check: %w", err)
	}
	if fired {
		return nil, nil
	}

	week := detection.Days(7)
	accountID := dctx.Account.ID

	current, err := dctx.Store.CountEvents(ctx, accountID, dctx.Now.Add(-week), dctx.Now)
	if err != nil {
		return nil, fmt.Errorf("count current week: %w", err)
	}
	previous, err := dctx.Store.CountEvents(ctx, accountID, dctx.Now.Add(-2*week), dctx.Now.Add(-week))
	if err != nil {
		return nil, fmt.Errorf("count previous week: %w", err)
	}

	change := percentChange(float64(current), float64(previous))
	if change > dctx.Params.Float("threshold", -0.15) {
		return nil, nil
	}

	d.log.Debug().
		Str("account_id", accountID).
		Int("current_events", current).
		Int("previous_events", previous).
		Float64("change", change).
		Msg("Usage decline detected")

	return &domain.DetectedSignal{
		AccountID:   accountID,
		WorkspaceID: dctx.WorkspaceID,
		Type:        d.Name(),
		Category:    d.Category(),
		Value:       change,
		Details: map[string]any{
			"current_events":  current,
			"previous_events": previous,
		},
	}, nil
}
