package detectors

import (
	"context"
	"fmt"

	"github.com/avelara/beacon/internal/domain"
	"github.com/avelara/beacon/internal/modules/detection"
	"github.com/rs/zerolog"
)

// TrialEnding fires when a trial account is inside the alert window before
// its trial period runs out.
type TrialEnding struct {
	log zerolog.Logger
}

// NewTrialEnding creates the trial ending detector.
func NewTrialEnding(log zerolog.Logger) *TrialEnding {
	return &TrialEnding{log: log.With().Str("detector", domain.SignalTrialEnding).Logger()}
}

func (d *TrialEnding) Name() string                    { return domain.SignalTrialEnding }
func (d *TrialEnding) Category() domain.SignalCategory { return domain.CategoryExpansion }

func (d *TrialEnding) Description() string {
	return "Trial period ends within the alert window"
}

func (d *TrialEnding) DefaultParams() detection.Params {
	return detection.Params{
		"trial_period_days": 14.0,
		"threshold_days":    7.0,
		"lookback_days":     7.0,
	}
}

func (d *TrialEnding) Detect(ctx context.Context, dctx *detection.Context) (*domain.DetectedSignal, error) {
	fired, err := dctx.RecentlyFired(ctx, d.Name(), dctx.Params.Float("lookback_days", 7))
	if err != nil {
		return nil, fmt.Errorf("dedup check: %w", err)
	}
	if fired {
		return nil, nil
	}

	if dctx.Account.Status != domain.StatusTrial {
		return nil, nil
	}

	trialPeriod := dctx.Params.Float("trial_period_days", 14)
	daysSinceCreation := dctx.Now.Sub(dctx.Account.CreatedAt).Hours() / 24
	daysRemaining := trialPeriod - daysSinceCreation

	// Fires only inside the window: already expired trials stay silent.
	threshold := dctx.Params.Float("threshold_days", 7)
	if daysRemaining <= 0 || daysRemaining > threshold {
		return nil, nil
	}

	d.log.Debug().
		Str("account_id", dctx.Account.ID).
		Float64("days_remaining", daysRemaining).
		Msg("Trial inside alert window")

	return &domain.DetectedSignal{
		AccountID:   dctx.Account.ID,
		WorkspaceID: dctx.WorkspaceID,
		Type:        d.Name(),
		Category:    d.Category(),
		Value:       daysRemaining,
		Details: map[string]any{
			"days_remaining":    daysRemaining,
			"trial_period_days": trialPeriod,
		},
	}, nil
}
