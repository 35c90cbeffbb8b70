package detectors

import (
	"context"
	"fmt"

	"github.com/avelara/beacon/internal/domain"
	"github.com/avelara/beacon/internal/modules/detection"
	"github.com/rs/zerolog"
)

// FreePlanUserLimit is the seat limit on the free plan.
const FreePlanUserLimit = 5

// NearingPaywall fires when a free-plan account's seat utilization reaches
// the threshold.
type NearingPaywall struct {
	log zerolog.Logger
}

// NewNearingPaywall creates the nearing paywall detector.
func NewNearingPaywall(log zerolog.Logger) *NearingPaywall {
	return &NearingPaywall{log: log.With().Str("detector", domain.SignalNearingPaywall).Logger()}
}

func (d *NearingPaywall) Name() string                    { return domain.SignalNearingPaywall }
func (d *NearingPaywall) Category() domain.SignalCategory { return domain.CategoryExpansion }

func (d *NearingPaywall) Description() string {
	return "Free plan seat utilization is close to the plan limit"
}

func (d *NearingPaywall) DefaultParams() detection.Params {
	return detection.Params{
		"threshold":       0.80,
		"plan_user_limit": FreePlanUserLimit,
		"lookback_days":   14.0,
	}
}

func (d *NearingPaywall) Detect(ctx context.Context, dctx *detection.Context) (*domain.DetectedSignal, error) {
	fired, err := dctx.RecentlyFired(ctx, d.Name(), dctx.Params.Float("lookback_days", 14))
	if err != nil {
		return nil, fmt.Errorf("dedup check: %w", err)
	}
	if fired {
		return nil, nil
	}

	if dctx.Account.Plan != domain.PlanFree {
		return nil, nil
	}

	userCount, err := dctx.Store.CountUsers(ctx, dctx.Account.ID)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	limit := dctx.Params.Int("plan_user_limit", FreePlanUserLimit)
	if limit <= 0 {
		limit = FreePlanUserLimit
	}
	utilization := float64(userCount) / float64(limit)
	if utilization < dctx.Params.Float("threshold", 0.80) {
		return nil, nil
	}

	d.log.Debug().
		Str("account_id", dctx.Account.ID).
		Int("user_count", userCount).
		Float64("utilization", utilization).
		Msg("Seat utilization near plan limit")

	return &domain.DetectedSignal{
		AccountID:   dctx.Account.ID,
		WorkspaceID: dctx.WorkspaceID,
		Type:        d.Name(),
		Category:    d.Category(),
		Value:       utilization,
		Details: map[string]any{
			"user_count": userCount,
			"plan_limit": limit,
		},
	}, nil
}
