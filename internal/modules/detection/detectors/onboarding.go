package detectors

import (
	"context"
	"fmt"
	"time"

	"github.com/avelara/beacon/internal/domain"
	"github.com/avelara/beacon/internal/modules/detection"
	"github.com/rs/zerolog"
)

// IncompleteOnboarding fires once an account has existed past the grace
// period without ever recording an onboarding-completed signal. A presence
// check, not a threshold comparison.
type IncompleteOnboarding struct {
	log zerolog.Logger
}

// NewIncompleteOnboarding creates the incomplete onboarding detector.
func NewIncompleteOnboarding(log zerolog.Logger) *IncompleteOnboarding {
	return &IncompleteOnboarding{log: log.With().Str("detector", domain.SignalIncompleteOnboarding).Logger()}
}

func (d *IncompleteOnboarding) Name() string                    { return domain.SignalIncompleteOnboarding }
func (d *IncompleteOnboarding) Category() domain.SignalCategory { return domain.CategoryChurnRisk }

func (d *IncompleteOnboarding) Description() string {
	return "Onboarding is still unfinished past the grace period"
}

func (d *IncompleteOnboarding) DefaultParams() detection.Params {
	return detection.Params{
		"threshold_days": 14.0,
		"lookback_days":  30.0,
	}
}

func (d *IncompleteOnboarding) Detect(ctx context.Context, dctx *detection.Context) (*domain.DetectedSignal, error) {
	fired, err := dctx.RecentlyFired(ctx, d.Name(), dctx.Params.Float("lookback_days", 30))
	if err != nil {
		return nil, fmt.Errorf("dedup check: %w", err)
	}
	if fired {
		return nil, nil
	}

	daysSinceCreation := dctx.Now.Sub(dctx.Account.CreatedAt).Hours() / 24
	if daysSinceCreation < dctx.Params.Float("threshold_days", 14) {
		return nil, nil
	}

	// All-time presence check for the completion marker.
	completed, err := dctx.Store.SignalsSince(ctx, dctx.Account.ID, domain.SignalOnboardingCompleted, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("onboarding completion check: %w", err)
	}
	if len(completed) > 0 {
		return nil, nil
	}

	d.log.Debug().
		Str("account_id", dctx.Account.ID).
		Float64("days_since_creation", daysSinceCreation).
		Msg("Onboarding still unfinished")

	return &domain.DetectedSignal{
		AccountID:   dctx.Account.ID,
		WorkspaceID: dctx.WorkspaceID,
		Type:        d.Name(),
		Category:    d.Category(),
		Value:       daysSinceCreation,
		Details: map[string]any{
			"days_since_creation": daysSinceCreation,
		},
	}, nil
}
