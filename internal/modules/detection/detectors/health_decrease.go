package detectors

import (
	"context"
	"fmt"

	"github.com/avelara/beacon/internal/domain"
	"github.com/avelara/beacon/internal/modules/detection"
	"github.com/rs/zerolog"
)

// HealthScoreDecrease fires when the most recent stored health score dropped
// by at least the threshold versus the last score recorded before the
// comparison window.
type HealthScoreDecrease struct {
	log zerolog.Logger
}

// NewHealthScoreDecrease creates the health score decrease detector.
func NewHealthScoreDecrease(log zerolog.Logger) *HealthScoreDecrease {
	return &HealthScoreDecrease{log: log.With().Str("detector", domain.SignalHealthScoreDecrease).Logger()}
}

func (d *HealthScoreDecrease) Name() string                    { return domain.SignalHealthScoreDecrease }
func (d *HealthScoreDecrease) Category() domain.SignalCategory { return domain.CategoryChurnRisk }

func (d *HealthScoreDecrease) Description() string {
	return "Health score dropped at least 20% versus the previous reading"
}

func (d *HealthScoreDecrease) DefaultParams() detection.Params {
	return detection.Params{
		"time_window_days": 7.0,
		"threshold":        -0.20,
		"lookback_days":    7.0,
	}
}

func (d *HealthScoreDecrease) Detect(ctx context.Context, dctx *detection.Context) (*domain.DetectedSignal, error) {
	fired, err := dctx.RecentlyFired(ctx, d.Name(), dctx.Params.Float("lookback_days", 7))
	if err != nil {
		return nil, fmt.Errorf("dedup check: %w", err)
	}
	if fired {
		return nil, nil
	}

	accountID := dctx.Account.ID
	latest, err := dctx.Store.LatestScore(ctx, accountID, domain.ScoreHealth)
	if err != nil {
		return nil, fmt.Errorf("latest score: %w", err)
	}
	cutoff := dctx.Now.Add(-detection.Days(dctx.Params.Float("time_window_days", 7)))
	previous, err := dctx.Store.LatestScoreBefore(ctx, accountID, domain.ScoreHealth, cutoff)
	if err != nil {
		return nil, fmt.Errorf("previous score: %w", err)
	}
	if latest == nil || previous == nil {
		return nil, nil
	}

	change := percentChange(latest.Score, previous.Score)
	if change > dctx.Params.Float("threshold", -0.20) {
		return nil, nil
	}

	d.log.Debug().
		Str("account_id", accountID).
		Float64("current_score", latest.Score).
		Float64("previous_score", previous.Score).
		Msg("Health score dropped")

	return &domain.DetectedSignal{
		AccountID:   accountID,
		WorkspaceID: dctx.WorkspaceID,
		Type:        d.Name(),
		Category:    d.Category(),
		Value:       change,
		Details: map[string]any{
			"current_score":  latest.Score,
			"previous_score": previous.Score,
		},
	}, nil
}
