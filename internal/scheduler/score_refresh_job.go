package scheduler

import (
	"context"
	"time"

	"github.com/avelara/beacon/internal/domain"
	"github.com/avelara/beacon/internal/events"
	"github.com/rs/zerolog"
)

// ScoreRefreshJob recomputes and persists the three composite scores for
// every active account. It satisfies cron.Job.
type ScoreRefreshJob struct {
	now      func() time.Time
	accounts AccountLister
	signals  SignalReader
	scores   ScoreWriter
	engine   ScoreEngine
	emitter  EventEmitter
	limit    int
	timeout  time.Duration
	log      zerolog.Logger
}

// NewScoreRefreshJob creates a score refresh job. A nil emitter disables
// event publication.
func NewScoreRefreshJob(accounts AccountLister, signals SignalReader, scores ScoreWriter, engine ScoreEngine, emitter EventEmitter, limit int, log zerolog.Logger) *ScoreRefreshJob {
	return &ScoreRefreshJob{
		now:      time.Now,
		accounts: accounts,
		signals:  signals,
		scores:   scores,
		engine:   engine,
		emitter:  emitter,
		limit:    limit,
		timeout:  10 * time.Minute,
		log:      log.With().Str("job", "score_refresh").Logger(),
	}
}

// Name returns the job name.
func (j *ScoreRefreshJob) Name() string {
	return "score_refresh"
}

// Run refreshes scores for active accounts. Accounts are independent: a
// failure on one is logged and the rest still refresh.
func (j *ScoreRefreshJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	limit := j.limit
	if limit <= 0 {
		limit = j.engine.Config().SignalProcessing.BatchAccountLimit
	}

	accounts, err := j.accounts.ListActive(ctx, limit)
	if err != nil {
		j.log.Error().Err(err).Msg("Failed to list accounts for score refresh")
		return
	}

	now := j.now()
	refreshed := 0
	for _, account := range accounts {
		if ctx.Err() != nil {
			break
		}
		if err := j.refreshAccount(ctx, account, now); err != nil {
			j.log.Warn().Str("account_id", account.ID).Err(err).Msg("Score refresh failed")
			continue
		}
		refreshed++
	}

	j.log.Info().
		Int("accounts", len(accounts)).
		Int("refreshed", refreshed).
		Msg("Score refresh job finished")
}

func (j *ScoreRefreshJob) refreshAccount(ctx context.Context, account domain.Account, now time.Time) error {
	// Only signals inside the max-age cutoff can contribute, so the query is
	// bounded to that horizon.
	maxAge := j.engine.Config().Scoring.MaxSignalAgeDays
	since := now.AddDate(0, 0, -int(maxAge))

	signals, err := j.signals.SignalsSince(ctx, account.ID, "", since)
	if err != nil {
		return err
	}

	results := j.engine.CalculateAll(account, signals, now)
	for scoreType, result := range results {
		record := domain.ScoreRecord{
			AccountID:  account.ID,
			Type:       scoreType,
			Score:      result.Score,
			RecordedAt: now,
		}
		if err := j.scores.Insert(ctx, record); err != nil {
			return err
		}
		if j.emitter != nil {
			j.emitter.Emit(events.ScoreComputed, "scheduler", events.ScoreComputedData{
				AccountID: account.ID,
				ScoreType: string(scoreType),
				Score:     result.Score,
				Grade:     result.Grade.Grade,
			})
		}
	}

	evaluations := j.engine.EvaluateOpportunities(account,
		results[domain.ScoreExpansion].Score,
		results[domain.ScoreChurnRisk].Score,
	)
	for _, eval := range evaluations {
		if !eval.Triggered {
			continue
		}
		if j.emitter != nil {
			j.emitter.Emit(events.OpportunityFound, "scheduler", events.OpportunityFoundData{
				AccountID:      eval.AccountID,
				Type:           string(eval.Type),
				Score:          eval.Score,
				EstimatedValue: eval.EstimatedValue,
			})
		}
		j.log.Info().
			Str("account_id", eval.AccountID).
			Str("type", string(eval.Type)).
			Float64("score", eval.Score).
			Float64("estimated_value", eval.EstimatedValue).
			Msg("Opportunity threshold crossed")
	}

	return nil
}
