// Package scheduler provides the recurring jobs the daemon runs on a cron
// schedule: detection sweeps and score refreshes.
package scheduler

import (
	"context"
	"time"

	"github.com/avelara/beacon/internal/domain"
	"github.com/avelara/beacon/internal/events"
	"github.com/avelara/beacon/internal/modules/detection"
	"github.com/avelara/beacon/internal/modules/scoring"
)

// SweepRunner runs detectors across active accounts.
type SweepRunner interface {
	RunSweep(ctx context.Context, opts detection.SweepOptions) detection.SweepResult
}

// AccountLister provides the accounts a refresh covers.
type AccountLister interface {
	ListActive(ctx context.Context, limit int) ([]domain.Account, error)
}

// SignalReader provides an account's signal history.
type SignalReader interface {
	SignalsSince(ctx context.Context, accountID, signalType string, since time.Time) ([]domain.Signal, error)
}

// ScoreWriter persists score snapshots.
type ScoreWriter interface {
	Insert(ctx context.Context, record domain.ScoreRecord) error
}

// ScoreEngine computes composite scores and opportunity verdicts.
type ScoreEngine interface {
	CalculateAll(account domain.Account, signals []domain.Signal, now time.Time) map[domain.ScoreType]scoring.ScoreResult
	EvaluateOpportunities(account domain.Account, expansionScore, churnRiskScore float64) []scoring.OpportunityEvaluation
	Config() scoring.Config
}

// EventEmitter publishes engine lifecycle events.
type EventEmitter interface {
	Emit(eventType events.EventType, module string, data any)
}

// DatabaseMaintainer is the database surface the maintenance job drives.
type DatabaseMaintainer interface {
	HealthCheck(ctx context.Context) error
	WALCheckpoint(mode string) error
}
