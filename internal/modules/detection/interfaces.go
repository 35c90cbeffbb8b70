package detection

import (
	"context"
	"time"

	"github.com/avelara/beacon/internal/domain"
	"github.com/avelara/beacon/internal/events"
)

// SignalStore defines the signal history operations detectors depend on.
type SignalStore interface {
	// SignalsSince returns signals for an account filtered by type (empty
	// string matches every type) with timestamp >= since, newest first.
	SignalsSince(ctx context.Context, accountID, signalType string, since time.Time) ([]domain.Signal, error)

	// InsertDetected persists a detected signal, assigning its id and
	// timestamp, and returns the stored signal.
	InsertDetected(ctx context.Context, detected domain.DetectedSignal) (domain.Signal, error)
}

// AccountStore defines the account and activity reads detectors depend on.
type AccountStore interface {
	Account(ctx context.Context, accountID string) (domain.Account, error)

	// ListActive returns non-churned accounts, bounded by limit.
	ListActive(ctx context.Context, limit int) ([]domain.Account, error)

	CountUsers(ctx context.Context, accountID string) (int, error)

	// UsersCreatedSince returns account users created at or after since.
	// A zero since returns every user.
	UsersCreatedSince(ctx context.Context, accountID string, since time.Time) ([]domain.AccountUser, error)

	// CountEvents counts activity events for an account in [from, to).
	CountEvents(ctx context.Context, accountID string, from, to time.Time) (int, error)
}

// ScoreStore defines the score history reads detectors depend on.
type ScoreStore interface {
	// LatestScore returns the most recent recorded score of a type, or nil
	// when none exists.
	LatestScore(ctx context.Context, accountID string, scoreType domain.ScoreType) (*domain.ScoreRecord, error)

	// LatestScoreBefore returns the most recent score recorded strictly
	// before the cutoff, or nil when none exists.
	LatestScoreBefore(ctx context.Context, accountID string, scoreType domain.ScoreType, cutoff time.Time) (*domain.ScoreRecord, error)
}

// Store is the full storage surface the detector framework consumes.
type Store interface {
	SignalStore
	AccountStore
	ScoreStore
}

// EventEmitter publishes signal lifecycle events.
type EventEmitter interface {
	Emit(eventType events.EventType, module string, data any)
}
