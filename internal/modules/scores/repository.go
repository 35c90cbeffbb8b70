// Package scores persists computed score history.
package scores

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/avelara/beacon/internal/domain"
)

// Repository stores and queries score snapshots.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a score repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert appends one score snapshot.
func (r *Repository) Insert(ctx context.Context, record domain.ScoreRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO scores (account_id, type, score, recorded_at)
		VALUES (?, ?, ?, ?)`,
		record.AccountID, string(record.Type), record.Score, record.RecordedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert %s score for %s: %w", record.Type, record.AccountID, err)
	}
	return nil
}

// LatestScore returns the most recent score of the given type, or nil when
// none has been recorded.
func (r *Repository) LatestScore(ctx context.Context, accountID string, scoreType domain.ScoreType) (*domain.ScoreRecord, error) {
	return r.latest(ctx, accountID, scoreType, `
		SELECT account_id, type, score, recorded_at
		FROM scores
		WHERE account_id = ? AND type = ?
		ORDER BY recorded_at DESC
		LIMIT 1`,
		accountID, string(scoreType),
	)
}

// LatestScoreBefore returns the most recent score strictly before the
// cutoff, or nil when none exists.
func (r *Repository) LatestScoreBefore(ctx context.Context, accountID string, scoreType domain.ScoreType, cutoff time.Time) (*domain.ScoreRecord, error) {
	return r.latest(ctx, accountID, scoreType, `
		SELECT account_id, type, score, recorded_at
		FROM scores
		WHERE account_id = ? AND type = ? AND recorded_at < ?
		ORDER BY recorded_at DESC
		LIMIT 1`,
		accountID, string(scoreType), cutoff.Unix(),
	)
}

func (r *Repository) latest(ctx context.Context, accountID string, scoreType domain.ScoreType, query string, args ...any) (*domain.ScoreRecord, error) {
	var (
		record  domain.ScoreRecord
		typeStr string
		ts      int64
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&record.AccountID, &typeStr, &record.Score, &ts)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s score for %s: %w", scoreType, accountID, err)
	}
	record.Type = domain.ScoreType(typeStr)
	record.RecordedAt = time.Unix(ts, 0).UTC()
	return &record, nil
}

// History returns an account's score snapshots of one type, newest first.
func (r *Repository) History(ctx context.Context, accountID string, scoreType domain.ScoreType, limit int) ([]domain.ScoreRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT account_id, type, score, recorded_at
		FROM scores
		WHERE account_id = ? AND type = ?
		ORDER BY recorded_at DESC
		LIMIT ?`,
		accountID, string(scoreType), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load score history for %s: %w", accountID, err)
	}
	defer rows.Close()

	var records []domain.ScoreRecord
	for rows.Next() {
		var (
			record  domain.ScoreRecord
			typeStr string
			ts      int64
		)
		if err := rows.Scan(&record.AccountID, &typeStr, &record.Score, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan score record: %w", err)
		}
		record.Type = domain.ScoreType(typeStr)
		record.RecordedAt = time.Unix(ts, 0).UTC()
		records = append(records, record)
	}
	return records, rows.Err()
}
