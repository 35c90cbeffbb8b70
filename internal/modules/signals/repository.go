// Package signals persists the immutable signal ledger.
package signals

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/avelara/beacon/internal/domain"
	"github.com/google/uuid"
)

// Repository stores and queries signals. Signals are append-only: there is
// no update or delete path, retention is an external concern.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// NewRepository creates a signal repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// InsertDetected persists a detector result as a heuristic signal, assigning
// the id and timestamp.
func (r *Repository) InsertDetected(ctx context.Context, detected domain.DetectedSignal) (domain.Signal, error) {
	signal := domain.Signal{
		ID:          uuid.NewString(),
		AccountID:   detected.AccountID,
		WorkspaceID: detected.WorkspaceID,
		Type:        detected.Type,
		Category:    detected.Category,
		Source:      domain.SourceHeuristic,
		Value:       detected.Value,
		Details:     detected.Details,
		Timestamp:   r.now().UTC().Truncate(time.Second),
	}
	if err := r.insert(ctx, signal); err != nil {
		return domain.Signal{}, err
	}
	return signal, nil
}

// RecordManual persists a user-entered signal at the given timestamp.
func (r *Repository) RecordManual(ctx context.Context, signal domain.Signal) (domain.Signal, error) {
	if signal.ID == "" {
		signal.ID = uuid.NewString()
	}
	if signal.Timestamp.IsZero() {
		signal.Timestamp = r.now().UTC().Truncate(time.Second)
	}
	signal.Source = domain.SourceManual
	if err := r.insert(ctx, signal); err != nil {
		return domain.Signal{}, err
	}
	return signal, nil
}

func (r *Repository) insert(ctx context.Context, signal domain.Signal) error {
	details, err := marshalDetails(signal.Details)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO signals (id, account_id, workspace_id, type, category, source, value, details, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		signal.ID, signal.AccountID, signal.WorkspaceID, signal.Type,
		string(signal.Category), string(signal.Source), signal.Value,
		details, signal.Timestamp.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert signal %s: %w", signal.Type, err)
	}
	return nil
}

// SignalsSince returns an account's signals at or after the cutoff, newest
// first. An empty signalType matches every type.
func (r *Repository) SignalsSince(ctx context.Context, accountID, signalType string, since time.Time) ([]domain.Signal, error) {
	query := `
		SELECT id, account_id, workspace_id, type, category, source, value, details, timestamp
		FROM signals
		WHERE account_id = ? AND timestamp >= ?`
	args := []any{accountID, since.Unix()}
	if signalType != "" {
		query += " AND type = ?"
		args = append(args, signalType)
	}
	query += " ORDER BY timestamp DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query signals for %s: %w", accountID, err)
	}
	defer rows.Close()

	return scanSignals(rows)
}

// ListByAccount returns an account's most recent signals, newest first.
func (r *Repository) ListByAccount(ctx context.Context, accountID string, limit int) ([]domain.Signal, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, account_id, workspace_id, type, category, source, value, details, timestamp
		FROM signals
		WHERE account_id = ?
		ORDER BY timestamp DESC
		LIMIT ?`,
		accountID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list signals for %s: %w", accountID, err)
	}
	defer rows.Close()

	return scanSignals(rows)
}

// ListByWorkspace returns a workspace's signals within [from, to), oldest
// first, the order the analytics engine consumes them in.
func (r *Repository) ListByWorkspace(ctx context.Context, workspaceID string, from, to time.Time) ([]domain.Signal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, account_id, workspace_id, type, category, source, value, details, timestamp
		FROM signals
		WHERE workspace_id = ? AND timestamp >= ? AND timestamp < ?
		ORDER BY timestamp ASC`,
		workspaceID, from.Unix(), to.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list signals for workspace %s: %w", workspaceID, err)
	}
	defer rows.Close()

	return scanSignals(rows)
}

func scanSignals(rows *sql.Rows) ([]domain.Signal, error) {
	var signals []domain.Signal
	for rows.Next() {
		var (
			signal   domain.Signal
			category string
			source   string
			details  sql.NullString
			ts       int64
		)
		if err := rows.Scan(&signal.ID, &signal.AccountID, &signal.WorkspaceID,
			&signal.Type, &category, &source, &signal.Value, &details, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan signal: %w", err)
		}
		signal.Category = domain.SignalCategory(category)
		signal.Source = domain.SignalSource(source)
		signal.Timestamp = time.Unix(ts, 0).UTC()
		if details.Valid && details.String != "" {
			if err := json.Unmarshal([]byte(details.String), &signal.Details); err != nil {
				return nil, fmt.Errorf("failed to decode details for signal %s: %w", signal.ID, err)
			}
		}
		signals = append(signals, signal)
	}
	return signals, rows.Err()
}

func marshalDetails(details map[string]any) (any, error) {
	if len(details) == 0 {
		return nil, nil
	}
	encoded, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal signal details: %w", err)
	}
	return string(encoded), nil
}
