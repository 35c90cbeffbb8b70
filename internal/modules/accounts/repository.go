// Package accounts persists customer accounts, their users, and raw
// activity events.
package accounts

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/avelara/beacon/internal/domain"
	"github.com/google/uuid"
)

// Repository stores and queries accounts and their activity.
type Repository struct {
	db *sql.DB
}

// NewRepository creates an account repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Upsert inserts or replaces an account snapshot.
func (r *Repository) Upsert(ctx context.Context, account domain.Account) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO accounts (id, workspace_id, name, plan, status, fit_score, arr, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		account.ID, account.WorkspaceID, account.Name, account.Plan,
		account.Status, account.FitScore, account.ARR, account.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert account %s: %w", account.ID, err)
	}
	return nil
}

// Account returns one account by id.
func (r *Repository) Account(ctx context.Context, accountID string) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, workspace_id, name, plan, status, fit_score, arr, created_at
		FROM accounts
		WHERE id = ?`,
		accountID,
	)

	account, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return domain.Account{}, fmt.Errorf("account not found: %s", accountID)
	}
	if err != nil {
		return domain.Account{}, fmt.Errorf("failed to load account %s: %w", accountID, err)
	}
	return account, nil
}

// ListActive returns non-churned accounts, oldest first, up to the limit.
func (r *Repository) ListActive(ctx context.Context, limit int) ([]domain.Account, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, workspace_id, name, plan, status, fit_score, arr, created_at
		FROM accounts
		WHERE status != ?
		ORDER BY created_at ASC
		LIMIT ?`,
		domain.StatusChurned, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list active accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// InsertUser adds a member to an account, assigning an id when absent.
func (r *Repository) InsertUser(ctx context.Context, user domain.AccountUser) (domain.AccountUser, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO account_users (id, account_id, email, title, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		user.ID, user.AccountID, user.Email, user.Title, user.CreatedAt.Unix(),
	)
	if err != nil {
		return domain.AccountUser{}, fmt.Errorf("failed to insert user for %s: %w", user.AccountID, err)
	}
	return user, nil
}

// CountUsers returns an account's seat count.
func (r *Repository) CountUsers(ctx context.Context, accountID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM account_users WHERE account_id = ?`, accountID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count users for %s: %w", accountID, err)
	}
	return count, nil
}

// UsersCreatedSince returns an account's users created at or after the
// cutoff. A zero cutoff returns every user.
func (r *Repository) UsersCreatedSince(ctx context.Context, accountID string, since time.Time) ([]domain.AccountUser, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, account_id, email, title, created_at
		FROM account_users
		WHERE account_id = ? AND created_at >= ?
		ORDER BY created_at ASC`,
		accountID, since.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list users for %s: %w", accountID, err)
	}
	defer rows.Close()

	var users []domain.AccountUser
	for rows.Next() {
		var (
			user domain.AccountUser
			ts   int64
		)
		if err := rows.Scan(&user.ID, &user.AccountID, &user.Email, &user.Title, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		user.CreatedAt = time.Unix(ts, 0).UTC()
		users = append(users, user)
	}
	return users, rows.Err()
}

// RecordEvent appends one raw activity event.
func (r *Repository) RecordEvent(ctx context.Context, accountID, eventType string, occurredAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO account_events (account_id, event_type, occurred_at)
		VALUES (?, ?, ?)`,
		accountID, eventType, occurredAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to record event for %s: %w", accountID, err)
	}
	return nil
}

// CountEvents returns the number of events in [from, to).
func (r *Repository) CountEvents(ctx context.Context, accountID string, from, to time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM account_events
		WHERE account_id = ? AND occurred_at >= ? AND occurred_at < ?`,
		accountID, from.Unix(), to.Unix(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count events for %s: %w", accountID, err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (domain.Account, error) {
	var (
		account domain.Account
		ts      int64
	)
	err := row.Scan(&account.ID, &account.WorkspaceID, &account.Name,
		&account.Plan, &account.Status, &account.FitScore, &account.ARR, &ts)
	if err != nil {
		return domain.Account{}, err
	}
	account.CreatedAt = time.Unix(ts, 0).UTC()
	return account, nil
}
