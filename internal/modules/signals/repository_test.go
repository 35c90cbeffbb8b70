package signals

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/avelara/beacon/internal/domain"
	_ "modernc.org/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `
CREATE TABLE signals (
	id TEXT PRIMARY KEY,
	account_id TEXT NOT NULL,
	workspace_id TEXT NOT NULL,
	type TEXT NOT NULL,
	category TEXT NOT NULL,
	source TEXT NOT NULL,
	value REAL NOT NULL DEFAULT 0,
	details TEXT,
	timestamp INTEGER NOT NULL
);
CREATE INDEX idx_signals_account_type ON signals(account_id, type, timestamp);
`

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(testSchema)
	require.NoError(t, err)
	return db
}

func newTestRepository(t *testing.T, now time.Time) *Repository {
	t.Helper()
	repo := NewRepository(setupTestDB(t))
	repo.now = func() time.Time { return now }
	return repo
}

func TestInsertDetected(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	repo := newTestRepository(t, now)
	ctx := context.Background()

	signal, err := repo.InsertDetected(ctx, domain.DetectedSignal{
		AccountID:   "acc-1",
		WorkspaceID: "ws-1",
		Type:        domain.SignalUsageSpike,
		Category:    domain.CategoryExpansion,
		Value:       0.42,
		Details:     map[string]any{"current_events": 120.0},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, signal.ID)
	assert.Equal(t, domain.SourceHeuristic, signal.Source)
	assert.Equal(t, now, signal.Timestamp)

	stored, err := repo.SignalsSince(ctx, "acc-1", "", time.Time{})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, signal.ID, stored[0].ID)
	assert.Equal(t, 0.42, stored[0].Value)
	assert.Equal(t, 120.0, stored[0].Details["current_events"])
}

func TestRecordManual(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	repo := newTestRepository(t, now)
	ctx := context.Background()

	signal, err := repo.RecordManual(ctx, domain.Signal{
		AccountID:   "acc-1",
		WorkspaceID: "ws-1",
		Type:        domain.SignalChampionLeft,
		Category:    domain.CategoryChurnRisk,
		Value:       1,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, signal.ID)
	assert.Equal(t, domain.SourceManual, signal.Source)
	assert.Equal(t, now, signal.Timestamp)

	stored, err := repo.SignalsSince(ctx, "acc-1", domain.SignalChampionLeft, time.Time{})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Nil(t, stored[0].Details)
}

func TestSignalsSince_FiltersTypeAndCutoff(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	repo := newTestRepository(t, now)
	ctx := context.Background()

	insertAt := func(ts time.Time, accountID, signalType string) {
		_, err := repo.RecordManual(ctx, domain.Signal{
			AccountID:   accountID,
			WorkspaceID: "ws-1",
			Type:        signalType,
			Category:    domain.CategoryNeutral,
			Timestamp:   ts,
		})
		require.NoError(t, err)
	}

	insertAt(now.AddDate(0, 0, -10), "acc-1", domain.SignalUsageSpike)
	insertAt(now.AddDate(0, 0, -3), "acc-1", domain.SignalUsageSpike)
	insertAt(now.AddDate(0, 0, -1), "acc-1", domain.SignalTrialEnding)
	insertAt(now.AddDate(0, 0, -1), "acc-2", domain.SignalUsageSpike)

	// Type filter plus cutoff excludes the 10-day-old spike and the other
	// account's signal.
	recent, err := repo.SignalsSince(ctx, "acc-1", domain.SignalUsageSpike, now.AddDate(0, 0, -7))
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, now.AddDate(0, 0, -3), recent[0].Timestamp)

	// Empty type matches everything for the account, newest first.
	all, err := repo.SignalsSince(ctx, "acc-1", "", time.Time{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, domain.SignalTrialEnding, all[0].Type)
}

func TestSignalsSince_CutoffIsInclusive(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	repo := newTestRepository(t, now)
	ctx := context.Background()

	cutoff := now.AddDate(0, 0, -7)
	_, err := repo.RecordManual(ctx, domain.Signal{
		AccountID:   "acc-1",
		WorkspaceID: "ws-1",
		Type:        domain.SignalUsageSpike,
		Category:    domain.CategoryExpansion,
		Timestamp:   cutoff,
	})
	require.NoError(t, err)

	stored, err := repo.SignalsSince(ctx, "acc-1", domain.SignalUsageSpike, cutoff)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestListByAccount_AppliesLimit(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	repo := newTestRepository(t, now)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := repo.RecordManual(ctx, domain.Signal{
			AccountID:   "acc-1",
			WorkspaceID: "ws-1",
			Type:        domain.SignalUsageSpike,
			Category:    domain.CategoryExpansion,
			Timestamp:   now.AddDate(0, 0, -i),
		})
		require.NoError(t, err)
	}

	signals, err := repo.ListByAccount(ctx, "acc-1", 3)
	require.NoError(t, err)
	require.Len(t, signals, 3)
	assert.Equal(t, now, signals[0].Timestamp, "newest first")
}

func TestListByWorkspace_HalfOpenRange(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	repo := newTestRepository(t, now)
	ctx := context.Background()

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	for _, ts := range []time.Time{from.Add(-time.Second), from, to.Add(-time.Second), to} {
		_, err := repo.RecordManual(ctx, domain.Signal{
			AccountID:   "acc-1",
			WorkspaceID: "ws-1",
			Type:        domain.SignalUsageSpike,
			Category:    domain.CategoryExpansion,
			Timestamp:   ts,
		})
		require.NoError(t, err)
	}

	signals, err := repo.ListByWorkspace(ctx, "ws-1", from, to)
	require.NoError(t, err)
	require.Len(t, signals, 2)
	assert.Equal(t, from, signals[0].Timestamp, "oldest first")
}
