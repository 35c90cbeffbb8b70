package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avelara/beacon/internal/domain"
	"github.com/avelara/beacon/internal/events"
	"github.com/avelara/beacon/internal/modules/detection"
	"github.com/avelara/beacon/internal/modules/scoring"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSweepRunner struct {
	opts   detection.SweepOptions
	result detection.SweepResult
}

func (f *fakeSweepRunner) RunSweep(_ context.Context, opts detection.SweepOptions) detection.SweepResult {
	f.opts = opts
	return f.result
}

type recordedEvent struct {
	eventType events.EventType
	data      any
}

type fakeEmitter struct {
	emitted []recordedEvent
}

func (f *fakeEmitter) Emit(eventType events.EventType, _ string, data any) {
	f.emitted = append(f.emitted, recordedEvent{eventType: eventType, data: data})
}

func (f *fakeEmitter) ofType(eventType events.EventType) []recordedEvent {
	var out []recordedEvent
	for _, e := range f.emitted {
		if e.eventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

type fakeAccountLister struct {
	accounts []domain.Account
	err      error
}

func (f *fakeAccountLister) ListActive(_ context.Context, limit int) ([]domain.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.accounts) {
		return f.accounts[:limit], nil
	}
	return f.accounts, nil
}

type fakeSignalReader struct {
	signals map[string][]domain.Signal
	since   time.Time
}

func (f *fakeSignalReader) SignalsSince(_ context.Context, accountID, _ string, since time.Time) ([]domain.Signal, error) {
	f.since = since
	return f.signals[accountID], nil
}

type fakeMaintainer struct {
	healthErr     error
	checkpointErr error
	checks        int
	checkpoints   int
}

func (f *fakeMaintainer) HealthCheck(_ context.Context) error {
	f.checks++
	return f.healthErr
}

func (f *fakeMaintainer) WALCheckpoint(_ string) error {
	f.checkpoints++
	return f.checkpointErr
}

type fakeScoreWriter struct {
	records []domain.ScoreRecord
	failFor string
}

func (f *fakeScoreWriter) Insert(_ context.Context, record domain.ScoreRecord) error {
	if f.failFor != "" && record.AccountID == f.failFor {
		return errors.New("write failed")
	}
	f.records = append(f.records, record)
	return nil
}

func testGrades(score float64) domain.Grade {
	if score >= 70 {
		return domain.Grade{Grade: "A", Label: "Excellent", Color: "#00ff00"}
	}
	return domain.Grade{Grade: "C", Label: "Average", Color: "#ffaa00"}
}

func testEngine(t *testing.T) *scoring.Engine {
	t.Helper()
	return scoring.NewEngine(scoring.DefaultConfig(), testGrades, zerolog.Nop())
}

func TestDetectionSweepJob(t *testing.T) {
	runner := &fakeSweepRunner{result: detection.SweepResult{
		AccountsProcessed: 4,
		SignalsDetected:   6,
		SignalsPersisted:  5,
		Errors:            []detection.DetectorError{{Detector: "usage_spike", Message: "boom"}},
	}}
	emitter := &fakeEmitter{}

	job := NewDetectionSweepJob(runner, emitter, detection.SweepOptions{Limit: 50}, zerolog.Nop())
	assert.Equal(t, "detection_sweep", job.Name())
	job.Run()

	assert.Equal(t, 50, runner.opts.Limit)

	completed := emitter.ofType(events.SweepCompleted)
	require.Len(t, completed, 1)
	data, ok := completed[0].data.(events.SweepCompletedData)
	require.True(t, ok)
	assert.Equal(t, 4, data.AccountsProcessed)
	assert.Equal(t, 5, data.SignalsPersisted)
	assert.Equal(t, 1, data.Errors)
}

func TestScoreRefreshJob_PersistsAllScoreTypes(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	account := domain.Account{ID: "acc-1", WorkspaceID: "ws-1", FitScore: 0.6, ARR: 24000, Status: domain.StatusActive}

	signals := &fakeSignalReader{signals: map[string][]domain.Signal{
		"acc-1": {
			{AccountID: "acc-1", Type: domain.SignalUsageSpike, Category: domain.CategoryExpansion, Timestamp: now.AddDate(0, 0, -1)},
			{AccountID: "acc-1", Type: domain.SignalNearingPaywall, Category: domain.CategoryExpansion, Timestamp: now.AddDate(0, 0, -1)},
		},
	}}
	writer := &fakeScoreWriter{}
	emitter := &fakeEmitter{}

	job := NewScoreRefreshJob(&fakeAccountLister{accounts: []domain.Account{account}}, signals, writer, testEngine(t), emitter, 10, zerolog.Nop())
	job.now = func() time.Time { return now }
	job.Run()

	require.Len(t, writer.records, 3, "health, expansion, and churn risk")
	types := map[domain.ScoreType]bool{}
	for _, record := range writer.records {
		types[record.Type] = true
		assert.Equal(t, "acc-1", record.AccountID)
		assert.Equal(t, now, record.RecordedAt)
	}
	assert.Len(t, types, 3)

	assert.Len(t, emitter.ofType(events.ScoreComputed), 3)
}

func TestScoreRefreshJob_EmitsOpportunities(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	account := domain.Account{ID: "acc-1", WorkspaceID: "ws-1", FitScore: 0.6, ARR: 24000, Status: domain.StatusActive}

	// Fresh expansion signals worth 15+20+12+15 points push the expansion
	// score past the 70 threshold.
	fresh := now.Add(-time.Hour)
	signals := &fakeSignalReader{signals: map[string][]domain.Signal{
		"acc-1": {
			{AccountID: "acc-1", Type: domain.SignalUsageSpike, Category: domain.CategoryExpansion, Timestamp: fresh},
			{AccountID: "acc-1", Type: domain.SignalNearingPaywall, Category: domain.CategoryExpansion, Timestamp: fresh},
			{AccountID: "acc-1", Type: domain.SignalTrialEnding, Category: domain.CategoryExpansion, Timestamp: fresh},
			{AccountID: "acc-1", Type: domain.SignalDecisionMakerSignup, Category: domain.CategoryExpansion, Timestamp: fresh},
		},
	}}
	emitter := &fakeEmitter{}

	job := NewScoreRefreshJob(&fakeAccountLister{accounts: []domain.Account{account}}, signals, &fakeScoreWriter{}, testEngine(t), emitter, 10, zerolog.Nop())
	job.now = func() time.Time { return now }
	job.Run()

	// With no churn signals the churn-risk score sits at the midpoint (50),
	// which is above the 30 threshold, so both opportunity types fire.
	found := emitter.ofType(events.OpportunityFound)
	require.Len(t, found, 2)

	byType := map[string]events.OpportunityFoundData{}
	for _, e := range found {
		data, ok := e.data.(events.OpportunityFoundData)
		require.True(t, ok)
		byType[data.Type] = data
	}

	expansion := byType[string(scoring.OpportunityExpansion)]
	assert.GreaterOrEqual(t, expansion.Score, 70.0)
	assert.InDelta(t, 24000*0.3, expansion.EstimatedValue, 1e-9)

	rescue := byType[string(scoring.OpportunityChurnRescue)]
	assert.Equal(t, 50.0, rescue.Score)
	assert.InDelta(t, 24000*1.0, rescue.EstimatedValue, 1e-9)
}

func TestScoreRefreshJob_BoundsSignalQueryToMaxAge(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	account := domain.Account{ID: "acc-1", WorkspaceID: "ws-1", Status: domain.StatusActive}
	reader := &fakeSignalReader{}

	job := NewScoreRefreshJob(&fakeAccountLister{accounts: []domain.Account{account}}, reader, &fakeScoreWriter{}, testEngine(t), nil, 10, zerolog.Nop())
	job.now = func() time.Time { return now }
	job.Run()

	// DefaultConfig caps signal age at 90 days; the history query carries
	// the same horizon.
	assert.Equal(t, now.AddDate(0, 0, -90), reader.since)
}

func TestScoreRefreshJob_IsolatesAccountFailures(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	accounts := []domain.Account{
		{ID: "acc-1", WorkspaceID: "ws-1", Status: domain.StatusActive},
		{ID: "acc-2", WorkspaceID: "ws-1", Status: domain.StatusActive},
	}
	writer := &fakeScoreWriter{failFor: "acc-1"}

	job := NewScoreRefreshJob(&fakeAccountLister{accounts: accounts}, &fakeSignalReader{}, writer, testEngine(t), nil, 10, zerolog.Nop())
	job.now = func() time.Time { return now }
	job.Run()

	require.Len(t, writer.records, 3, "acc-2 still refreshed")
	for _, record := range writer.records {
		assert.Equal(t, "acc-2", record.AccountID)
	}
}

func TestScoreRefreshJob_ListFailureIsLoggedNotFatal(t *testing.T) {
	job := NewScoreRefreshJob(&fakeAccountLister{err: errors.New("db down")}, &fakeSignalReader{}, &fakeScoreWriter{}, testEngine(t), nil, 10, zerolog.Nop())

	assert.NotPanics(t, job.Run)
}

func TestMaintenanceJob(t *testing.T) {
	db := &fakeMaintainer{}

	job := NewMaintenanceJob(db, zerolog.Nop())
	assert.Equal(t, "database_maintenance", job.Name())
	job.Run()

	assert.Equal(t, 1, db.checks)
	assert.Equal(t, 1, db.checkpoints)
}

func TestMaintenanceJob_FailedHealthCheckSkipsCheckpoint(t *testing.T) {
	db := &fakeMaintainer{healthErr: errors.New("malformed database")}

	job := NewMaintenanceJob(db, zerolog.Nop())
	job.Run()

	assert.Equal(t, 1, db.checks)
	assert.Equal(t, 0, db.checkpoints)
}

func TestMaintenanceJob_CheckpointFailureIsLoggedNotFatal(t *testing.T) {
	db := &fakeMaintainer{checkpointErr: errors.New("database is locked")}

	job := NewMaintenanceJob(db, zerolog.Nop())
	assert.NotPanics(t, job.Run)
	assert.Equal(t, 1, db.checkpoints)
}
