package detection

import (
	"context"
	"time"

	"github.com/avelara/beacon/internal/domain"
	"github.com/avelara/beacon/internal/events"
	"github.com/rs/zerolog"
)

// DetectorError records a failure isolated to one detector on one account.
type DetectorError struct {
	Detector string `json:"detector"`
	Message  string `json:"message"`
}

// AccountResult is the outcome of running detectors against one account.
// Partial results are always returned: a failing detector contributes an
// error, never aborts its siblings.
type AccountResult struct {
	AccountID string                  `json:"account_id"`
	Detected  []domain.DetectedSignal `json:"detected"`
	Persisted []domain.Signal         `json:"persisted"`
	Errors    []DetectorError         `json:"errors"`
}

// SweepResult aggregates a cross-account detection run.
type SweepResult struct {
	AccountsProcessed int             `json:"accounts_processed"`
	SignalsDetected   int             `json:"signals_detected"`
	SignalsPersisted  int             `json:"signals_persisted"`
	Errors            []DetectorError `json:"errors"`
}

// RunOptions narrows a detection run. An empty category runs every detector.
type RunOptions struct {
	Category domain.SignalCategory
}

// SweepOptions bounds a cross-account sweep.
type SweepOptions struct {
	Category domain.SignalCategory
	Limit    int
}

// DefaultSweepLimit bounds a sweep when the caller does not.
const DefaultSweepLimit = 100

// Runner executes registered detectors against accounts. Detector overrides
// are keyed by detector name and shallow-merged over each detector's
// defaults.
type Runner struct {
	now       func() time.Time
	registry  *Registry
	store     Store
	overrides map[string]Params
	emitter   EventEmitter
	log       zerolog.Logger
}

// NewRunner creates a detection runner.
func NewRunner(registry *Registry, store Store, overrides map[string]Params, log zerolog.Logger) *Runner {
	return &Runner{
		registry:  registry,
		store:     store,
		overrides: overrides,
		now:       time.Now,
		log:       log.With().Str("module", "detection").Logger(),
	}
}

// SetEventEmitter enables event publication for persisted signals. A nil
// emitter (the default) disables it.
func (r *Runner) SetEventEmitter(emitter EventEmitter) {
	r.emitter = emitter
}

// RunAccount runs the selected detectors against one account. Detector
// invocations are independent: an error in one is recorded against its name
// and the rest still run. A persistence failure is likewise recorded without
// dropping the detected signal from the result.
func (r *Runner) RunAccount(ctx context.Context, accountID string, opts RunOptions) AccountResult {
	result := AccountResult{AccountID: accountID}

	account, err := r.store.Account(ctx, accountID)
	if err != nil {
		result.Errors = append(result.Errors, DetectorError{
			Detector: "account_fetch",
			Message:  err.Error(),
		})
		return result
	}

	detectors := r.registry.List()
	if opts.Category != "" {
		detectors = r.registry.ByCategory(opts.Category)
	}

	now := r.now()
	for _, detector := range detectors {
		dctx := &Context{
			Store:       r.store,
			Account:     account,
			WorkspaceID: account.WorkspaceID,
			Params:      detector.DefaultParams().Merge(r.overrides[detector.Name()]),
			Now:         now,
		}

		detected, err := detector.Detect(ctx, dctx)
		if err != nil {
			r.log.Warn().
				Str("detector", detector.Name()).
				Str("account_id", accountID).
				Err(err).
				Msg("Detector failed")
			result.Errors = append(result.Errors, DetectorError{
				Detector: detector.Name(),
				Message:  err.Error(),
			})
			continue
		}
		if detected == nil {
			continue
		}

		result.Detected = append(result.Detected, *detected)

		persisted, err := r.store.InsertDetected(ctx, *detected)
		if err != nil {
			result.Errors = append(result.Errors, DetectorError{
				Detector: detector.Name(),
				Message:  "persist failed: " + err.Error(),
			})
			continue
		}
		result.Persisted = append(result.Persisted, persisted)

		if r.emitter != nil {
			r.emitter.Emit(events.SignalDetected, "detection", events.SignalDetectedData{
				SignalID:  persisted.ID,
				AccountID: persisted.AccountID,
				Type:      persisted.Type,
				Category:  string(persisted.Category),
				Value:     persisted.Value,
			})
		}

		r.log.Info().
			Str("detector", detector.Name()).
			Str("account_id", accountID).
			Str("signal_id", persisted.ID).
			Float64("value", persisted.Value).
			Msg("Signal detected")
	}

	return result
}

// RunSweep runs detectors across active accounts, bounded by the limit.
// Accounts are processed independently; the sweep stops early only when the
// caller's context is done.
func (r *Runner) RunSweep(ctx context.Context, opts SweepOptions) SweepResult {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultSweepLimit
	}

	var sweep SweepResult

	accounts, err := r.store.ListActive(ctx, limit)
	if err != nil {
		sweep.Errors = append(sweep.Errors, DetectorError{
			Detector: "account_list",
			Message:  err.Error(),
		})
		return sweep
	}

	for _, account := range accounts {
		if ctx.Err() != nil {
			break
		}

		result := r.RunAccount(ctx, account.ID, RunOptions{Category: opts.Category})
		sweep.AccountsProcessed++
		sweep.SignalsDetected += len(result.Detected)
		sweep.SignalsPersisted += len(result.Persisted)
		sweep.Errors = append(sweep.Errors, result.Errors...)
	}

	r.log.Info().
		Int("accounts", sweep.AccountsProcessed).
		Int("detected", sweep.SignalsDetected).
		Int("persisted", sweep.SignalsPersisted).
		Int("errors", len(sweep.Errors)).
		Msg("Detection sweep completed")

	return sweep
}
