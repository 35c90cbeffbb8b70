package scheduler

import (
	"context"
	"time"

	"github.com/avelara/beacon/internal/events"
	"github.com/avelara/beacon/internal/modules/detection"
	"github.com/rs/zerolog"
)

// DetectionSweepJob runs one detection sweep across active accounts. It
// satisfies cron.Job, so the daemon can schedule it directly.
type DetectionSweepJob struct {
	runner  SweepRunner
	emitter EventEmitter
	opts    detection.SweepOptions
	timeout time.Duration
	log     zerolog.Logger
}

// NewDetectionSweepJob creates a detection sweep job. A nil emitter disables
// event publication.
func NewDetectionSweepJob(runner SweepRunner, emitter EventEmitter, opts detection.SweepOptions, log zerolog.Logger) *DetectionSweepJob {
	return &DetectionSweepJob{
		runner:  runner,
		emitter: emitter,
		opts:    opts,
		timeout: 10 * time.Minute,
		log:     log.With().Str("job", "detection_sweep").Logger(),
	}
}

// Name returns the job name.
func (j *DetectionSweepJob) Name() string {
	return "detection_sweep"
}

// Run executes one sweep under the job timeout.
func (j *DetectionSweepJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	result := j.runner.RunSweep(ctx, j.opts)

	if j.emitter != nil {
		j.emitter.Emit(events.SweepCompleted, "scheduler", events.SweepCompletedData{
			AccountsProcessed: result.AccountsProcessed,
			SignalsDetected:   result.SignalsDetected,
			SignalsPersisted:  result.SignalsPersisted,
			Errors:            len(result.Errors),
		})
	}

	j.log.Info().
		Int("accounts", result.AccountsProcessed).
		Int("persisted", result.SignalsPersisted).
		Int("errors", len(result.Errors)).
		Msg("Detection sweep job finished")
}
