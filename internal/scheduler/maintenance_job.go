package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// MaintenanceJob runs periodic database upkeep: an integrity health check
// followed by a WAL checkpoint. It satisfies cron.Job.
type MaintenanceJob struct {
	db      DatabaseMaintainer
	timeout time.Duration
	log     zerolog.Logger
}

// NewMaintenanceJob creates a database maintenance job.
func NewMaintenanceJob(db DatabaseMaintainer, log zerolog.Logger) *MaintenanceJob {
	return &MaintenanceJob{
		db:      db,
		timeout: 5 * time.Minute,
		log:     log.With().Str("job", "database_maintenance").Logger(),
	}
}

// Name returns the job name.
func (j *MaintenanceJob) Name() string {
	return "database_maintenance"
}

// Run performs one maintenance pass. A failed health check skips the
// checkpoint: a corrupt database should not be compacted.
func (j *MaintenanceJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	if err := j.db.HealthCheck(ctx); err != nil {
		j.log.Error().Err(err).Msg("Database health check failed")
		return
	}

	if err := j.db.WALCheckpoint(""); err != nil {
		j.log.Error().Err(err).Msg("WAL checkpoint failed")
		return
	}

	j.log.Info().Msg("Database maintenance finished")
}
