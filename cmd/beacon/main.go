// Package main is the entry point for the Beacon account signal intelligence
// engine. The daemon sweeps account activity through the detector registry,
// refreshes composite scores on a schedule, and persists everything to a
// single SQLite database.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/avelara/beacon/internal/config"
	"github.com/avelara/beacon/internal/database"
	"github.com/avelara/beacon/internal/domain"
	"github.com/avelara/beacon/internal/events"
	"github.com/avelara/beacon/internal/modules/accounts"
	"github.com/avelara/beacon/internal/modules/detection"
	"github.com/avelara/beacon/internal/modules/detection/detectors"
	"github.com/avelara/beacon/internal/modules/scores"
	"github.com/avelara/beacon/internal/modules/scoring"
	"github.com/avelara/beacon/internal/modules/signals"
	"github.com/avelara/beacon/internal/scheduler"
	"github.com/avelara/beacon/pkg/logger"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Aliases give the embedded repositories distinct field names so their
// method sets can promote into one detection.Store.
type (
	signalsRepo  = signals.Repository
	accountsRepo = accounts.Repository
	scoresRepo   = scores.Repository
)

// engineStore composes the three repositories into the store the detection
// framework consumes.
type engineStore struct {
	*signalsRepo
	*accountsRepo
	*scoresRepo
}

var _ detection.Store = (*engineStore)(nil)

// defaultGrades is the built-in grade table for the 0-100 scale.
func defaultGrades(score float64) domain.Grade {
	switch {
	case score >= 90:
		return domain.Grade{Grade: "A", Label: "Excellent", Color: "#22c55e"}
	case score >= 75:
		return domain.Grade{Grade: "B", Label: "Good", Color: "#84cc16"}
	case score >= 50:
		return domain.Grade{Grade: "C", Label: "Average", Color: "#eab308"}
	case score >= 30:
		return domain.Grade{Grade: "D", Label: "At Risk", Color: "#f97316"}
	default:
		return domain.Grade{Grade: "F", Label: "Critical", Color: "#ef4444"}
	}
}

func main() {
	once := flag.Bool("once", false, "run one sweep and score refresh, then exit")
	sweepSchedule := flag.String("sweep-schedule", "", "cron spec for detection sweeps (overrides BEACON_SWEEP_SCHEDULE)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *sweepSchedule != "" {
		cfg.SweepSchedule = *sweepSchedule
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Str("data_dir", cfg.DataDir).Msg("Starting Beacon")

	db, err := database.New(database.Config{
		Path: cfg.DatabasePath(),
		Name: "beacon",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply schema")
	}

	signalRepo := signals.NewRepository(db.Conn())
	accountRepo := accounts.NewRepository(db.Conn())
	scoreRepo := scores.NewRepository(db.Conn())
	store := &engineStore{
		signalsRepo:  signalRepo,
		accountsRepo: accountRepo,
		scoresRepo:   scoreRepo,
	}

	// Scoring configuration: built-in defaults merged with the optional YAML
	// overrides file, field by field.
	scoringCfg, err := scoring.LoadConfig(cfg.ScoringConfigPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.ScoringConfigPath).Msg("Failed to load scoring config")
	}
	engine := scoring.NewEngine(scoringCfg, defaultGrades, log)

	eventBus := events.NewManager(log)

	registry := detectors.NewPopulatedRegistry(log)
	runner := detection.NewRunner(registry, store, nil, log)
	runner.SetEventEmitter(eventBus)

	sweepJob := scheduler.NewDetectionSweepJob(runner, eventBus, detection.SweepOptions{Limit: cfg.SweepLimit}, log)
	refreshJob := scheduler.NewScoreRefreshJob(accountRepo, signalRepo, scoreRepo, engine, eventBus, cfg.SweepLimit, log)
	maintenanceJob := scheduler.NewMaintenanceJob(db, log)

	if *once {
		log.Info().Msg("Running single sweep and score refresh")
		sweepJob.Run()
		refreshJob.Run()
		return
	}

	scheduleJobs(cfg, log, sweepJob, refreshJob, maintenanceJob)
}

// scheduleJobs runs the recurring jobs on their cron schedules until the
// process receives an interrupt or termination signal.
func scheduleJobs(cfg *config.Config, log zerolog.Logger, sweepJob, refreshJob, maintenanceJob cron.Job) {
	c := cron.New()

	if _, err := c.AddJob(cfg.SweepSchedule, sweepJob); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.SweepSchedule).Msg("Invalid sweep schedule")
	}
	if _, err := c.AddJob(cfg.ScoreSchedule, refreshJob); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.ScoreSchedule).Msg("Invalid score schedule")
	}
	if _, err := c.AddJob(cfg.MaintenanceSchedule, maintenanceJob); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.MaintenanceSchedule).Msg("Invalid maintenance schedule")
	}

	c.Start()
	log.Info().
		Str("sweep_schedule", cfg.SweepSchedule).
		Str("score_schedule", cfg.ScoreSchedule).
		Str("maintenance_schedule", cfg.MaintenanceSchedule).
		Msg("Scheduler started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down")
	<-c.Stop().Done()
}
