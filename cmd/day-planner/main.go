package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/belphemur/day-planner/internal/clock"
	"github.com/belphemur/day-planner/internal/config"
	"github.com/belphemur/day-planner/internal/database"
	"github.com/belphemur/day-planner/internal/handlers"
	"github.com/belphemur/day-planner/internal/logging"
	"github.com/belphemur/day-planner/internal/planner"
	"github.com/belphemur/day-planner/internal/retention"
	"github.com/belphemur/day-planner/internal/schedule"
	appSignals "github.com/belphemur/day-planner/internal/signals"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Determine if we're in development mode
	isDev := os.Getenv("ENV") != "production"

	// Initialize logging
	logging.Initialize(isDev)

	logger := logging.GetLogger("main")

	logger.Info().
		Str("version", version).
		Str("commit", commit).
		Str("build_date", date).
		Msg("Starting Day Planner")

	// Create context that's canceled on SIGINT/SIGTERM
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info().Str("signal", sig.String()).Msg("Received signal, initiating shutdown")
		cancel()
	}()

	if err := run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Application run failed")
	}
}

func run(ctx context.Context) error {
	logger := logging.GetLogger("main")

	// Get config file path from environment or use default
	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		configPath = "configs/planner.toml"
		if _, err := os.Stat(configPath); err != nil {
			// No config file at all is fine, defaults and env cover everything
			configPath = ""
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error().Err(err).Str("config_path", configPath).Msg("Failed to load configuration")
		return err
	}

	// Set log level from configuration
	logging.SetLogLevel(cfg.Service.LogLevel)
	logger.Info().Str("log_level", cfg.Service.LogLevel).Msg("Log level set")

	loc, err := cfg.Location()
	if err != nil {
		logger.Error().Err(err).Str("timezone", cfg.Planning.Timezone).Msg("Failed to resolve planning timezone")
		return err
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(cfg.Service.StateFile), 0755); err != nil {
		logger.Error().Err(err).Str("path", filepath.Dir(cfg.Service.StateFile)).Msg("Failed to create data directory")
		return err
	}

	// Initialize database
	dbOpts := database.SQLiteOptions{
		Path:        cfg.Service.StateFile,
		Mode:        "rwc",
		Cache:       database.CacheShared,
		Journal:     database.JournalWAL,
		ForeignKeys: true,
		AutoVacuum:  "incremental",
		BusyTimeout: 5000,
		Synchronous: database.SynchronousNormal,
	}
	db, err := database.New(dbOpts)
	if err != nil {
		wrappedErr := fmt.Errorf("failed to initialize database: %w", err)
		logger.Error().Err(wrappedErr).Str("db_path", cfg.Service.StateFile).Msg("Database initialization failed")
		return wrappedErr
	}
	defer db.Close()

	// Initialize database schema
	if err := db.MigrateDatabase(); err != nil {
		wrappedErr := fmt.Errorf("failed to initialize database schema: %w", err)
		logger.Error().Err(wrappedErr).Msg("Database schema initialization failed")
		return wrappedErr
	}

	store := schedule.NewStore(db)
	clk := clock.SystemClock{}
	p := planner.New(store, clk, loc)

	// Nightly cleanup of records past the retention period
	retentionSvc := retention.NewService(store, clk, cfg.Planning.RetentionDays)
	if err := retentionSvc.Start(); err != nil {
		wrappedErr := fmt.Errorf("failed to start retention service: %w", err)
		logger.Error().Err(wrappedErr).Msg("Retention service startup failed")
		return wrappedErr
	}
	defer retentionSvc.Stop()

	// Log planning outcomes without coupling the planner to the log pipeline
	appSignals.OnPlanCompleted(func(_ context.Context, data appSignals.PlanCompletedData) {
		signalLogger := logging.GetLogger("signal-plan-completed")
		signalLogger.Info().
			Str("user_id", data.UserID).
			Str("first_task", data.FirstTaskID).
			Int("placed", data.PlacedCount).
			Int("dropped", data.DroppedCount).
			Bool("replan", data.Replan).
			Msg("Planning pass completed")
	}, "main-plan-completed-handler")

	appSignals.OnScheduleCleared(func(_ context.Context, data appSignals.ScheduleClearedData) {
		signalLogger := logging.GetLogger("signal-schedule-cleared")
		signalLogger.Info().
			Str("user_id", data.UserID).
			Bool("day_only", data.DayOnly).
			Msg("Schedule cleared")
	}, "main-schedule-cleared-handler")

	// Register routes
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	handlers.New(p, cfg.Planning.MaxTasksPerRequest).Routes(r)
	r.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Service.Port),
		Handler: r,
	}

	go func() {
		logger.Info().Int("port", cfg.Service.Port).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("HTTP server error")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Context cancelled, initiating shutdown sequence")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	} else {
		logger.Info().Msg("HTTP server shut down gracefully")
	}
	logger.Info().Msg("Shutdown complete")
	return nil
}
