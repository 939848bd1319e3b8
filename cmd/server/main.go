package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/asimoes/retrosim/internal/clients/yahoo"
	"github.com/asimoes/retrosim/internal/config"
	"github.com/asimoes/retrosim/internal/database"
	"github.com/asimoes/retrosim/internal/domain"
	"github.com/asimoes/retrosim/internal/modules/allocation"
	"github.com/asimoes/retrosim/internal/modules/fxrates"
	"github.com/asimoes/retrosim/internal/modules/history"
	"github.com/asimoes/retrosim/internal/modules/simulation"
	"github.com/asimoes/retrosim/internal/modules/snapshot"
	"github.com/asimoes/retrosim/internal/modules/valuation"
	"github.com/asimoes/retrosim/internal/scheduler"
	"github.com/asimoes/retrosim/internal/server"
	"github.com/asimoes/retrosim/pkg/logger"
)

// snapshotRefreshSchedule runs after the US close on weekdays.
const snapshotRefreshSchedule = "0 30 22 * * MON-FRI"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(logger.Config{Level: "info", Pretty: true})
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting retrosim")

	// Initialize snapshot database
	db, err := database.New(cfg.SnapshotDBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Wire the pipeline
	companies := config.DefaultCompanies()
	market := yahoo.NewClient(log)
	snapshots := snapshot.NewRepository(db, log)
	cache := history.NewFetchCache(cfg.HistoryCacheDir, log)

	sim := simulation.NewService(
		companies,
		snapshots,
		fxrates.NewService(config.DefaultCurrencyPairs(), market, log),
		allocation.NewAllocator(log),
		history.NewService(market, cache, log),
		valuation.NewService(log),
		log,
	)

	// Initialize scheduler
	sched := scheduler.New(log)
	sched.Start()
	defer sched.Stop()

	// Register background jobs
	if err := registerJobs(sched, snapshots, market, companies, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("Failed to register jobs")
	}

	// Initialize HTTP server
	srv := server.New(server.Config{
		Port:       cfg.Port,
		Log:        log,
		Config:     cfg,
		Simulation: sim,
		DevMode:    cfg.DevMode,
	})

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

func registerJobs(
	sched *scheduler.Scheduler,
	snapshots *snapshot.Repository,
	market snapshot.MarketData,
	companies []domain.Company,
	cfg *config.Config,
	log zerolog.Logger,
) error {
	if !cfg.SnapshotRefresh {
		log.Info().Msg("Snapshot refresh disabled")
		return nil
	}

	capture := snapshot.NewCaptureService(snapshots, market, log)
	return sched.AddJob(snapshotRefreshSchedule, snapshot.NewRefreshJob(capture, companies, log))
}
