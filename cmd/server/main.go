// Package main is the entry point for the Fundwatch fund reporting service.
// It reconciles broker export files against the cash-flow ledger to produce
// per-unit daily returns, served over a REST API with a time-sliced cache.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/aristath/fundwatch/internal/cache"
	"github.com/aristath/fundwatch/internal/config"
	"github.com/aristath/fundwatch/internal/database"
	"github.com/aristath/fundwatch/internal/locator"
	"github.com/aristath/fundwatch/internal/market_hours"
	"github.com/aristath/fundwatch/internal/modules/assets"
	"github.com/aristath/fundwatch/internal/modules/cashflow"
	"github.com/aristath/fundwatch/internal/modules/returns"
	"github.com/aristath/fundwatch/internal/modules/summary"
	"github.com/aristath/fundwatch/internal/reliability"
	"github.com/aristath/fundwatch/internal/scheduler"
	"github.com/aristath/fundwatch/internal/server"
	"github.com/aristath/fundwatch/pkg/logger"
)

func main() {
	// Load configuration first to get log level
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	log.Info().Msg("Starting Fundwatch")

	// Ledger database: cash flows must survive power loss
	ledgerDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "ledger.db"),
		Profile: database.ProfileLedger,
		Name:    "ledger",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open ledger database")
	}
	defer ledgerDB.Close()

	// Cache database: everything in it can be recomputed from exports
	cacheDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "cache.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open cache database")
	}
	defer cacheDB.Close()

	for _, db := range []*database.DB{ledgerDB, cacheDB} {
		if err := db.Migrate(); err != nil {
			log.Fatal().Err(err).Str("database", db.Name()).Msg("Failed to migrate database")
		}
	}

	// Wire services bottom-up: locator -> repositories -> services
	loc := locator.New(cfg.Sources, log)
	cashFlowRepo := cashflow.NewRepository(ledgerDB.Conn(), log)
	returnsService := returns.NewService(loc, cashFlowRepo, log)
	summaryService := summary.NewService(loc, returnsService, cashFlowRepo, log)
	positionsService := assets.NewPositionsService(loc, log)

	calendar := market_hours.NewCalendar(time.Local)
	cacheRepo := cache.NewRepository(cacheDB.Conn(), log)
	cacheService := cache.NewService(cacheRepo, loc, calendar, market_hours.SystemClock{}, log)

	// Purge stale cache entries left over from the previous run
	cleanupJob := cache.NewCleanupJob(cacheService, log)
	if err := cleanupJob.Run(); err != nil {
		log.Warn().Err(err).Msg("Startup cache cleanup failed")
	}

	// Background jobs: daily cache cleanup, weekly backup when configured
	sched := scheduler.New(log)
	if err := sched.AddJob("0 30 3 * * *", cleanupJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register cache cleanup job")
	}

	if cfg.Backup.Enabled {
		s3Client, err := reliability.NewS3Client(cfg.Backup, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create backup client")
		}

		backupService := reliability.NewBackupService(
			s3Client,
			map[string]*database.DB{"ledger": ledgerDB, "cache": cacheDB},
			cfg.DataDir,
			cfg.Backup.Retention,
			log,
		)
		backupJob := reliability.NewBackupJob(backupService, log)
		if err := sched.AddJob("0 0 2 * * SUN", backupJob); err != nil {
			log.Fatal().Err(err).Msg("Failed to register backup job")
		}
	} else {
		log.Info().Msg("Backups disabled (no credentials configured)")
	}

	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Log:              log,
		Config:           cfg,
		LedgerDB:         ledgerDB,
		CacheDB:          cacheDB,
		CashFlowRepo:     cashFlowRepo,
		ReturnsService:   returnsService,
		CacheService:     cacheService,
		SummaryService:   summaryService,
		PositionsService: positionsService,
		Port:             cfg.Port,
		DevMode:          cfg.DevMode,
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Int("sources", len(cfg.Sources)).Msg("Server started")

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	// Checkpoint the ledger WAL so the database file is self-contained on disk
	if err := ledgerDB.WALCheckpoint("TRUNCATE"); err != nil {
		log.Warn().Err(err).Msg("Ledger WAL checkpoint failed")
	}

	log.Info().Msg("Shutdown complete")
}
