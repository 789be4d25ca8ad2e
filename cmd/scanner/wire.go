package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"scanner/api"
	"scanner/internal"
	"scanner/internal/app"
	"scanner/internal/logger"
	"scanner/internal/repository"
	l1_service "scanner/internal/service/l1"
	l2_service "scanner/internal/service/l2"
	l3_service "scanner/internal/service/l3"
)

type dependencies struct {
	ApiHandler api.ApiHandler
	Db         *sql.DB
}

func (d dependencies) Close() {
	if d.Db != nil {
		if err := d.Db.Close(); err != nil {
			d.ApiHandler.Logger.Warnw("failed to close db", "error", err)
		}
	}
}

func initializeDependencies() (*dependencies, error) {
	// a missing .env is fine; flags and real env vars still apply
	_ = godotenv.Load()

	log := logger.New()

	settings, err := internal.LoadSettings(settingsPath)
	if err != nil {
		return nil, err
	}

	deps := &dependencies{}

	var snapshotRepository repository.ScoreSnapshotRepository
	if withSnapshots {
		secrets, err := internal.LoadSecrets()
		if err != nil {
			return nil, fmt.Errorf("snapshots enabled but secrets unavailable: %w", err)
		}
		dbConn, err := sql.Open("postgres", secrets.Db.ToConnectionStr())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to db: %w", err)
		}
		deps.Db = dbConn
		snapshotRepository = repository.NewScoreSnapshotRepository(dbConn)
		if err := snapshotRepository.EnsureSchema(context.Background()); err != nil {
			return nil, err
		}
	}

	regimeCache := internal.NewRegimeCache(
		time.Duration(settings.RegimeCacheMinutes)*time.Minute,
		time.Now,
	)
	benchmarkService := l1_service.NewBenchmarkService(
		repository.NewYahooBenchmarkRepository(),
		regimeCache,
		log,
	)

	scanHandler := app.ScanHandler{
		UniverseRepository: repository.NewCsvUniverseRepository(universePath),
		BenchmarkService:   benchmarkService,
		ScoringService:     l2_service.NewScoringService(settings, log),
		SnapshotRepository: snapshotRepository,
		Settings:           settings,
		Logger:             log,
	}

	rebalanceHandler := app.RebalanceHandler{
		ScanHandler:         scanHandler,
		HoldingsRepository:  repository.NewCsvHoldingsRepository(stocksPath, cryptoPath, log),
		SymbolMapRepository: repository.NewCsvSymbolMapRepository(symbolMapPath),
		PortfolioService:    l3_service.NewPortfolioService(log),
		MatcherService:      l3_service.NewMatcherService(log),
		RebalanceService:    l3_service.NewRebalanceService(log),
		Settings:            settings,
		Logger:              log,
	}

	deps.ApiHandler = api.ApiHandler{
		ScanHandler:      scanHandler,
		RebalanceHandler: rebalanceHandler,
		Logger:           log,
	}
	return deps, nil
}
