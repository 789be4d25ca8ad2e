package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"scanner/internal"
	"scanner/internal/domain"
	l1_service "scanner/internal/service/l1"
	l2_service "scanner/internal/service/l2"
	"scanner/internal/repository"
)

type ScanHandler struct {
	UniverseRepository repository.UniverseRepository
	BenchmarkService   l1_service.BenchmarkService
	ScoringService     l2_service.ScoringService

	// SnapshotRepository is optional; when nil, runs are not persisted.
	SnapshotRepository repository.ScoreSnapshotRepository

	Settings internal.Settings
	Logger   *zap.SugaredLogger
}

type ScanResult struct {
	RunID     uuid.UUID
	Universe  []domain.AssetRecord
	Regimes   map[domain.AssetClass]internal.RegimeResult
	Results   []domain.ScoreResult
	CreatedAt time.Time
}

// Scan runs the full scoring pipeline: load the universe, classify the
// market regime per asset class, score every record, and validate the
// score/status contract. A contract violation fails the whole run rather
// than shipping inconsistent rows downstream.
func (h ScanHandler) Scan(ctx context.Context) (*ScanResult, error) {
	universe, err := h.UniverseRepository.Load()
	if err != nil {
		return nil, err
	}
	h.Logger.Infow("universe loaded", "records", len(universe))

	regimes, err := h.BenchmarkService.GetRegimes([]domain.AssetClass{
		domain.AssetClassStock,
		domain.AssetClassCrypto,
	})
	if err != nil {
		return nil, err
	}
	for class, regime := range regimes {
		h.Logger.Infow("market regime",
			"assetClass", class,
			"benchmark", regime.Benchmark,
			"regime", regime.Regime,
			"trend200", fmtTrend(regime.Trend200),
		)
	}

	results, err := h.ScoringService.ScoreUniverse(ctx, universe, regimes)
	if err != nil {
		return nil, err
	}

	if err := internal.ValidateScoreContract(results); err != nil {
		return nil, err
	}

	results = l2_service.RankBySymbolScore(results)

	out := &ScanResult{
		RunID:     uuid.New(),
		Universe:  universe,
		Regimes:   regimes,
		Results:   results,
		CreatedAt: time.Now().UTC(),
	}

	if h.SnapshotRepository != nil {
		stockRegime := regimes[domain.AssetClassStock].Regime
		if err := h.SnapshotRepository.AddRun(ctx, out.RunID, string(stockRegime), results); err != nil {
			// persisting history must not kill the scan itself
			h.Logger.Warnw("failed to persist score snapshot", "error", err, "runId", out.RunID)
		} else if h.Settings.SnapshotRetentionDays > 0 {
			cutoff := out.CreatedAt.AddDate(0, 0, -h.Settings.SnapshotRetentionDays)
			pruned, err := h.SnapshotRepository.Prune(ctx, cutoff)
			if err != nil {
				h.Logger.Warnw("failed to prune score snapshots", "error", err)
			} else if pruned > 0 {
				h.Logger.Infow("pruned old score snapshots", "rows", pruned, "olderThan", cutoff)
			}
		}
	}

	return out, nil
}

func fmtTrend(trend *float64) interface{} {
	if trend == nil {
		return "n/a"
	}
	return *trend
}
