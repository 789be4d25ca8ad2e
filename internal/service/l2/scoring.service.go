package l2_service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"scanner/internal"
	"scanner/internal/domain"
)

// ScoringService turns a raw universe into one ScoreResult per asset. A
// failing row is captured as an ERROR result; only a cancelled context
// aborts the batch.
type ScoringService interface {
	ScoreUniverse(ctx context.Context, records []domain.AssetRecord, regimes map[domain.AssetClass]internal.RegimeResult) ([]domain.ScoreResult, error)
	ScoreRecord(record domain.AssetRecord, universe []domain.AssetRecord, stats *internal.UniverseStats, regimes map[domain.AssetClass]internal.RegimeResult) domain.ScoreResult
}

type scoringServiceHandler struct {
	Settings internal.Settings
	Logger   *zap.SugaredLogger
}

func NewScoringService(settings internal.Settings, logger *zap.SugaredLogger) ScoringService {
	return scoringServiceHandler{
		Settings: settings,
		Logger:   logger,
	}
}

type workResult struct {
	index  int
	result domain.ScoreResult
}

// ScoreUniverse builds the cross-sectional distributions once, then scores
// every record on a bounded worker pool. Workers only read the shared
// immutable stats and write their own result slot, so no locking is needed
// beyond the channels.
func (h scoringServiceHandler) ScoreUniverse(ctx context.Context, records []domain.AssetRecord, regimes map[domain.AssetClass]internal.RegimeResult) ([]domain.ScoreResult, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("cannot score an empty universe")
	}

	stats := internal.BuildUniverseStats(records)

	inputCh := make(chan int, len(records))
	resultCh := make(chan workResult, len(records))
	numGoroutines := 10
	if numGoroutines > len(records) {
		numGoroutines = len(records)
	}

	for i := range records {
		inputCh <- i
	}
	close(inputCh)

	var wg sync.WaitGroup
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range inputCh {
				if ctx.Err() != nil {
					return
				}
				// resultCh is buffered for the whole batch, sends never block
				resultCh <- workResult{
					index:  idx,
					result: h.ScoreRecord(records[idx], records, stats, regimes),
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	out := make([]domain.ScoreResult, len(records))
	received := 0
	for res := range resultCh {
		out[res.index] = res.result
		received++
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if received != len(records) {
		return nil, fmt.Errorf("scored %d of %d records", received, len(records))
	}

	errors := 0
	for _, r := range out {
		if r.Status == domain.ScoreStatusError {
			errors++
		}
	}
	if errors > 0 {
		h.Logger.Warnw("universe scored with row errors", "total", len(out), "errors", errors)
	}

	return out, nil
}

// ScoreRecord scores one asset against the prebuilt stats. It never returns
// an error: any failure is folded into the result's status so one bad row
// cannot sink the batch.
func (h scoringServiceHandler) ScoreRecord(record domain.AssetRecord, universe []domain.AssetRecord, stats *internal.UniverseStats, regimes map[domain.AssetClass]internal.RegimeResult) (out domain.ScoreResult) {
	out = domain.ScoreResult{Symbol: record.Symbol}

	defer func() {
		if r := recover(); r != nil {
			out.FinalScore = nil
			out.Err = fmt.Sprintf("panic scoring %s: %v", record.Symbol, r)
			out.Status = domain.ScoreStatusError
		}
	}()

	if record.Symbol == "" {
		out.Status = domain.ScoreStatusNA
		return out
	}

	class := record.Class()
	regime, ok := regimes[class]
	if !ok {
		regime = internal.NewRegimeResult(class, nil)
	}

	factors := buildFactorVector(record, stats, h.Settings.Norm)

	scores := internal.ComputeScores(
		factors.Opportunity,
		factors.Risk,
		h.Settings.OpportunityWeights,
		h.Settings.RiskWeights,
		regime.Params,
	)

	penalty := internal.ComputeDiversificationPenalty(record, universe, h.Settings.Diversification)
	final := internal.Clamp(scores.FinalScore-penalty.Points, 0, 100)

	confidence := internal.ComputeConfidence(factors, regime.Regime, h.Settings.Confidence)

	out.FinalScore = &final
	out.OpportunityScore = scores.OpportunityScore
	out.RiskScore = scores.RiskScore
	out.ConfidenceScore = confidence.Score
	out.ConfidenceLabel = confidence.Label
	out.ConfidenceBreakdown = confidence.Breakdown
	out.DiversificationPenalty = penalty.Points
	out.Factors = factors
	out.Meta = domain.ScoreMeta{
		AssetClass:     class,
		Regime:         string(regime.Regime),
		Benchmark:      regime.Benchmark,
		BenchmarkTrend: regime.Trend200,
		OppWeight:      regime.Params.OppWeight,
		RiskWeight:     regime.Params.RiskWeight,
		RiskMultiplier: regime.Params.RiskMultiplier,
	}
	out.Status = domain.ClassifyScoreStatus(out.FinalScore, out.Err, class == domain.AssetClassCrypto)

	return out
}

// RankBySymbolScore sorts results descending by final score, nil scores
// last. Ties break on symbol for deterministic output.
func RankBySymbolScore(results []domain.ScoreResult) []domain.ScoreResult {
	ranked := make([]domain.ScoreResult, len(results))
	copy(ranked, results)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i].FinalScore, ranked[j].FinalScore
		if a == nil && b == nil {
			return ranked[i].Symbol < ranked[j].Symbol
		}
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		if *a != *b {
			return *a > *b
		}
		return ranked[i].Symbol < ranked[j].Symbol
	})
	return ranked
}
