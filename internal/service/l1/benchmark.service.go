package l1_service

import (
	"math"

	"go.uber.org/zap"

	"scanner/internal"
	"scanner/internal/domain"
	"scanner/internal/repository"
)

// lookback window requested from the price source. Generous enough to
// yield 200 trading-day closes.
const benchmarkLookbackDays = 420

// BenchmarkService resolves the market regime per asset class from a
// benchmark's trend against its 200-day average. Results are cached for the
// configured TTL so one scan hits the price source at most once per class.
type BenchmarkService interface {
	GetRegime(class domain.AssetClass) (internal.RegimeResult, error)
	GetRegimes(classes []domain.AssetClass) (map[domain.AssetClass]internal.RegimeResult, error)
}

type benchmarkServiceHandler struct {
	BenchmarkRepository repository.BenchmarkRepository
	Cache               *internal.RegimeCache
	Logger              *zap.SugaredLogger
}

func NewBenchmarkService(benchmarkRepository repository.BenchmarkRepository, cache *internal.RegimeCache, logger *zap.SugaredLogger) BenchmarkService {
	return benchmarkServiceHandler{
		BenchmarkRepository: benchmarkRepository,
		Cache:               cache,
		Logger:              logger,
	}
}

func (h benchmarkServiceHandler) GetRegime(class domain.AssetClass) (internal.RegimeResult, error) {
	return h.Cache.Get(class, h.fetchRegime)
}

func (h benchmarkServiceHandler) GetRegimes(classes []domain.AssetClass) (map[domain.AssetClass]internal.RegimeResult, error) {
	out := map[domain.AssetClass]internal.RegimeResult{}
	for _, class := range classes {
		if _, ok := out[class]; ok {
			continue
		}
		regime, err := h.GetRegime(class)
		if err != nil {
			return nil, err
		}
		out[class] = regime
	}
	return out, nil
}

func (h benchmarkServiceHandler) fetchRegime(class domain.AssetClass) (internal.RegimeResult, error) {
	benchmark := internal.RegimeBenchmark(class)
	closes, err := h.BenchmarkRepository.DailyCloses(benchmark, benchmarkLookbackDays)
	if err != nil {
		return internal.RegimeResult{}, err
	}

	trend := Trend200FromCloses(closes)
	result := internal.NewRegimeResult(class, trend)
	h.Logger.Infow("market regime resolved",
		"assetClass", class,
		"benchmark", benchmark,
		"regime", result.Regime,
		"trend200", trend,
	)
	return result, nil
}

// Trend200FromCloses computes last close vs the 200-day simple moving
// average, as a fraction (0.08 = 8% above). Fewer than 200 closes yields
// nil, which classifies as neutral.
func Trend200FromCloses(closes []float64) *float64 {
	const window = 200
	finite := make([]float64, 0, len(closes))
	for _, c := range closes {
		if !math.IsNaN(c) && !math.IsInf(c, 0) {
			finite = append(finite, c)
		}
	}
	if len(finite) < window {
		return nil
	}

	tail := finite[len(finite)-window:]
	sum := 0.0
	for _, c := range tail {
		sum += c
	}
	sma := sum / float64(window)
	last := finite[len(finite)-1]
	if sma <= 0 {
		return nil
	}

	trend := (last / sma) - 1.0
	return &trend
}
