package l3_service

import (
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"scanner/internal"
	"scanner/internal/domain"
)

type BuildPortfolioInput struct {
	Universe    []domain.AssetRecord
	Scores      []domain.ScoreResult
	StockRegime internal.RegimeResult
	Config      internal.PortfolioConfig
}

// PortfolioService selects the top-scored candidates and turns them into a
// target portfolio with liquidity-adjusted, capped weights and
// regime-dependent exposure limits.
type PortfolioService interface {
	Build(in BuildPortfolioInput) (*domain.Portfolio, error)
}

type portfolioServiceHandler struct {
	Logger *zap.SugaredLogger
}

func NewPortfolioService(logger *zap.SugaredLogger) PortfolioService {
	return portfolioServiceHandler{Logger: logger}
}

type candidate struct {
	record domain.AssetRecord
	score  float64
}

func (h portfolioServiceHandler) Build(in BuildPortfolioInput) (*domain.Portfolio, error) {
	if len(in.Universe) == 0 {
		return nil, fmt.Errorf("cannot build portfolio from an empty universe")
	}

	cfg := in.Config
	candidates := h.selectCandidates(in)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no assets survived selection (minScore=%.1f, regime=%s)", cfg.MinScore, in.StockRegime.Regime)
	}

	positions := weightCandidates(candidates, cfg)

	equityCap := exposureCap(cfg.EquityExposure, in.StockRegime.Regime, 0.7)
	cryptoCap := exposureCap(cfg.CryptoExposure, in.StockRegime.Regime, 0.1)
	cashPct := applyExposureControl(positions, equityCap, cryptoCap)

	portfolio := &domain.Portfolio{
		Positions: positions,
		Meta: domain.PortfolioMeta{
			Regime:               string(in.StockRegime.Regime),
			CashPct:              round2(cashPct * 100),
			MaxEquityExposurePct: equityCap * 100,
			MaxCryptoExposurePct: cryptoCap * 100,
			CreatedAt:            time.Now().UTC(),
			Criteria: domain.SelectionCriteria{
				TopN:         cfg.TopN,
				MinScore:     cfg.MinScore,
				MaxPositions: cfg.MaxPositions,
				AllowCrypto:  cfg.AllowCrypto,
			},
		},
	}

	h.Logger.Infow("target portfolio built",
		"positions", len(positions),
		"cashPct", portfolio.Meta.CashPct,
		"regime", in.StockRegime.Regime,
	)
	return portfolio, nil
}

func (h portfolioServiceHandler) selectCandidates(in BuildPortfolioInput) []candidate {
	cfg := in.Config

	scoreBySymbol := map[string]float64{}
	for _, res := range in.Scores {
		if res.FinalScore != nil && res.Status == domain.ScoreStatusOK {
			scoreBySymbol[res.Symbol] = *res.FinalScore
		}
	}

	bearMarket := in.StockRegime.Regime == internal.RegimeBear

	candidates := []candidate{}
	for _, record := range in.Universe {
		score, ok := scoreBySymbol[record.Symbol]
		if !ok || score < cfg.MinScore {
			continue
		}
		// bear markets tighten the bar: only conviction names get allocated
		if bearMarket && score <= 50 {
			continue
		}
		if !cfg.AllowCrypto && record.IsCrypto() {
			continue
		}
		candidates = append(candidates, candidate{record: record, score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].record.Symbol < candidates[j].record.Symbol
	})

	limit := cfg.TopN
	if cfg.MaxPositions < limit {
		limit = cfg.MaxPositions
	}
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

// weightCandidates runs the weighting ladder: score-proportional raw
// weights, liquidity haircut, single-position ceiling, renormalize, floor,
// renormalize.
func weightCandidates(candidates []candidate, cfg internal.PortfolioConfig) []domain.Position {
	totalScore := 0.0
	for _, c := range candidates {
		totalScore += c.score
	}

	positions := make([]domain.Position, len(candidates))
	weights := make([]float64, len(candidates))
	for i, c := range candidates {
		liqRisk := domain.LiquidityRisk(c.record.DollarVolume)
		raw := c.score / totalScore
		adjusted := raw * (1 - liqRisk)
		weights[i] = math.Min(adjusted, cfg.MaxPositionWeight)

		positions[i] = domain.Position{
			Ticker:               c.record.Symbol,
			AssetClass:           c.record.Class(),
			Score:                c.score,
			LiquidityRisk:        liqRisk,
			RS3M:                 c.record.RS3M,
			Trend200:             c.record.Trend200,
			DollarVolume:         c.record.DollarVolume,
			RawWeightPct:         round2(raw * 100),
			LiquidityAdjustedPct: round2(adjusted * 100),
		}
	}

	normalize(weights)
	for i := range weights {
		if weights[i] < cfg.MinPositionWeight {
			weights[i] = cfg.MinPositionWeight
		}
	}
	normalize(weights)

	for i := range positions {
		positions[i].WeightPct = round2(weights[i] * 100)
	}
	return positions
}

// applyExposureControl scales stock and crypto weights down to their regime
// caps and returns the resulting cash fraction.
func applyExposureControl(positions []domain.Position, equityCap, cryptoCap float64) float64 {
	scaleClass(positions, domain.AssetClassStock, equityCap)
	scaleClass(positions, domain.AssetClassCrypto, cryptoCap)

	total := 0.0
	for _, p := range positions {
		total += p.WeightPct / 100
	}
	return 1.0 - total
}

func scaleClass(positions []domain.Position, class domain.AssetClass, cap float64) {
	total := 0.0
	for _, p := range positions {
		if p.AssetClass == class {
			total += p.WeightPct / 100
		}
	}
	if total <= cap || total == 0 {
		return
	}
	factor := cap / total
	for i := range positions {
		if positions[i].AssetClass == class {
			positions[i].WeightPct = round2(positions[i].WeightPct * factor)
		}
	}
}

func exposureCap(caps map[internal.Regime]float64, regime internal.Regime, fallback float64) float64 {
	if cap, ok := caps[regime]; ok {
		return cap
	}
	return fallback
}

func normalize(weights []float64) {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total == 0 {
		return
	}
	for i := range weights {
		weights[i] /= total
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
