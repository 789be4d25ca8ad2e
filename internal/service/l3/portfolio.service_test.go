package l3_service

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"scanner/internal"
	"scanner/internal/domain"
	"scanner/internal/util"
)

func portfolioTestInput(regime internal.Regime) BuildPortfolioInput {
	universe := []domain.AssetRecord{
		{Symbol: "AAA", AssetClass: domain.AssetClassStock, DollarVolume: util.FloatPointer(60_000_000)},
		{Symbol: "BBB", AssetClass: domain.AssetClassStock, DollarVolume: util.FloatPointer(60_000_000)},
		{Symbol: "CCC", AssetClass: domain.AssetClassStock, DollarVolume: util.FloatPointer(60_000_000)},
	}
	scores := []domain.ScoreResult{
		{Symbol: "AAA", FinalScore: util.FloatPointer(80), Status: domain.ScoreStatusOK},
		{Symbol: "BBB", FinalScore: util.FloatPointer(60), Status: domain.ScoreStatusOK},
		{Symbol: "CCC", FinalScore: util.FloatPointer(40), Status: domain.ScoreStatusOK},
	}
	return BuildPortfolioInput{
		Universe:    universe,
		Scores:      scores,
		StockRegime: internal.RegimeResult{Regime: regime},
		Config:      internal.DefaultPortfolioConfig(),
	}
}

func Test_portfolioServiceHandler_Build(t *testing.T) {
	handler := portfolioServiceHandler{Logger: zap.NewNop().Sugar()}

	t.Run("positions ordered by score", func(t *testing.T) {
		portfolio, err := handler.Build(portfolioTestInput(internal.RegimeBull))
		require.NoError(t, err)
		require.Len(t, portfolio.Positions, 3)
		require.Equal(t, []string{"AAA", "BBB", "CCC"}, portfolio.HeldSymbols())
	})

	t.Run("full allocation in a bull market", func(t *testing.T) {
		portfolio, err := handler.Build(portfolioTestInput(internal.RegimeBull))
		require.NoError(t, err)
		require.InDelta(t, 100.0, portfolio.TotalWeightPct(), 0.1)
		require.InDelta(t, 0.0, portfolio.Meta.CashPct, 0.1)
	})

	t.Run("neutral market caps equity exposure", func(t *testing.T) {
		portfolio, err := handler.Build(portfolioTestInput(internal.RegimeNeutral))
		require.NoError(t, err)
		require.LessOrEqual(t, portfolio.TotalWeightPct(), 70.0+0.1)
		require.InDelta(t, 30.0, portfolio.Meta.CashPct, 0.5)
		require.Equal(t, 70.0, portfolio.Meta.MaxEquityExposurePct)
	})

	t.Run("selection drops sub-threshold and non-OK scores", func(t *testing.T) {
		in := portfolioTestInput(internal.RegimeBull)
		in.Scores[1].Status = domain.ScoreStatusAvoid
		in.Scores[1].FinalScore = util.FloatPointer(0)
		in.Scores[2].FinalScore = util.FloatPointer(20) // below MinScore 30

		portfolio, err := handler.Build(in)
		require.NoError(t, err)
		require.Equal(t, []string{"AAA"}, portfolio.HeldSymbols())
	})

	t.Run("bear market only allocates conviction names", func(t *testing.T) {
		in := portfolioTestInput(internal.RegimeBear)
		in.Scores[1].FinalScore = util.FloatPointer(50) // at the bar, not over it
		in.Scores[2].FinalScore = util.FloatPointer(45)

		portfolio, err := handler.Build(in)
		require.NoError(t, err)
		require.Equal(t, []string{"AAA"}, portfolio.HeldSymbols())
	})

	t.Run("crypto can be excluded", func(t *testing.T) {
		in := portfolioTestInput(internal.RegimeBull)
		in.Universe = append(in.Universe, domain.AssetRecord{
			Symbol:       "ETH-USD",
			AssetClass:   domain.AssetClassCrypto,
			DollarVolume: util.FloatPointer(60_000_000),
		})
		in.Scores = append(in.Scores, domain.ScoreResult{
			Symbol:     "ETH-USD",
			FinalScore: util.FloatPointer(90),
			Status:     domain.ScoreStatusOK,
		})
		in.Config.AllowCrypto = false

		portfolio, err := handler.Build(in)
		require.NoError(t, err)
		require.NotContains(t, portfolio.HeldSymbols(), "ETH-USD")
	})

	t.Run("top-n truncation keeps the best", func(t *testing.T) {
		in := portfolioTestInput(internal.RegimeBull)
		in.Config.TopN = 2

		portfolio, err := handler.Build(in)
		require.NoError(t, err)
		require.Equal(t, []string{"AAA", "BBB"}, portfolio.HeldSymbols())
	})

	t.Run("illiquid names take a weight haircut", func(t *testing.T) {
		in := portfolioTestInput(internal.RegimeBull)
		in.Universe = []domain.AssetRecord{
			{Symbol: "LIQ", AssetClass: domain.AssetClassStock, DollarVolume: util.FloatPointer(60_000_000)},
			{Symbol: "ILLIQ", AssetClass: domain.AssetClassStock, DollarVolume: util.FloatPointer(500_000)},
		}
		in.Scores = []domain.ScoreResult{
			{Symbol: "LIQ", FinalScore: util.FloatPointer(70), Status: domain.ScoreStatusOK},
			{Symbol: "ILLIQ", FinalScore: util.FloatPointer(70), Status: domain.ScoreStatusOK},
		}

		portfolio, err := handler.Build(in)
		require.NoError(t, err)

		liq := portfolio.Position("LIQ")
		illiq := portfolio.Position("ILLIQ")
		require.NotNil(t, liq)
		require.NotNil(t, illiq)
		require.Greater(t, liq.WeightPct, illiq.WeightPct)
		require.Equal(t, 0.1, liq.LiquidityRisk)
		require.Equal(t, 0.9, illiq.LiquidityRisk)
	})

	t.Run("empty universe fails", func(t *testing.T) {
		in := portfolioTestInput(internal.RegimeBull)
		in.Universe = nil
		_, err := handler.Build(in)
		require.Error(t, err)
	})

	t.Run("no survivors fails", func(t *testing.T) {
		in := portfolioTestInput(internal.RegimeBull)
		in.Config.MinScore = 95
		_, err := handler.Build(in)
		require.Error(t, err)
		require.Contains(t, err.Error(), "no assets survived")
	})
}

func Test_weightCandidates(t *testing.T) {
	cfg := internal.DefaultPortfolioConfig()

	t.Run("weights stay above the floor", func(t *testing.T) {
		candidates := []candidate{
			{record: domain.AssetRecord{Symbol: "BIG", DollarVolume: util.FloatPointer(60_000_000)}, score: 99},
			{record: domain.AssetRecord{Symbol: "TINY", DollarVolume: util.FloatPointer(60_000_000)}, score: 30},
		}
		positions := weightCandidates(candidates, cfg)
		for _, p := range positions {
			require.GreaterOrEqual(t, p.WeightPct, cfg.MinPositionWeight*100)
		}
	})

	t.Run("raw and adjusted weights are reported", func(t *testing.T) {
		candidates := []candidate{
			{record: domain.AssetRecord{Symbol: "A", DollarVolume: util.FloatPointer(60_000_000)}, score: 50},
			{record: domain.AssetRecord{Symbol: "B", DollarVolume: util.FloatPointer(60_000_000)}, score: 50},
		}
		positions := weightCandidates(candidates, cfg)
		require.InDelta(t, 50.0, positions[0].RawWeightPct, 1e-9)
		// 10% liquidity haircut on the raw half
		require.InDelta(t, 45.0, positions[0].LiquidityAdjustedPct, 1e-9)
	})
}
