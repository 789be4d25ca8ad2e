package internal

import (
	"testing"

	"github.com/stretchr/testify/require"

	"scanner/internal/domain"
)

func fullyObservedFactors() domain.FactorVector {
	factors := domain.NewFactorVector()
	factors.Opportunity = map[string]float64{
		"growth":            0.9,
		"roe":               0.85,
		"margin":            0.8,
		"relative_strength": 0.8,
		"trend_200dma":      0.9,
	}
	factors.Risk = map[string]float64{
		"volatility":     0.2,
		"max_drawdown":   0.3,
		"debt_to_equity": 0.1,
		"liquidity_risk": 0.2,
	}
	for name := range factors.Opportunity {
		factors.Observed[name] = true
	}
	for name := range factors.Risk {
		factors.Observed[name] = true
	}
	return factors
}

func Test_ComputeConfidence(t *testing.T) {
	cfg := DefaultConfidenceConfig()

	t.Run("strong observed vector in a bull market", func(t *testing.T) {
		out := ComputeConfidence(fullyObservedFactors(), RegimeBull, cfg)

		// all 7 core factors observed
		require.InDelta(t, 1.0, out.Breakdown.Coverage, 1e-9)
		// every opportunity factor above 0.7
		require.InDelta(t, 1.0, out.Breakdown.Confluence, 1e-9)
		// every risk factor below 0.6
		require.InDelta(t, 1.0, out.Breakdown.RiskClean, 1e-9)
		// mean of relative_strength and trend_200dma
		require.InDelta(t, 0.85, out.Breakdown.RegimeAlign, 1e-9)
		require.InDelta(t, 0.8, out.Breakdown.Liquidity, 1e-9)

		require.InDelta(t, 95.0, out.Score, 1e-9)
		require.Equal(t, "HIGH", out.Label)
	})

	t.Run("unobserved vector scores low", func(t *testing.T) {
		factors := domain.NewFactorVector()
		// filler values present but nothing observed
		factors.Opportunity["growth"] = 0.5
		factors.Risk["volatility"] = 0.5

		out := ComputeConfidence(factors, RegimeBull, cfg)
		require.Equal(t, 0.0, out.Breakdown.Coverage)
		require.Equal(t, 0.0, out.Breakdown.Confluence)
		require.Equal(t, 0.0, out.Breakdown.RiskClean)
		require.Equal(t, 0.5, out.Breakdown.RegimeAlign)
		require.Equal(t, 0.5, out.Breakdown.Liquidity)
		require.InDelta(t, 15.0, out.Score, 1e-9)
		require.Equal(t, "LOW", out.Label)
	})

	t.Run("bear market rewards defensive quality", func(t *testing.T) {
		factors := fullyObservedFactors()
		factors.Risk["volatility"] = 0.2
		factors.Opportunity["roe"] = 0.9
		factors.Opportunity["margin"] = 0.8

		out := ComputeConfidence(factors, RegimeBear, cfg)
		// 0.4*(1-0.2) + 0.3*0.9 + 0.3*0.8
		require.InDelta(t, 0.83, out.Breakdown.RegimeAlign, 1e-9)
	})

	t.Run("neutral market alignment is flat", func(t *testing.T) {
		out := ComputeConfidence(fullyObservedFactors(), RegimeNeutral, cfg)
		require.Equal(t, 0.5, out.Breakdown.RegimeAlign)
	})

	t.Run("labels follow thresholds", func(t *testing.T) {
		require.Equal(t, "HIGH", confidenceLabel(75, cfg))
		require.Equal(t, "MED", confidenceLabel(74.9, cfg))
		require.Equal(t, "MED", confidenceLabel(50, cfg))
		require.Equal(t, "LOW", confidenceLabel(49.9, cfg))
	})
}
