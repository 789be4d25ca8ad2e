package l3_service

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"scanner/internal"
	"scanner/internal/domain"
	"scanner/internal/util"
)

func targetPortfolio(positions ...domain.Position) *domain.Portfolio {
	return &domain.Portfolio{Positions: positions}
}

func targetPosition(ticker string, weight, score float64) domain.Position {
	return domain.Position{
		Ticker:        ticker,
		AssetClass:    domain.AssetClassStock,
		WeightPct:     weight,
		Score:         score,
		LiquidityRisk: 0.1,
	}
}

func currentHolding(ticker string, value int64) domain.Holding {
	return domain.Holding{
		Ticker:     ticker,
		AssetClass: domain.AssetClassStock,
		Value:      decimal.NewFromInt(value),
	}
}

func Test_rebalanceServiceHandler_BuildPlan(t *testing.T) {
	handler := rebalanceServiceHandler{Logger: zap.NewNop().Sugar()}
	neutral := internal.RegimeResult{Regime: internal.RegimeNeutral}
	bear := internal.RegimeResult{Regime: internal.RegimeBear}
	cfg := internal.DefaultRebalanceConfig()
	totalValue := decimal.NewFromInt(10_000)

	buildPlan := func(target *domain.Portfolio, current []domain.Holding, regime internal.RegimeResult) *domain.RebalancePlan {
		plan, err := handler.BuildPlan(BuildPlanInput{
			Target:     target,
			Current:    current,
			TotalValue: totalValue,
			Regime:     regime,
			Config:     cfg,
		})
		require.NoError(t, err)
		return plan
	}

	t.Run("classifies buys sells increases and reduces", func(t *testing.T) {
		target := targetPortfolio(
			targetPosition("NEW", 10, 75),
			targetPosition("MORE", 15, 70),
			targetPosition("LESS", 5, 60),
		)
		current := []domain.Holding{
			currentHolding("MORE", 1000), // 10%
			currentHolding("LESS", 1500), // 15%
			currentHolding("GONE", 1000), // 10%
		}

		plan := buildPlan(target, current, neutral)
		byTicker := map[string]domain.RebalanceAction{}
		for _, a := range plan.Actions {
			byTicker[a.Ticker] = a
		}

		require.Equal(t, domain.ActionBuy, byTicker["NEW"].Action)
		require.Equal(t, domain.ActionIncrease, byTicker["MORE"].Action)
		require.Equal(t, domain.ActionReduce, byTicker["LESS"].Action)
		require.Equal(t, domain.ActionSell, byTicker["GONE"].Action)

		require.InDelta(t, 10.0, byTicker["NEW"].DeltaPct, 1e-9)
		require.InDelta(t, -10.0, byTicker["GONE"].DeltaPct, 1e-9)
		require.True(t, byTicker["NEW"].DeltaValue.Equal(decimal.NewFromInt(1000)))
	})

	t.Run("small deltas are filtered", func(t *testing.T) {
		target := targetPortfolio(targetPosition("TINY", 10.5, 70))
		current := []domain.Holding{currentHolding("TINY", 1000)} // 10%, delta 0.5pp

		plan := buildPlan(target, current, neutral)
		require.Empty(t, plan.Actions)
	})

	t.Run("small trade values are filtered", func(t *testing.T) {
		smallBook := decimal.NewFromInt(1000)
		// 2pp of 1000 is 20 currency units, below MinTradeValue 25
		plan, err := handler.BuildPlan(BuildPlanInput{
			Target:     targetPortfolio(targetPosition("SMALL", 2, 70)),
			Current:    nil,
			TotalValue: smallBook,
			Regime:     neutral,
			Config:     cfg,
		})
		require.NoError(t, err)
		require.Empty(t, plan.Actions)
	})

	t.Run("turnover limit scales deltas proportionally", func(t *testing.T) {
		positions := []domain.Position{}
		for i := 0; i < 10; i++ {
			positions = append(positions, targetPosition(fmt.Sprintf("T%02d", i), 10, 70))
		}

		plan := buildPlan(targetPortfolio(positions...), nil, neutral)
		require.Len(t, plan.Actions, 10)

		// raw turnover 50pp against a 35pp limit scales by 0.7
		for _, a := range plan.Actions {
			require.InDelta(t, 7.0, a.DeltaPct, 1e-9)
			require.Contains(t, a.Reason, "scaled by 0.70")
		}
		require.InDelta(t, 0.35, plan.Meta.Turnover, 1e-6)
		require.Equal(t, cfg.TurnoverLimit, plan.Meta.TurnoverLimit)
	})

	t.Run("plan under the limit is untouched", func(t *testing.T) {
		plan := buildPlan(targetPortfolio(targetPosition("ONE", 10, 70)), nil, neutral)
		require.Len(t, plan.Actions, 1)
		require.InDelta(t, 10.0, plan.Actions[0].DeltaPct, 1e-9)
		require.InDelta(t, 0.05, plan.Meta.Turnover, 1e-9)
	})

	t.Run("bear market blocks non-conviction buys", func(t *testing.T) {
		weak := targetPosition("WEAK", 10, 60)
		weak.RS3M = util.FloatPointer(0.1)
		weak.Trend200 = util.FloatPointer(0.1)

		plan := buildPlan(targetPortfolio(weak), nil, bear)
		require.Empty(t, plan.Actions)
	})

	t.Run("bear market conviction buy needs momentum too", func(t *testing.T) {
		strong := targetPosition("STRONG", 10, 85)
		strong.RS3M = util.FloatPointer(-0.05)
		strong.Trend200 = util.FloatPointer(0.1)

		plan := buildPlan(targetPortfolio(strong), nil, bear)
		require.Empty(t, plan.Actions)
	})

	t.Run("bear market allows a qualified buy", func(t *testing.T) {
		strong := targetPosition("STRONG", 10, 85)
		strong.RS3M = util.FloatPointer(0.05)
		strong.Trend200 = util.FloatPointer(0.1)

		plan := buildPlan(targetPortfolio(strong), nil, bear)
		require.Len(t, plan.Actions, 1)
		require.Equal(t, domain.ActionBuy, plan.Actions[0].Action)
		require.Contains(t, plan.Actions[0].Reason, "bear market exception")
	})

	t.Run("bear market caps a held add to a trim", func(t *testing.T) {
		held := targetPosition("HELD", 15, 60)
		held.RS3M = util.FloatPointer(0.1)
		held.Trend200 = util.FloatPointer(0.1)

		plan := buildPlan(targetPortfolio(held), []domain.Holding{currentHolding("HELD", 1000)}, bear)
		require.Len(t, plan.Actions, 1)
		require.Equal(t, domain.ActionReduce, plan.Actions[0].Action)
		require.InDelta(t, -cfg.MinTradePct, plan.Actions[0].DeltaPct, 1e-9)
		require.Contains(t, plan.Actions[0].Reason, "bear market protection")
	})

	t.Run("strict liquidity risk drops the add", func(t *testing.T) {
		illiquid := targetPosition("ILLIQ", 10, 70)
		illiquid.LiquidityRisk = 0.9

		plan := buildPlan(targetPortfolio(illiquid), nil, neutral)
		require.Empty(t, plan.Actions)
	})

	t.Run("elevated liquidity risk clamps the add", func(t *testing.T) {
		sticky := targetPosition("STICKY", 10, 70)
		sticky.LiquidityRisk = 0.75

		plan := buildPlan(targetPortfolio(sticky), []domain.Holding{currentHolding("STICKY", 500)}, neutral)
		require.Len(t, plan.Actions, 1)
		require.Equal(t, domain.ActionIncrease, plan.Actions[0].Action)
		require.InDelta(t, cfg.MaxLiquidityAddPct, plan.Actions[0].DeltaPct, 1e-9)
		require.Contains(t, plan.Actions[0].Reason, "liquidity capped")
	})

	t.Run("selling is never liquidity gated", func(t *testing.T) {
		illiquid := targetPosition("ILLIQ", 0, 70)
		illiquid.LiquidityRisk = 0.95

		plan := buildPlan(targetPortfolio(illiquid), []domain.Holding{currentHolding("ILLIQ", 1000)}, neutral)
		require.Len(t, plan.Actions, 1)
		require.Equal(t, domain.ActionSell, plan.Actions[0].Action)
	})

	t.Run("nil target fails", func(t *testing.T) {
		_, err := handler.BuildPlan(BuildPlanInput{TotalValue: totalValue, Regime: neutral, Config: cfg})
		require.Error(t, err)
	})

	t.Run("non-positive book value fails", func(t *testing.T) {
		_, err := handler.BuildPlan(BuildPlanInput{
			Target:     targetPortfolio(),
			TotalValue: decimal.Zero,
			Regime:     neutral,
			Config:     cfg,
		})
		require.Error(t, err)
	})
}
