package l3_service

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"scanner/internal"
	"scanner/internal/domain"
)

type BuildPlanInput struct {
	Target     *domain.Portfolio
	Current    []domain.Holding
	TotalValue decimal.Decimal
	Regime     internal.RegimeResult
	Config     internal.RebalanceConfig
}

// RebalanceService diffs the target portfolio against current holdings and
// produces a turnover-limited action plan.
type RebalanceService interface {
	BuildPlan(in BuildPlanInput) (*domain.RebalancePlan, error)
}

type rebalanceServiceHandler struct {
	Logger *zap.SugaredLogger
}

func NewRebalanceService(logger *zap.SugaredLogger) RebalanceService {
	return rebalanceServiceHandler{Logger: logger}
}

func (h rebalanceServiceHandler) BuildPlan(in BuildPlanInput) (*domain.RebalancePlan, error) {
	if in.Target == nil {
		return nil, fmt.Errorf("cannot build rebalance plan without a target portfolio")
	}
	if !in.TotalValue.IsPositive() {
		return nil, fmt.Errorf("cannot build rebalance plan with total value %s", in.TotalValue.String())
	}

	cfg := in.Config
	totalValue := in.TotalValue.InexactFloat64()

	currentWeights := map[string]float64{}
	currentClass := map[string]domain.AssetClass{}
	for _, holding := range in.Current {
		currentWeights[holding.Ticker] += holding.Value.InexactFloat64() / totalValue * 100
		currentClass[holding.Ticker] = holding.AssetClass
	}

	actions := []domain.RebalanceAction{}
	for _, ticker := range unionTickers(in.Target, currentWeights) {
		targetPos := in.Target.Position(ticker)
		targetWeight := 0.0
		if targetPos != nil {
			targetWeight = targetPos.WeightPct
		}
		currentWeight := currentWeights[ticker]
		delta := targetWeight - currentWeight

		if math.Abs(delta) < cfg.MinTradePct {
			continue
		}
		if math.Abs(delta/100*totalValue) < cfg.MinTradeValue {
			continue
		}

		// bear guardrail: adding exposure needs a conviction score and
		// positive momentum, otherwise the add is capped to a trim or
		// skipped outright
		if in.Regime.Regime == internal.RegimeBear && delta > 0 {
			if !bearBuyAllowed(targetPos, cfg) {
				if currentWeight <= 0 {
					continue
				}
				delta = -cfg.MinTradePct
			}
		}

		// liquidity guardrail on adds
		liqRisk := 0.0
		if targetPos != nil {
			liqRisk = targetPos.LiquidityRisk
		}
		if delta > 0 {
			if liqRisk > cfg.LiquidityRiskStrict {
				continue
			}
			if liqRisk > cfg.LiquidityRiskThreshold && delta > cfg.MaxLiquidityAddPct {
				delta = cfg.MaxLiquidityAddPct
			}
		}

		actionType := classifyAction(delta, currentWeight, targetWeight)
		if actionType == domain.ActionHold {
			continue
		}

		score := 0.0
		assetClass := currentClass[ticker]
		if targetPos != nil {
			score = targetPos.Score
			assetClass = targetPos.AssetClass
		}

		actions = append(actions, domain.RebalanceAction{
			Ticker:           ticker,
			AssetClass:       assetClass,
			Action:           actionType,
			DeltaPct:         round2(delta),
			DeltaValue:       deltaValue(delta, in.TotalValue),
			CurrentWeightPct: round2(currentWeight),
			TargetWeightPct:  round2(currentWeight + delta),
			Score:            score,
			LiquidityRisk:    liqRisk,
			Reason:           actionReason(actionType, in.Regime.Regime, liqRisk, cfg),
		})
	}

	actions, turnover, scaled := applyTurnoverControl(actions, cfg.TurnoverLimit, in.TotalValue)
	if scaled {
		h.Logger.Warnw("turnover limit exceeded, deltas scaled proportionally",
			"turnover", turnover,
			"limit", cfg.TurnoverLimit,
		)
	}

	plan := &domain.RebalancePlan{
		Actions: actions,
		Meta: domain.RebalancePlanMeta{
			RunID:         uuid.New(),
			Regime:        string(in.Regime.Regime),
			Turnover:      turnover,
			TurnoverLimit: cfg.TurnoverLimit,
			TotalValue:    in.TotalValue,
			ActionsCount:  len(actions),
			CreatedAt:     time.Now().UTC(),
		},
	}

	h.Logger.Infow("rebalance plan built",
		"actions", len(actions),
		"turnover", turnover,
		"regime", in.Regime.Regime,
	)
	return plan, nil
}

func unionTickers(target *domain.Portfolio, currentWeights map[string]float64) []string {
	seen := map[string]bool{}
	tickers := []string{}
	for _, pos := range target.Positions {
		if !seen[pos.Ticker] {
			seen[pos.Ticker] = true
			tickers = append(tickers, pos.Ticker)
		}
	}
	for ticker := range currentWeights {
		if !seen[ticker] {
			seen[ticker] = true
			tickers = append(tickers, ticker)
		}
	}
	sort.Strings(tickers)
	return tickers
}

func bearBuyAllowed(targetPos *domain.Position, cfg internal.RebalanceConfig) bool {
	if targetPos == nil {
		return false
	}
	if targetPos.Score < cfg.BearMinBuyScore {
		return false
	}
	if targetPos.RS3M == nil || *targetPos.RS3M <= 0 {
		return false
	}
	if targetPos.Trend200 == nil || *targetPos.Trend200 <= 0 {
		return false
	}
	return true
}

func classifyAction(delta, currentWeight, targetWeight float64) domain.ActionType {
	switch {
	case currentWeight == 0 && delta > 0:
		return domain.ActionBuy
	case targetWeight == 0 && delta < 0:
		return domain.ActionSell
	case delta > 0:
		return domain.ActionIncrease
	case delta < 0:
		return domain.ActionReduce
	default:
		return domain.ActionHold
	}
}

func actionReason(action domain.ActionType, regime internal.Regime, liqRisk float64, cfg internal.RebalanceConfig) string {
	switch action {
	case domain.ActionBuy:
		if regime == internal.RegimeBear {
			return "new position (bear market exception)"
		}
		return "new position"
	case domain.ActionSell:
		return "exit position"
	case domain.ActionIncrease:
		if liqRisk > cfg.LiquidityRiskThreshold {
			return fmt.Sprintf("increase (liquidity capped, risk=%.2f)", liqRisk)
		}
		return "increase position"
	case domain.ActionReduce:
		if regime == internal.RegimeBear {
			return "reduce (bear market protection)"
		}
		return "reduce position"
	default:
		return "hold"
	}
}

// applyTurnoverControl scales every delta by limit/turnover when the plan
// trades too much. Proportional scaling keeps relative trade sizes intact
// instead of privileging any row.
func applyTurnoverControl(actions []domain.RebalanceAction, limit float64, totalValue decimal.Decimal) ([]domain.RebalanceAction, float64, bool) {
	turnover := turnoverOf(actions)
	if turnover <= limit*100 {
		return actions, turnover / 100, false
	}

	factor := limit * 100 / turnover
	scaled := make([]domain.RebalanceAction, len(actions))
	for i, a := range actions {
		delta := a.DeltaPct * factor
		a.DeltaPct = round2(delta)
		a.DeltaValue = deltaValue(delta, totalValue)
		a.TargetWeightPct = round2(a.CurrentWeightPct + delta)
		a.Reason = fmt.Sprintf("%s (scaled by %.2f)", a.Reason, factor)
		scaled[i] = a
	}
	return scaled, turnoverOf(scaled) / 100, true
}

// turnoverOf returns turnover in percentage points: sum(|delta|)/2.
func turnoverOf(actions []domain.RebalanceAction) float64 {
	total := 0.0
	for _, a := range actions {
		total += math.Abs(a.DeltaPct)
	}
	return total / 2
}

func deltaValue(deltaPct float64, totalValue decimal.Decimal) decimal.Decimal {
	return totalValue.Mul(decimal.NewFromFloat(deltaPct / 100)).Round(2)
}
