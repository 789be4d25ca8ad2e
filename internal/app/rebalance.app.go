package app

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"scanner/internal"
	"scanner/internal/domain"
	"scanner/internal/repository"
	l3_service "scanner/internal/service/l3"
)

type RebalanceHandler struct {
	ScanHandler ScanHandler

	HoldingsRepository  repository.HoldingsRepository
	SymbolMapRepository repository.SymbolMapRepository

	PortfolioService l3_service.PortfolioService
	MatcherService   l3_service.MatcherService
	RebalanceService l3_service.RebalanceService

	Settings internal.Settings
	Logger   *zap.SugaredLogger
}

type RebalanceResult struct {
	Scan      *ScanResult
	Target    *domain.Portfolio
	Matched   []domain.Holding
	Unmatched []domain.UnmatchedHolding
	Plan      *domain.RebalancePlan
}

// Rebalance runs a scan, builds the target portfolio from it, matches the
// broker holdings against the universe, and diffs the two into a
// turnover-limited action plan.
func (h RebalanceHandler) Rebalance(ctx context.Context) (*RebalanceResult, error) {
	scan, err := h.ScanHandler.Scan(ctx)
	if err != nil {
		return nil, err
	}

	stockRegime := scan.Regimes[domain.AssetClassStock]

	target, err := h.PortfolioService.Build(l3_service.BuildPortfolioInput{
		Universe:    scan.Universe,
		Scores:      scan.Results,
		StockRegime: stockRegime,
		Config:      h.Settings.Portfolio,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build target portfolio: %w", err)
	}

	holdings, err := h.HoldingsRepository.LoadHoldings()
	if err != nil {
		return nil, err
	}
	symbolMap, err := h.SymbolMapRepository.Load()
	if err != nil {
		return nil, err
	}

	match := h.MatcherService.Match(l3_service.MatchInput{
		Holdings:  holdings,
		Universe:  scan.Universe,
		SymbolMap: symbolMap,
	})
	for _, u := range match.Unmatched {
		h.Logger.Warnw("unmatched holding", "name", u.Name, "reason", u.Reason)
	}

	plan, err := h.RebalanceService.BuildPlan(l3_service.BuildPlanInput{
		Target:     target,
		Current:    match.Matched,
		TotalValue: match.TotalValue,
		Regime:     stockRegime,
		Config:     h.Settings.Rebalance,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build rebalance plan: %w", err)
	}

	return &RebalanceResult{
		Scan:      scan,
		Target:    target,
		Matched:   match.Matched,
		Unmatched: match.Unmatched,
		Plan:      plan,
	}, nil
}

// actionOrder fixes the rendering order of plan sections.
var actionOrder = []domain.ActionType{
	domain.ActionSell,
	domain.ActionReduce,
	domain.ActionBuy,
	domain.ActionIncrease,
	domain.ActionHold,
}

// FormatPlanSummary renders a plan as a plain-text report, grouped by
// action, for CLI output and notifications.
func FormatPlanSummary(result *RebalanceResult) string {
	plan := result.Plan
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("rebalance plan %s\n", plan.Meta.RunID))
	sb.WriteString(fmt.Sprintf("regime: %s | turnover: %.1f%% (limit %.1f%%) | portfolio value: %s\n",
		plan.Meta.Regime,
		plan.Meta.Turnover*100,
		plan.Meta.TurnoverLimit*100,
		plan.Meta.TotalValue.StringFixed(2),
	))

	groups := plan.GroupByAction()
	for _, action := range actionOrder {
		actions := groups[action]
		if len(actions) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("\n%s (%d)\n", action, len(actions)))
		for _, a := range actions {
			sb.WriteString(fmt.Sprintf("  %-10s %6.2f%% -> %6.2f%% (%+.2fpp, %s) score=%.1f %s\n",
				a.Ticker,
				a.CurrentWeightPct,
				a.TargetWeightPct,
				a.DeltaPct,
				a.DeltaValue.StringFixed(2),
				a.Score,
				a.Reason,
			))
		}
	}

	if len(result.Unmatched) > 0 {
		sb.WriteString(fmt.Sprintf("\nunmatched holdings (%d)\n", len(result.Unmatched)))
		for _, u := range result.Unmatched {
			sb.WriteString(fmt.Sprintf("  %s (%s)\n", u.Name, u.Reason))
		}
	}

	return sb.String()
}
