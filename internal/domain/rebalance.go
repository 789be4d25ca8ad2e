package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ActionType string

const (
	ActionBuy      ActionType = "BUY/ADD"
	ActionSell     ActionType = "SELL/REMOVE"
	ActionIncrease ActionType = "INCREASE"
	ActionReduce   ActionType = "REDUCE"
	ActionHold     ActionType = "HOLD"
)

// RebalanceAction is one proposed trade in percentage-point and currency
// terms. DeltaPct is signed: positive adds exposure, negative trims it.
type RebalanceAction struct {
	Ticker     string          `json:"ticker"`
	AssetClass AssetClass      `json:"assetClass"`
	Action     ActionType      `json:"action"`
	DeltaPct   float64         `json:"deltaPct"`
	DeltaValue decimal.Decimal `json:"deltaValue"`

	CurrentWeightPct float64 `json:"currentWeightPct"`
	TargetWeightPct  float64 `json:"targetWeightPct"`

	Score         float64 `json:"score"`
	LiquidityRisk float64 `json:"liquidityRisk"`
	Reason        string  `json:"reason"`
}

type RebalancePlanMeta struct {
	RunID         uuid.UUID       `json:"runId"`
	Regime        string          `json:"marketRegime"`
	Turnover      float64         `json:"turnover"`
	TurnoverLimit float64         `json:"turnoverLimit"`
	TotalValue    decimal.Decimal `json:"totalValue"`
	ActionsCount  int             `json:"actionsCount"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type RebalancePlan struct {
	Actions []RebalanceAction `json:"actions"`
	Meta    RebalancePlanMeta `json:"meta"`
}

// Turnover is half the sum of absolute deltas, the conventional definition
// for one-sided turnover.
func (p RebalancePlan) Turnover() float64 {
	total := 0.0
	for _, a := range p.Actions {
		if a.DeltaPct < 0 {
			total -= a.DeltaPct
		} else {
			total += a.DeltaPct
		}
	}
	return total / 2
}

// GroupByAction buckets actions by type for report rendering.
func (p RebalancePlan) GroupByAction() map[ActionType][]RebalanceAction {
	groups := map[ActionType][]RebalanceAction{}
	for _, a := range p.Actions {
		groups[a.Action] = append(groups[a.Action], a)
	}
	return groups
}
