package domain

import (
	"time"
)

// Position is one row of a target portfolio. Weights are percentage points
// of total portfolio value; the scoring metrics ride along so the rebalance
// guardrails can be evaluated without another universe lookup.
type Position struct {
	Ticker     string     `json:"ticker"`
	AssetClass AssetClass `json:"assetClass"`
	WeightPct  float64    `json:"weightPct"`
	Score      float64    `json:"score"`

	LiquidityRisk float64  `json:"liquidityRisk"`
	RS3M          *float64 `json:"rs3m,omitempty"`
	Trend200      *float64 `json:"trend200,omitempty"`
	DollarVolume  *float64 `json:"dollarVolume,omitempty"`

	RawWeightPct         float64 `json:"rawWeightPct"`
	LiquidityAdjustedPct float64 `json:"liquidityAdjustedPct"`
}

type SelectionCriteria struct {
	TopN         int     `json:"topN"`
	MinScore     float64 `json:"minScore"`
	MaxPositions int     `json:"maxPositions"`
	AllowCrypto  bool    `json:"allowCrypto"`
}

type PortfolioMeta struct {
	Regime               string            `json:"marketRegime"`
	CashPct              float64           `json:"cashPct"`
	MaxEquityExposurePct float64           `json:"maxEquityExposurePct"`
	MaxCryptoExposurePct float64           `json:"maxCryptoExposurePct"`
	CreatedAt            time.Time         `json:"createdAt"`
	Criteria             SelectionCriteria `json:"selectionCriteria"`
}

// Portfolio is the output of the builder. Position weights sum to at most
// 100; the remainder is implicit cash, mirrored in Meta.CashPct.
type Portfolio struct {
	Positions []Position    `json:"positions"`
	Meta      PortfolioMeta `json:"meta"`
}

func (p Portfolio) TotalWeightPct() float64 {
	total := 0.0
	for _, pos := range p.Positions {
		total += pos.WeightPct
	}
	return total
}

func (p Portfolio) HeldSymbols() []string {
	symbols := make([]string, 0, len(p.Positions))
	for _, pos := range p.Positions {
		symbols = append(symbols, pos.Ticker)
	}
	return symbols
}

// Position returns the position for a ticker, or nil if the portfolio does
// not hold it.
func (p Portfolio) Position(ticker string) *Position {
	for i := range p.Positions {
		if p.Positions[i].Ticker == ticker {
			return &p.Positions[i]
		}
	}
	return nil
}
