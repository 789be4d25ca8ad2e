package internal

import (
	"scanner/internal/domain"
)

// ConfidenceConfig lists which factors feed each confidence component and
// the label thresholds.
type ConfidenceConfig struct {
	CoverageWeight    float64 `json:"coverageWeight"`
	ConfluenceWeight  float64 `json:"confluenceWeight"`
	RiskCleanWeight   float64 `json:"riskCleanWeight"`
	RegimeAlignWeight float64 `json:"regimeAlignWeight"`
	LiquidityWeight   float64 `json:"liquidityWeight"`

	CoreFactors        []string `json:"coreFactors"`
	OpportunityFactors []string `json:"opportunityFactors"`
	RiskFactors        []string `json:"riskFactors"`
	MomentumFactors    []string `json:"momentumFactors"`

	HighThreshold float64 `json:"highThreshold"`
	MedThreshold  float64 `json:"medThreshold"`
}

func DefaultConfidenceConfig() ConfidenceConfig {
	return ConfidenceConfig{
		CoverageWeight:    0.25,
		ConfluenceWeight:  0.25,
		RiskCleanWeight:   0.20,
		RegimeAlignWeight: 0.20,
		LiquidityWeight:   0.10,

		CoreFactors: []string{
			"growth", "roe", "margin", "debt_to_equity",
			"volatility", "relative_strength", "trend_200dma",
		},
		OpportunityFactors: []string{
			"growth", "roe", "margin", "relative_strength", "trend_200dma",
		},
		RiskFactors: []string{
			"volatility", "max_drawdown", "debt_to_equity",
		},
		MomentumFactors: []string{
			"relative_strength", "trend_200dma",
		},

		HighThreshold: 75,
		MedThreshold:  50,
	}
}

type ConfidenceResult struct {
	Score     float64
	Label     string
	Breakdown domain.ConfidenceBreakdown
}

// ComputeConfidence scores how trustworthy the inputs behind a score are.
// It is advisory metadata only and must never feed back into the final
// score.
func ComputeConfidence(factors domain.FactorVector, regime Regime, cfg ConfidenceConfig) ConfidenceResult {
	breakdown := domain.ConfidenceBreakdown{
		Coverage:    confidenceCoverage(factors, cfg.CoreFactors),
		Confluence:  confidenceConfluence(factors, cfg.OpportunityFactors),
		RiskClean:   confidenceRiskClean(factors, cfg.RiskFactors),
		RegimeAlign: confidenceRegimeAlign(factors, regime, cfg.MomentumFactors),
		Liquidity:   confidenceLiquidity(factors),
	}

	score := (breakdown.Coverage*cfg.CoverageWeight +
		breakdown.Confluence*cfg.ConfluenceWeight +
		breakdown.RiskClean*cfg.RiskCleanWeight +
		breakdown.RegimeAlign*cfg.RegimeAlignWeight +
		breakdown.Liquidity*cfg.LiquidityWeight) * 100

	return ConfidenceResult{
		Score:     score,
		Label:     confidenceLabel(score, cfg),
		Breakdown: breakdown,
	}
}

// coverage: fraction of the core factor list backed by observed data.
func confidenceCoverage(factors domain.FactorVector, core []string) float64 {
	if len(core) == 0 {
		return 0
	}
	present := 0
	for _, name := range core {
		if factors.Observed[name] {
			present++
		}
	}
	return Clamp(float64(present)/float64(len(core)), 0, 1)
}

// confluence: fraction of opportunity factors agreeing strongly (>0.7).
func confidenceConfluence(factors domain.FactorVector, oppFactors []string) float64 {
	if len(oppFactors) == 0 {
		return 0
	}
	strong := 0
	for _, name := range oppFactors {
		if factors.Observed[name] && factors.Opportunity[name] > 0.7 {
			strong++
		}
	}
	return Clamp(float64(strong)/float64(len(oppFactors)), 0, 1)
}

// risk_clean: fraction of risk factors with no red flag (<0.6).
func confidenceRiskClean(factors domain.FactorVector, riskFactors []string) float64 {
	if len(riskFactors) == 0 {
		return 0
	}
	clean := 0
	for _, name := range riskFactors {
		if factors.Observed[name] && factors.Risk[name] < 0.6 {
			clean++
		}
	}
	return Clamp(float64(clean)/float64(len(riskFactors)), 0, 1)
}

func confidenceRegimeAlign(factors domain.FactorVector, regime Regime, momentum []string) float64 {
	switch regime {
	case RegimeBull:
		sum := 0.0
		n := 0
		for _, name := range momentum {
			if factors.Observed[name] {
				sum += factors.Opportunity[name]
				n++
			}
		}
		if n == 0 {
			return 0.5
		}
		return Clamp(sum/float64(n), 0, 1)

	case RegimeBear:
		// defensive blend: low volatility, solid profitability
		score := 0.0
		if factors.Observed["volatility"] {
			score += (1 - factors.Risk["volatility"]) * 0.4
		}
		if factors.Observed["roe"] {
			score += factors.Opportunity["roe"] * 0.3
		}
		if factors.Observed["margin"] {
			score += factors.Opportunity["margin"] * 0.3
		}
		return Clamp(score, 0, 1)

	default:
		return 0.5
	}
}

func confidenceLiquidity(factors domain.FactorVector) float64 {
	if !factors.Observed["liquidity_risk"] {
		return 0.5
	}
	return Clamp(1-factors.Risk["liquidity_risk"], 0, 1)
}

func confidenceLabel(score float64, cfg ConfidenceConfig) string {
	if score >= cfg.HighThreshold {
		return "HIGH"
	}
	if score >= cfg.MedThreshold {
		return "MED"
	}
	return "LOW"
}
