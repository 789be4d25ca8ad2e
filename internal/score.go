package internal

// Default factor weight maps. These are heuristic tuning defaults, exposed
// through Settings rather than baked into call sites.
func DefaultOpportunityWeights() map[string]float64 {
	return map[string]float64{
		"upside":            1.2,
		"growth":            1.0,
		"roe":               0.9,
		"signal_quality":    0.9,
		"relative_strength": 0.8,
		"mc_prob":           0.8,
		"margin":            0.7,
		"analyst":           0.6,
		"trend_200dma":      0.6,
		"target_distance":   0.5,
	}
}

func DefaultRiskWeights() map[string]float64 {
	return map[string]float64{
		"volatility":     1.1,
		"max_drawdown":   1.1,
		"crv_fragility":  0.9,
		"downside_dev":   0.8,
		"debt_to_equity": 0.7,
		"liquidity_risk": 0.7,
		"beta":           0.6,
	}
}

// WeightedScore is the weighted mean of clamped 0..1 factors, scaled to
// 0..100. Factors missing from the map count as neutral. A zero weight sum
// yields 0 rather than NaN.
func WeightedScore(factors map[string]float64, weights map[string]float64) float64 {
	const neutral = 0.5
	num := 0.0
	den := 0.0
	for name, w := range weights {
		v, ok := factors[name]
		if !ok {
			v = neutral
		}
		num += Clamp(v, 0, 1) * w
		den += w
	}
	if den == 0 {
		return 0
	}
	return (num / den) * 100.0
}

type ScoreBreakdown struct {
	FinalScore       float64
	OpportunityScore float64
	RiskScore        float64
}

// ComputeScores blends the opportunity and risk sub-scores under a regime
// weight profile: final = clamp(oppW*opp - riskMult*riskW*risk, 0, 100).
func ComputeScores(
	opportunity map[string]float64,
	risk map[string]float64,
	oppWeights map[string]float64,
	riskWeights map[string]float64,
	params RegimeParams,
) ScoreBreakdown {
	oppScore := WeightedScore(opportunity, oppWeights)
	riskScore := WeightedScore(risk, riskWeights)

	final := Clamp(
		params.OppWeight*oppScore-params.RiskMultiplier*params.RiskWeight*riskScore,
		0, 100,
	)

	return ScoreBreakdown{
		FinalScore:       final,
		OpportunityScore: oppScore,
		RiskScore:        riskScore,
	}
}
