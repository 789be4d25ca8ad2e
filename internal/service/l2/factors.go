package l2_service

import (
	"scanner/internal"
	"scanner/internal/domain"
)

// upsideFullScale is the target-vs-price upside that maps to a full 1.0
// opportunity factor (30%).
const upsideFullScale = 0.30

// buildFactorVector normalizes one record's raw metrics against the
// universe distributions. Every factor the weight maps reference is always
// present; Observed marks the ones backed by real data so the confidence
// scorer can discount filler neutrals.
func buildFactorVector(record domain.AssetRecord, stats *internal.UniverseStats, cfg internal.NormConfig) domain.FactorVector {
	fv := domain.NewFactorVector()

	scale := func(field string) (float64, bool) {
		raw := internal.FieldValue(field, record)
		return internal.Scale(raw, stats.Distribution(field), cfg), raw != nil
	}

	setOpp := func(name, field string) {
		v, observed := scale(field)
		fv.Opportunity[name] = v
		fv.Observed[name] = observed
	}
	setRisk := func(name, field string) {
		v, observed := scale(field)
		fv.Risk[name] = v
		fv.Observed[name] = observed
	}

	// opportunity: higher = better
	setOpp("growth", internal.FieldGrowthPct)
	setOpp("roe", internal.FieldRoePct)
	setOpp("margin", internal.FieldMarginPct)
	setOpp("mc_prob", internal.FieldMCWinProb)
	setOpp("trend_200dma", internal.FieldTrend200)
	setOpp("relative_strength", internal.FieldRS3M)
	setOpp("target_distance", internal.FieldTargetDistance)

	// no analyst feed wired up yet, keep the slot neutral
	fv.Opportunity["analyst"] = cfg.Neutral

	if record.BuySignal {
		fv.Opportunity["signal_quality"] = 0.7
	} else {
		fv.Opportunity["signal_quality"] = 0.4
	}
	fv.Observed["signal_quality"] = true

	fv.Opportunity["upside"] = cfg.Neutral
	if record.BuySignal && record.Price != nil && record.TargetPrice != nil && *record.Price > 0 {
		upside := (*record.TargetPrice / *record.Price) - 1.0
		fv.Opportunity["upside"] = internal.Clamp(upside/upsideFullScale, 0, 1)
		fv.Observed["upside"] = true
	}

	// risk: higher = riskier
	setRisk("debt_to_equity", internal.FieldDebtToEquity)
	setRisk("volatility", internal.FieldVolatility)
	setRisk("downside_dev", internal.FieldDownsideDev)
	setRisk("max_drawdown", internal.FieldMaxDrawdown)

	fv.Risk["beta"] = cfg.Neutral

	fv.Risk["crv_fragility"] = cfg.Neutral
	if record.BuySignal && record.CRV != nil && *record.CRV > 0 {
		crvScaled := internal.Scale(record.CRV, stats.Distribution(internal.FieldCRV), cfg)
		// a strong reward/risk ratio means a robust setup, so fragility
		// is its complement
		fv.Risk["crv_fragility"] = 1 - crvScaled
		fv.Observed["crv_fragility"] = true
	}

	fv.Risk["liquidity_risk"] = cfg.Neutral
	if record.DollarVolume != nil {
		dv := internal.Scale(record.DollarVolume, stats.Distribution(internal.FieldDollarVolume), cfg)
		fv.Risk["liquidity_risk"] = 1 - dv
		fv.Observed["liquidity_risk"] = true
	} else if record.AvgVolume != nil {
		av := internal.Scale(record.AvgVolume, stats.Distribution(internal.FieldAvgVolume), cfg)
		fv.Risk["liquidity_risk"] = 1 - av
		fv.Observed["liquidity_risk"] = true
	}

	return fv
}
