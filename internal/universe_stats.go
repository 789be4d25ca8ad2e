package internal

import (
	"math"
	"sort"

	"scanner/internal/domain"
)

// Field names for the cross-sectional distributions. One distribution is
// built per field over the whole universe, then reused for every row.
const (
	FieldGrowthPct      = "growth_pct"
	FieldMarginPct      = "margin_pct"
	FieldRoePct         = "roe_pct"
	FieldDebtToEquity   = "debt_to_equity"
	FieldVolatility     = "volatility"
	FieldDownsideDev    = "downside_dev"
	FieldMaxDrawdown    = "max_drawdown"
	FieldAvgVolume      = "avg_volume"
	FieldDollarVolume   = "dollar_volume"
	FieldTrend200       = "trend200"
	FieldRS3M           = "rs3m"
	FieldMCWinProb      = "mc_win_prob"
	FieldCRV            = "crv"
	FieldTargetDistance = "target_distance"
)

var fieldExtractors = map[string]func(domain.AssetRecord) *float64{
	FieldGrowthPct:    func(a domain.AssetRecord) *float64 { return a.GrowthPct },
	FieldMarginPct:    func(a domain.AssetRecord) *float64 { return a.MarginPct },
	FieldRoePct:       func(a domain.AssetRecord) *float64 { return a.RoePct },
	FieldDebtToEquity: func(a domain.AssetRecord) *float64 { return a.DebtToEquity },
	FieldVolatility:   func(a domain.AssetRecord) *float64 { return a.Volatility },
	FieldDownsideDev:  func(a domain.AssetRecord) *float64 { return a.DownsideDev },
	FieldMaxDrawdown:  func(a domain.AssetRecord) *float64 { return a.MaxDrawdown },
	FieldAvgVolume:    func(a domain.AssetRecord) *float64 { return a.AvgVolume },
	FieldDollarVolume: func(a domain.AssetRecord) *float64 { return a.DollarVolume },
	FieldTrend200:     func(a domain.AssetRecord) *float64 { return a.Trend200 },
	FieldRS3M:         func(a domain.AssetRecord) *float64 { return a.RS3M },
	FieldMCWinProb:    func(a domain.AssetRecord) *float64 { return a.MonteCarloWinProb },
	FieldCRV:          func(a domain.AssetRecord) *float64 { return a.CRV },
	FieldTargetDistance: func(a domain.AssetRecord) *float64 {
		if a.Price == nil || a.TargetPrice == nil || *a.Price <= 0 {
			return nil
		}
		d := (*a.TargetPrice / *a.Price) - 1.0
		return &d
	},
}

// UniverseFields lists every field a distribution is built for.
func UniverseFields() []string {
	fields := make([]string, 0, len(fieldExtractors))
	for f := range fieldExtractors {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// UniverseStats holds one sorted distribution of finite values per numeric
// field. Built once per scan, read-only afterward; safe for concurrent reads
// from the scoring workers.
type UniverseStats struct {
	dists map[string][]float64
}

// BuildUniverseStats collects, per field, all finite values across the
// universe into a sorted slice. Records with a missing field simply do not
// contribute to that field's distribution.
func BuildUniverseStats(records []domain.AssetRecord) *UniverseStats {
	dists := make(map[string][]float64, len(fieldExtractors))
	for field, extract := range fieldExtractors {
		values := []float64{}
		for _, r := range records {
			v := extract(r)
			if v != nil && isFinite(*v) {
				values = append(values, *v)
			}
		}
		sort.Float64s(values)
		dists[field] = values
	}
	return &UniverseStats{dists: dists}
}

// Distribution returns the sorted finite values for a field. The returned
// slice must not be mutated.
func (u *UniverseStats) Distribution(field string) []float64 {
	return u.dists[field]
}

// FieldValue extracts the raw value of a named field from a record, nil when
// missing. Every field a caller can name is in the extractor table; unknown
// names resolve to nil rather than panicking.
func FieldValue(field string, record domain.AssetRecord) *float64 {
	extract, ok := fieldExtractors[field]
	if !ok {
		return nil
	}
	return extract(record)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
