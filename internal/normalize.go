package internal

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
)

type NormMethod string

const (
	NormPercentile NormMethod = "percentile"
	NormZSigmoid   NormMethod = "zsigmoid"
)

// NormConfig selects how a raw value is mapped onto 0..1 against its
// universe distribution. The method is fixed per field in configuration,
// not chosen per call.
type NormConfig struct {
	Method  NormMethod `json:"method"`
	WinsorP float64    `json:"winsorP"`
	Neutral float64    `json:"neutral"`
}

func DefaultNormConfig() NormConfig {
	return NormConfig{
		Method:  NormPercentile,
		WinsorP: 0.02,
		Neutral: 0.5,
	}
}

// Winsorize clips both tails of values at the p / 1-p quantiles. The result
// has the same length as the input and is sorted. Non-finite inputs are
// dropped before clipping.
func Winsorize(values []float64, p float64) []float64 {
	vals := cleanFloats(values)
	if len(vals) == 0 {
		return []float64{}
	}
	sort.Float64s(vals)
	n := len(vals)
	loIdx := clampIndex(int(math.Round(p*float64(n-1))), n)
	hiIdx := clampIndex(int(math.Round((1-p)*float64(n-1))), n)
	lo := vals[loIdx]
	hi := vals[hiIdx]
	out := make([]float64, n)
	for i, v := range vals {
		out[i] = math.Min(math.Max(v, lo), hi)
	}
	return out
}

// PercentileRank returns the fraction of dist strictly below x. dist must be
// sorted ascending. An empty dist or non-finite x yields neutral.
func PercentileRank(x float64, dist []float64, neutral float64) float64 {
	if len(dist) == 0 || !isFinite(x) {
		return neutral
	}
	cnt := sort.SearchFloat64s(dist, x)
	return float64(cnt) / float64(len(dist))
}

func zSigmoid(x, mean, std, neutral float64) float64 {
	if !isFinite(x) || !isFinite(mean) || !isFinite(std) || std <= 0 {
		return neutral
	}
	z := (x - mean) / std
	return 1.0 / (1.0 + math.Exp(-z))
}

// Scale maps a raw value onto 0..1 using the configured method over the
// winsorized distribution. Degenerate inputs (empty or single-element
// distribution, missing or non-finite x) return the neutral value instead
// of an error: a thin distribution carries no relative information.
func Scale(x *float64, dist []float64, cfg NormConfig) float64 {
	if x == nil || !isFinite(*x) {
		return cfg.Neutral
	}
	if len(dist) <= 1 {
		return cfg.Neutral
	}

	w := Winsorize(dist, cfg.WinsorP)

	var v float64
	switch cfg.Method {
	case NormZSigmoid:
		mean, err := stats.Mean(w)
		if err != nil {
			return cfg.Neutral
		}
		std, err := stats.StandardDeviationSample(w)
		if err != nil {
			return cfg.Neutral
		}
		v = zSigmoid(*x, mean, std, cfg.Neutral)
	default:
		v = PercentileRank(*x, w, cfg.Neutral)
	}

	return Clamp(v, 0, 1)
}

func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func cleanFloats(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if isFinite(v) {
			out = append(out, v)
		}
	}
	return out
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n-1 {
		return n - 1
	}
	return i
}
