package domain

type ScoreStatus string

const (
	ScoreStatusOK              ScoreStatus = "OK"
	ScoreStatusAvoid           ScoreStatus = "AVOID"
	ScoreStatusAvoidCryptoBear ScoreStatus = "AVOID_CRYPTO_BEAR"
	ScoreStatusNA              ScoreStatus = "NA"
	ScoreStatusError           ScoreStatus = "ERROR"
)

// FactorVector holds the normalized 0..1 factors for a single asset.
// Observed tracks which factors were backed by real data; factors that fell
// back to the neutral default are present in the maps but not in Observed,
// so the confidence scorer can tell signal from filler.
type FactorVector struct {
	Opportunity map[string]float64
	Risk        map[string]float64
	Observed    map[string]bool
}

func NewFactorVector() FactorVector {
	return FactorVector{
		Opportunity: map[string]float64{},
		Risk:        map[string]float64{},
		Observed:    map[string]bool{},
	}
}

// All merges opportunity and risk factors into one map. Risk factor names do
// not collide with opportunity names by construction.
func (f FactorVector) All() map[string]float64 {
	out := make(map[string]float64, len(f.Opportunity)+len(f.Risk))
	for k, v := range f.Opportunity {
		out[k] = v
	}
	for k, v := range f.Risk {
		out[k] = v
	}
	return out
}

type ScoreMeta struct {
	AssetClass     AssetClass `json:"assetClass"`
	Regime         string     `json:"marketRegime"`
	Benchmark      string     `json:"marketBenchmark"`
	BenchmarkTrend *float64   `json:"marketTrend200"`
	OppWeight      float64    `json:"oppWeight"`
	RiskWeight     float64    `json:"riskWeight"`
	RiskMultiplier float64    `json:"riskMultiplier"`
}

type ConfidenceBreakdown struct {
	Coverage    float64 `json:"coverage"`
	Confluence  float64 `json:"confluence"`
	RiskClean   float64 `json:"riskClean"`
	RegimeAlign float64 `json:"regimeAlign"`
	Liquidity   float64 `json:"liquidity"`
}

// ScoreResult is produced atomically per asset: either every score field is
// populated, or FinalScore is nil and Status carries NA/ERROR. It is never
// partially mutated after the scoring pass.
type ScoreResult struct {
	Symbol string `json:"symbol"`

	FinalScore       *float64 `json:"finalScore"`
	OpportunityScore float64  `json:"opportunityScore"`
	RiskScore        float64  `json:"riskScore"`

	ConfidenceScore     float64             `json:"confidenceScore"`
	ConfidenceLabel     string              `json:"confidenceLabel"`
	ConfidenceBreakdown ConfidenceBreakdown `json:"confidenceBreakdown"`

	DiversificationPenalty float64 `json:"diversificationPenalty"`

	Status ScoreStatus `json:"status"`
	Err    string      `json:"error,omitempty"`

	Factors FactorVector `json:"-"`
	Meta    ScoreMeta    `json:"meta"`
}

// ClassifyScoreStatus pins the score/status pairing the contract layer
// enforces: a nil score is NA, a captured failure is ERROR, a zero score is
// an avoid signal (crypto zeros get their own label because they are almost
// always a bear-regime artifact), anything else is OK.
func ClassifyScoreStatus(score *float64, errMsg string, isCrypto bool) ScoreStatus {
	if errMsg != "" {
		return ScoreStatusError
	}
	if score == nil {
		return ScoreStatusNA
	}
	if *score == 0 {
		if isCrypto {
			return ScoreStatusAvoidCryptoBear
		}
		return ScoreStatusAvoid
	}
	return ScoreStatusOK
}
