package internal

import (
	"encoding/json"
	"fmt"
	"os"
)

// PortfolioConfig tunes selection and weighting in the portfolio builder.
type PortfolioConfig struct {
	TopN         int     `json:"topN"`
	MinScore     float64 `json:"minScore"`
	MaxPositions int     `json:"maxPositions"`
	AllowCrypto  bool    `json:"allowCrypto"`

	MaxPositionWeight float64 `json:"maxPositionWeight"`
	MinPositionWeight float64 `json:"minPositionWeight"`

	// exposure caps per regime, as fractions of total value
	EquityExposure map[Regime]float64 `json:"equityExposure"`
	CryptoExposure map[Regime]float64 `json:"cryptoExposure"`
}

func DefaultPortfolioConfig() PortfolioConfig {
	return PortfolioConfig{
		TopN:         10,
		MinScore:     30,
		MaxPositions: 20,
		AllowCrypto:  true,

		MaxPositionWeight: 0.15,
		MinPositionWeight: 0.01,

		EquityExposure: map[Regime]float64{
			RegimeBull:    1.00,
			RegimeNeutral: 0.70,
			RegimeBear:    0.40,
		},
		CryptoExposure: map[Regime]float64{
			RegimeBull:    0.15,
			RegimeNeutral: 0.10,
			RegimeBear:    0.05,
		},
	}
}

// RebalanceConfig tunes trade filtering, guardrails and the turnover limit.
type RebalanceConfig struct {
	TurnoverLimit float64 `json:"turnoverLimit"`
	MinTradePct   float64 `json:"minTradePct"`
	MinTradeValue float64 `json:"minTradeValue"`

	LiquidityRiskThreshold float64 `json:"liquidityRiskThreshold"`
	LiquidityRiskStrict    float64 `json:"liquidityRiskStrict"`
	MaxLiquidityAddPct     float64 `json:"maxLiquidityAddPct"`

	BearMinBuyScore float64 `json:"bearMinBuyScore"`
}

func DefaultRebalanceConfig() RebalanceConfig {
	return RebalanceConfig{
		TurnoverLimit: 0.35,
		MinTradePct:   1.0,
		MinTradeValue: 25.0,

		LiquidityRiskThreshold: 0.70,
		LiquidityRiskStrict:    0.85,
		MaxLiquidityAddPct:     2.0,

		BearMinBuyScore: 80,
	}
}

// Settings gathers every tunable threshold in one place. The numeric
// defaults are heuristics carried over from manual calibration, not derived
// constraints; a settings file overrides them wholesale.
type Settings struct {
	Norm               NormConfig             `json:"norm"`
	OpportunityWeights map[string]float64     `json:"opportunityWeights"`
	RiskWeights        map[string]float64     `json:"riskWeights"`
	Confidence         ConfidenceConfig       `json:"confidence"`
	Diversification    DiversificationConfig  `json:"diversification"`
	Portfolio          PortfolioConfig        `json:"portfolio"`
	Rebalance          RebalanceConfig        `json:"rebalance"`
	RegimeCacheMinutes int                    `json:"regimeCacheMinutes"`

	// SnapshotRetentionDays bounds the score history kept in the snapshot
	// store; older runs are pruned after each persisted scan. Zero disables
	// pruning.
	SnapshotRetentionDays int `json:"snapshotRetentionDays"`
}

func DefaultSettings() Settings {
	return Settings{
		Norm:               DefaultNormConfig(),
		OpportunityWeights: DefaultOpportunityWeights(),
		RiskWeights:        DefaultRiskWeights(),
		Confidence:         DefaultConfidenceConfig(),
		Diversification:    DefaultDiversificationConfig(),
		Portfolio:          DefaultPortfolioConfig(),
		Rebalance:          DefaultRebalanceConfig(),
		RegimeCacheMinutes: 30,

		SnapshotRetentionDays: 365,
	}
}

// LoadSettings reads a JSON settings file over the defaults. A missing path
// returns the defaults unchanged.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()
	if path == "" {
		return settings, nil
	}
	f, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return settings, fmt.Errorf("could not read settings file %s: %w", path, err)
	}
	if err := json.Unmarshal(f, &settings); err != nil {
		return settings, fmt.Errorf("could not parse settings file %s: %w", path, err)
	}
	return settings, nil
}

type DbSecrets struct {
	Host      string `json:"host"`
	User      string `json:"user"`
	Port      string `json:"port"`
	Password  string `json:"password"`
	Database  string `json:"database"`
	EnableSsl bool   `json:"enableSsl"`
}

func (t DbSecrets) ToConnectionStr() string {
	x := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s",
		t.Host, t.Port, t.User, t.Password, t.Database)
	if !t.EnableSsl {
		x += " sslmode=disable"
	}
	return x
}

type Secrets struct {
	Db DbSecrets `json:"db"`
}

// LoadSecrets reads db credentials from the secrets file. SCANNER_ENV
// selects the dev/test variants, matching the deployment layout.
func LoadSecrets() (*Secrets, error) {
	secretsFile := "secrets.json"
	if os.Getenv("SCANNER_ENV") == "dev" {
		secretsFile = "secrets-dev.json"
	} else if os.Getenv("SCANNER_ENV") == "test" {
		secretsFile = "secrets-test.json"
	}
	f, err := os.ReadFile(secretsFile)
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", secretsFile, err)
	}

	secrets := Secrets{}
	err = json.Unmarshal(f, &secrets)
	if err != nil {
		return nil, err
	}

	return &secrets, nil
}
