package domain

import "strings"

type AssetClass string

const (
	AssetClassStock  AssetClass = "stock"
	AssetClassCrypto AssetClass = "crypto"
)

var cryptoQuoteCurrencies = map[string]bool{
	"USD": true, "EUR": true, "USDT": true, "USDC": true,
	"GBP": true, "CHF": true, "BTC": true, "ETH": true,
}

// InferAssetClass guesses the asset class from the symbol convention
// (crypto pairs trade as BASE-QUOTE, e.g. BTC-USD). Used only when the
// universe row does not carry an explicit asset class.
func InferAssetClass(symbol string) AssetClass {
	t := strings.ToUpper(strings.TrimSpace(symbol))
	if t == "" {
		return AssetClassStock
	}
	if strings.Contains(t, "CRYPTO") {
		return AssetClassCrypto
	}
	if idx := strings.LastIndex(t, "-"); idx >= 2 {
		if cryptoQuoteCurrencies[t[idx+1:]] {
			return AssetClassCrypto
		}
	}
	return AssetClassStock
}

// AssetRecord is one row of the tradable universe. It is populated once at
// the ingestion boundary and treated as immutable during a scoring run.
// Metric fields are pointers: nil means the upstream snapshot had no value,
// which downstream scoring maps to a neutral factor rather than an error.
type AssetRecord struct {
	Symbol     string     `csv:"symbol"`
	Name       string     `csv:"name"`
	ISIN       string     `csv:"isin"`
	WKN        string     `csv:"wkn"`
	Currency   string     `csv:"currency"`
	Sector     string     `csv:"sector"`
	AssetClass AssetClass `csv:"asset_class"`

	GrowthPct    *float64 `csv:"growth_pct"`
	MarginPct    *float64 `csv:"margin_pct"`
	RoePct       *float64 `csv:"roe_pct"`
	DebtToEquity *float64 `csv:"debt_to_equity"`

	Volatility  *float64 `csv:"volatility"`
	DownsideDev *float64 `csv:"downside_dev"`
	MaxDrawdown *float64 `csv:"max_drawdown"`
	AvgVolume   *float64 `csv:"avg_volume"`
	DollarVolume *float64 `csv:"dollar_volume"`

	Trend200 *float64 `csv:"trend200"`
	RS3M     *float64 `csv:"rs3m"`

	MonteCarloWinProb *float64 `csv:"mc_win_prob"`
	CRV               *float64 `csv:"crv"`

	Price       *float64 `csv:"price"`
	TargetPrice *float64 `csv:"target_price"`
	BuySignal   bool     `csv:"buy_signal"`
}

func (a AssetRecord) IsCrypto() bool {
	if a.AssetClass != "" {
		return a.AssetClass == AssetClassCrypto
	}
	return InferAssetClass(a.Symbol) == AssetClassCrypto
}

// Class returns the explicit asset class, falling back to symbol inference.
func (a AssetRecord) Class() AssetClass {
	if a.AssetClass != "" {
		return a.AssetClass
	}
	return InferAssetClass(a.Symbol)
}

// LiquidityRisk bands average daily dollar volume into a 0..1 risk score
// (0 = deeply liquid, 1 = untradeable). Unknown volume is treated as
// middling rather than safe.
func LiquidityRisk(dollarVolume *float64) float64 {
	if dollarVolume == nil || *dollarVolume <= 0 {
		return 0.5
	}
	dv := *dollarVolume
	switch {
	case dv >= 50_000_000:
		return 0.1
	case dv >= 10_000_000:
		return 0.2
	case dv >= 1_000_000:
		return 0.4
	case dv >= 100_000:
		return 0.7
	default:
		return 0.9
	}
}
