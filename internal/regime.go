package internal

import (
	"math"
	"sync"
	"time"

	"scanner/internal/domain"
)

type Regime string

const (
	RegimeBull    Regime = "bull"
	RegimeNeutral Regime = "neutral"
	RegimeBear    Regime = "bear"
)

// RegimeParams is the factor-weight profile a regime selects. Bear markets
// downweight opportunity and amplify the risk penalty.
type RegimeParams struct {
	OppWeight      float64
	RiskWeight     float64
	RiskMultiplier float64
}

var regimeParams = map[Regime]RegimeParams{
	RegimeBull:    {OppWeight: 0.65, RiskWeight: 0.35, RiskMultiplier: 0.60},
	RegimeNeutral: {OppWeight: 0.55, RiskWeight: 0.45, RiskMultiplier: 0.70},
	RegimeBear:    {OppWeight: 0.45, RiskWeight: 0.55, RiskMultiplier: 0.85},
}

// Benchmarks per asset class. The regime for every stock in a run comes from
// one benchmark trend, likewise for crypto.
var regimeBenchmarks = map[domain.AssetClass]string{
	domain.AssetClassStock:  "SPY",
	domain.AssetClassCrypto: "BTC-USD",
}

func RegimeBenchmark(class domain.AssetClass) string {
	if b, ok := regimeBenchmarks[class]; ok {
		return b
	}
	return regimeBenchmarks[domain.AssetClassStock]
}

// ClassifyRegime maps a benchmark's 200-day trend onto a regime. Unknown or
// non-finite trend is conservatively neutral; this function never fails.
func ClassifyRegime(trend200 *float64) Regime {
	if trend200 == nil || math.IsNaN(*trend200) || math.IsInf(*trend200, 0) {
		return RegimeNeutral
	}
	t := *trend200
	if t < 0 {
		return RegimeBear
	}
	if t < 0.05 {
		return RegimeNeutral
	}
	return RegimeBull
}

func ParamsForRegime(r Regime) RegimeParams {
	if p, ok := regimeParams[r]; ok {
		return p
	}
	return regimeParams[RegimeNeutral]
}

// RegimeResult is the resolved regime for one asset class during a run.
type RegimeResult struct {
	AssetClass domain.AssetClass
	Benchmark  string
	Trend200   *float64
	Regime     Regime
	Params     RegimeParams
}

func NewRegimeResult(class domain.AssetClass, trend200 *float64) RegimeResult {
	regime := ClassifyRegime(trend200)
	return RegimeResult{
		AssetClass: class,
		Benchmark:  RegimeBenchmark(class),
		Trend200:   trend200,
		Regime:     regime,
		Params:     ParamsForRegime(regime),
	}
}

type cachedRegime struct {
	result   RegimeResult
	cachedAt time.Time
}

// RegimeCache memoizes the per-asset-class regime lookup for a TTL so a scan
// hits the benchmark source at most once per class. The clock is injectable
// and the cache is an explicit dependency of its callers, not process-global
// state.
type RegimeCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[domain.AssetClass]cachedRegime
}

func NewRegimeCache(ttl time.Duration, now func() time.Time) *RegimeCache {
	if now == nil {
		now = time.Now
	}
	return &RegimeCache{
		ttl:     ttl,
		now:     now,
		entries: map[domain.AssetClass]cachedRegime{},
	}
}

// Get returns the cached regime for the class, calling fetch on miss or
// expiry. A fetch failure is returned to the caller and nothing is cached.
func (c *RegimeCache) Get(class domain.AssetClass, fetch func(domain.AssetClass) (RegimeResult, error)) (RegimeResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[class]; ok && c.now().Sub(entry.cachedAt) < c.ttl {
		return entry.result, nil
	}

	result, err := fetch(class)
	if err != nil {
		return RegimeResult{}, err
	}
	c.entries[class] = cachedRegime{result: result, cachedAt: c.now()}
	return result, nil
}

// Invalidate drops all cached entries.
func (c *RegimeCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[domain.AssetClass]cachedRegime{}
}
