package l3_service

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"scanner/internal/domain"
)

type MatchInput struct {
	Holdings []domain.RawHolding
	Universe []domain.AssetRecord

	// SymbolMap is an externally maintained ISIN -> universe symbol table,
	// consulted when the ISIN itself is not in the universe.
	SymbolMap map[string]string
}

type MatchResult struct {
	Matched   []domain.Holding
	Unmatched []domain.UnmatchedHolding

	// TotalValue covers every holding, matched or not. Unmatched positions
	// are excluded from the diff but never from the denominator.
	TotalValue decimal.Decimal
}

// MatcherService resolves broker holdings to universe symbols.
type MatcherService interface {
	Match(in MatchInput) MatchResult
}

type matcherServiceHandler struct {
	Logger *zap.SugaredLogger
}

func NewMatcherService(logger *zap.SugaredLogger) MatcherService {
	return matcherServiceHandler{Logger: logger}
}

// matcher rule identifiers, in priority order
const (
	matchMethodISIN          = "isin"
	matchMethodISINMap       = "isin_map"
	matchMethodWKN           = "wkn"
	matchMethodNameExact     = "name_exact"
	matchMethodTickerExact   = "ticker_exact"
	matchMethodCryptoPartial = "crypto_partial"
	matchMethodCryptoUSD     = "crypto_usd_rule"
)

type universeIndex struct {
	records  []domain.AssetRecord
	byISIN   map[string]int
	byWKN    map[string]int
	byName   map[string]int
	bySymbol map[string]int
}

func buildUniverseIndex(universe []domain.AssetRecord) universeIndex {
	idx := universeIndex{
		records:  universe,
		byISIN:   map[string]int{},
		byWKN:    map[string]int{},
		byName:   map[string]int{},
		bySymbol: map[string]int{},
	}
	// first occurrence wins so matching stays deterministic
	for i, r := range universe {
		if isin := normalizeCode(r.ISIN); isin != "" {
			if _, ok := idx.byISIN[isin]; !ok {
				idx.byISIN[isin] = i
			}
		}
		if wkn := normalizeCode(r.WKN); wkn != "" {
			if _, ok := idx.byWKN[wkn]; !ok {
				idx.byWKN[wkn] = i
			}
		}
		if name := strings.ToUpper(strings.TrimSpace(r.Name)); name != "" {
			if _, ok := idx.byName[name]; !ok {
				idx.byName[name] = i
			}
		}
		if symbol := strings.ToUpper(strings.TrimSpace(r.Symbol)); symbol != "" {
			if _, ok := idx.bySymbol[symbol]; !ok {
				idx.bySymbol[symbol] = i
			}
		}
	}
	return idx
}

// Match runs each holding through the rule chain. The first rule that
// succeeds wins; nothing second-guesses an earlier rule. Unresolved holdings
// are returned with a reason instead of being dropped.
func (h matcherServiceHandler) Match(in MatchInput) MatchResult {
	idx := buildUniverseIndex(in.Universe)
	out := MatchResult{TotalValue: decimal.Zero}

	for _, holding := range in.Holdings {
		out.TotalValue = out.TotalValue.Add(holding.Value)

		record, method := matchHolding(holding, idx, in.SymbolMap)
		if record == nil {
			out.Unmatched = append(out.Unmatched, domain.UnmatchedHolding{
				RawHolding: holding,
				Reason:     fmt.Sprintf("no match for %q (isin=%q, wkn=%q)", holding.Name, holding.ISIN, holding.WKN),
			})
			continue
		}

		out.Matched = append(out.Matched, domain.Holding{
			Ticker:      record.Symbol,
			AssetClass:  record.Class(),
			Value:       holding.Value,
			MatchMethod: method,
			Record:      record,
		})
	}

	if len(out.Unmatched) > 0 {
		h.Logger.Warnw("holdings left unmatched",
			"unmatched", len(out.Unmatched),
			"matched", len(out.Matched),
		)
	}
	return out
}

func matchHolding(holding domain.RawHolding, idx universeIndex, symbolMap map[string]string) (*domain.AssetRecord, string) {
	isCrypto := holding.AssetClass == domain.AssetClassCrypto
	isin := normalizeCode(holding.ISIN)
	wkn := normalizeCode(holding.WKN)
	name := strings.ToUpper(strings.TrimSpace(holding.Name))

	// 1) exact ISIN against the universe
	if isin != "" {
		if i, ok := idx.byISIN[isin]; ok {
			return &idx.records[i], matchMethodISIN
		}
		// 2) ISIN through the external symbol map
		if mapped, ok := symbolMap[isin]; ok {
			if i, ok := idx.bySymbol[strings.ToUpper(strings.TrimSpace(mapped))]; ok {
				return &idx.records[i], matchMethodISINMap
			}
		}
	}

	// 3) WKN, stocks only
	if wkn != "" && !isCrypto {
		if i, ok := idx.byWKN[wkn]; ok {
			return &idx.records[i], matchMethodWKN
		}
	}

	if name != "" {
		// 4) exact name, then exact ticker
		if i, ok := idx.byName[name]; ok {
			return &idx.records[i], matchMethodNameExact
		}
		if i, ok := idx.bySymbol[name]; ok {
			return &idx.records[i], matchMethodTickerExact
		}

		if isCrypto {
			// 5) partial symbol match for crypto free text
			for i, r := range idx.records {
				if !r.IsCrypto() {
					continue
				}
				if strings.Contains(strings.ToUpper(r.Symbol), name) {
					return &idx.records[i], matchMethodCryptoPartial
				}
			}

			// 6) the BASE -> BASE-USD listing convention
			if !strings.HasSuffix(name, "-USD") {
				if i, ok := idx.bySymbol[name+"-USD"]; ok {
					return &idx.records[i], matchMethodCryptoUSD
				}
			}
		}
	}

	return nil, ""
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(code), " ", ""))
}
