package domain

import "github.com/shopspring/decimal"

// RawHolding is one row of a broker export, before it has been resolved
// against the universe. Name is human-entered free text; ISIN and WKN are
// optional identity codes.
type RawHolding struct {
	Name       string
	ISIN       string
	WKN        string
	AssetClass AssetClass
	Value      decimal.Decimal
}

// Holding is a resolved current position. MatchMethod records which matcher
// rule produced the resolution.
type Holding struct {
	Ticker      string
	AssetClass  AssetClass
	Value       decimal.Decimal
	MatchMethod string
	Record      *AssetRecord
}

// UnmatchedHolding is a broker position no matcher rule could resolve. It is
// reported, never dropped; its value still counts toward the portfolio total.
type UnmatchedHolding struct {
	RawHolding
	Reason string
}
