package entity

import "github.com/shopspring/decimal"

// Quote is a computed, time-bounded estimate of a token-to-token exchange
// including fees and the minimum-received guarantee. Immutable once
// returned by the quote service. All numeric fields are decimal strings to
// avoid binary-float drift on the wire.
type Quote struct {
	FromToken       TokenInfo `json:"fromToken"`
	ToToken         TokenInfo `json:"toToken"`
	FromAmount      string    `json:"fromAmount"`
	ToAmount        string    `json:"toAmount"`
	ExchangeRate    string    `json:"exchangeRate"`
	PriceImpact     string    `json:"priceImpact"`
	NetworkFee      string    `json:"networkFee"`
	MinimumReceived string    `json:"minimumReceived"`
	Route           []string  `json:"route"`
	EstimatedGas    string    `json:"estimatedGas,omitempty"`
	// ValidTo is a unix timestamp (seconds); after it the quote is stale
	// and must be re-fetched before use.
	ValidTo int64 `json:"validTo,omitempty"`
	// HighImpact flags quotes whose price impact crossed the configured
	// warning threshold. Surfaced, never swallowed.
	HighImpact bool `json:"highImpact"`
	// FeeFallback marks a network fee produced by the opt-in static
	// fallback after a live estimate failed.
	FeeFallback bool `json:"feeFallback,omitempty"`
}

// RateInfo is the normalized result of a price source lookup.
type RateInfo struct {
	// Rate is how many units of the destination token one unit of the
	// source token buys.
	Rate decimal.Decimal
	// Path lists the route waypoint symbols when the source knows a
	// multi-hop path; empty when only a direct rate is available.
	Path []string
}

// FeeEstimate is the normalized result of a network fee estimation, in
// native-currency units of the source chain.
type FeeEstimate struct {
	Fee decimal.Decimal
	// EstimatedGas is the gas-unit figure behind a live estimate; zero for
	// the static mode.
	EstimatedGas decimal.Decimal
	// Fallback is set when the estimate came from the opt-in static
	// fallback rather than the configured live mode.
	Fallback bool
}
