package entity

import "fmt"

// InvalidParamsError reports bad caller input. Never retried; no external
// calls are made once validation fails.
type InvalidParamsError struct {
	Reason string
}

func (e *InvalidParamsError) Error() string {
	return fmt.Sprintf("invalid swap parameters: %s", e.Reason)
}

// UnsupportedPairError reports a token symbol with no known price source
// identifier. Never retried.
type UnsupportedPairError struct {
	Symbol string
}

func (e *UnsupportedPairError) Error() string {
	return fmt.Sprintf("unsupported token symbol %q: no price source mapping", e.Symbol)
}

// PriceSourceError reports an upstream quote-provider failure, carrying
// the upstream HTTP status when one was received (0 for transport-level
// failures). Retried inside the adapter for idempotent GETs only.
type PriceSourceError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *PriceSourceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("price source failed with status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("price source failed: %s", e.Message)
}

func (e *PriceSourceError) Unwrap() error { return e.Err }

// FeeEstimationError reports an unreachable RPC endpoint or a malformed
// gas-price response.
type FeeEstimationError struct {
	Chain   ChainType
	Message string
	Err     error
}

func (e *FeeEstimationError) Error() string {
	return fmt.Sprintf("fee estimation failed for chain %q: %s", e.Chain, e.Message)
}

func (e *FeeEstimationError) Unwrap() error { return e.Err }

// QuoteError wraps whichever pipeline stage failed while computing a
// quote. The original cause is preserved for diagnostics via Unwrap.
type QuoteError struct {
	Stage string
	Err   error
}

func (e *QuoteError) Error() string {
	return fmt.Sprintf("quote pipeline failed at stage %q: %v", e.Stage, e.Err)
}

func (e *QuoteError) Unwrap() error { return e.Err }
