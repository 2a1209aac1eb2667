package port

import (
	"context"

	"cross_swap/internal/domain/entity"
)

// PriceSource fetches the pairwise exchange rate between two tokens from
// an external quote provider.
//
// Implementations must fail with *entity.UnsupportedPairError when a
// token symbol has no provider mapping, and with *entity.PriceSourceError
// on transport or upstream failures. They never substitute a default rate;
// callers decide fallback policy.
type PriceSource interface {
	FetchRate(ctx context.Context, from, to entity.TokenInfo) (entity.RateInfo, error)
}
