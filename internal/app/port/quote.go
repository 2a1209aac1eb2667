package port

import (
	"context"

	"cross_swap/internal/domain/entity"
)

// QuoteService is the quote computation pipeline consumed by the swap
// form: validate, cache lookup, rate fetch, impact, fee, minimum received,
// route, cache write. Failures are *entity.QuoteError values wrapping the
// first failing stage; no partial quote is ever returned.
type QuoteService interface {
	GetQuote(ctx context.Context, from, to entity.TokenInfo, amount string, sourceChain, targetChain entity.ChainType) (entity.Quote, error)
}
