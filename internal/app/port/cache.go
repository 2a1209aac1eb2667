package port

import "cross_swap/internal/domain/entity"

// QuoteCache is a time-bounded, single-process memoization of computed
// quotes. Get treats expired entries as absent (lazy expiry, no background
// sweep); Put is a last-writer-wins overwrite.
type QuoteCache interface {
	Get(key string) (entity.Quote, bool)
	Put(key string, quote entity.Quote)
}
