package port

import "cross_swap/internal/domain/entity"

// ChainRegistry resolves chain identifiers to their network metadata.
// Resolve fails closed for identifiers outside the supported enumeration;
// it never returns another chain's data silently.
type ChainRegistry interface {
	Resolve(chain entity.ChainType) (entity.ChainDefinition, error)
	All() []entity.ChainDefinition
}

// TokenCatalog maps (chain, symbol) to token metadata.
type TokenCatalog interface {
	TokensByChain(chain entity.ChainType) ([]entity.TokenInfo, error)
	// FindBySymbol performs a case-insensitive symbol lookup on one chain.
	FindBySymbol(chain entity.ChainType, symbol string) (entity.TokenInfo, bool)
}
