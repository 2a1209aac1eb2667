package chainregistry

import (
	"cross_swap/internal/app/port"
	"cross_swap/internal/domain/entity"
)

// Predefined chain definitions for the supported enumeration.
var ( //nolint:gochecknoglobals // Global for definitions
	Ethereum = entity.ChainDefinition{
		Chain:            entity.ChainEthereum,
		Name:             "Ethereum",
		NativeSymbol:     "ETH",
		Decimals:         18,
		RPCURL:           "https://ethereum-rpc.publicnode.com",
		FallbackRPCURLs:  []string{"https://rpc.ankr.com/eth", "https://ethereum.publicnode.com"},
		BlockExplorerURL: "https://etherscan.io",
	}
	Binance = entity.ChainDefinition{
		Chain:            entity.ChainBinance,
		Name:             "Binance Smart Chain",
		NativeSymbol:     "BNB",
		Decimals:         18,
		RPCURL:           "https://bsc-dataseed.binance.org",
		FallbackRPCURLs:  []string{"https://bsc.publicnode.com"},
		BlockExplorerURL: "https://bscscan.com",
	}
	// Tron has no EVM JSON-RPC endpoint; live gas estimation is not
	// available for it and the static fee mode applies.
	Tron = entity.ChainDefinition{
		Chain:            entity.ChainTron,
		Name:             "Tron",
		NativeSymbol:     "TRX",
		Decimals:         6,
		BlockExplorerURL: "https://tronscan.org",
	}
	Polygon = entity.ChainDefinition{
		Chain:            entity.ChainPolygon,
		Name:             "Polygon",
		NativeSymbol:     "MATIC",
		Decimals:         18,
		RPCURL:           "https://polygon-rpc.com",
		FallbackRPCURLs:  []string{"https://polygon.publicnode.com"},
		BlockExplorerURL: "https://polygonscan.com",
	}
	PolygonZkEVM = entity.ChainDefinition{
		Chain:            entity.ChainPolygonZkEVM,
		Name:             "Polygon zkEVM",
		NativeSymbol:     "ETH",
		Decimals:         18,
		RPCURL:           "https://zkevm-rpc.com",
		BlockExplorerURL: "https://zkevm.polygonscan.com",
	}
)

// Registry implements port.ChainRegistry over the predefined definitions.
type Registry struct {
	logger port.Logger
	defs   map[entity.ChainType]entity.ChainDefinition
}

// NewRegistry creates a Registry. rpcOverrides replaces the default RPC
// URL for the named chain identifiers; unknown identifiers in the override
// map are logged and ignored rather than creating new chains.
func NewRegistry(logger port.Logger, rpcOverrides map[string]string) port.ChainRegistry {
	defs := map[entity.ChainType]entity.ChainDefinition{
		entity.ChainEthereum:     Ethereum,
		entity.ChainBinance:      Binance,
		entity.ChainTron:         Tron,
		entity.ChainPolygon:      Polygon,
		entity.ChainPolygonZkEVM: PolygonZkEVM,
	}

	for identifier, url := range rpcOverrides {
		chain, err := entity.ParseChainType(identifier)
		if err != nil {
			logger.Warn("Ignoring RPC override for unknown chain identifier", "identifier", identifier)
			continue
		}
		def := defs[chain]
		def.RPCURL = url
		defs[chain] = def
		logger.Info("RPC URL overridden from config", "chain", identifier, "url", url)
	}

	logger.Info("Chain registry initialized", "chains", len(defs))
	return &Registry{logger: logger, defs: defs}
}

// Resolve returns the definition for chain, failing closed for anything
// outside the supported enumeration.
func (r *Registry) Resolve(chain entity.ChainType) (entity.ChainDefinition, error) {
	def, ok := r.defs[chain]
	if !ok {
		return entity.ChainDefinition{}, &entity.UnknownChainError{Value: chain.String()}
	}
	return def, nil
}

// All returns every definition in the enumeration's stable order.
func (r *Registry) All() []entity.ChainDefinition {
	all := make([]entity.ChainDefinition, 0, len(r.defs))
	for _, chain := range entity.AllChainTypes() {
		if def, ok := r.defs[chain]; ok {
			all = append(all, def)
		}
	}
	return all
}
