// Package entity defines the domain model of the swap quoting service:
// chains, tokens, quotes and the typed errors the pipeline reports.
package entity

// ChainType identifies a supported blockchain. The set is closed: values
// outside the enumeration are rejected at the boundary, never passed
// through.
type ChainType string

const (
	ChainEthereum     ChainType = "ethereum"
	ChainBinance      ChainType = "binance"
	ChainTron         ChainType = "tron"
	ChainPolygon      ChainType = "polygon"
	ChainPolygonZkEVM ChainType = "polygon_zkevm"
)

// AllChainTypes returns the supported chains in stable order.
func AllChainTypes() []ChainType {
	return []ChainType{
		ChainEthereum,
		ChainBinance,
		ChainTron,
		ChainPolygon,
		ChainPolygonZkEVM,
	}
}

// Valid reports whether the value is one of the supported chains.
func (c ChainType) Valid() bool {
	switch c {
	case ChainEthereum, ChainBinance, ChainTron, ChainPolygon, ChainPolygonZkEVM:
		return true
	}
	return false
}

func (c ChainType) String() string {
	return string(c)
}

// ParseChainType converts an external identifier into a ChainType,
// failing closed on anything outside the supported set.
func ParseChainType(value string) (ChainType, error) {
	c := ChainType(value)
	if !c.Valid() {
		return "", &UnknownChainError{Value: value}
	}
	return c, nil
}

// UnknownChainError reports a chain identifier outside the supported set.
type UnknownChainError struct {
	Value string
}

func (e *UnknownChainError) Error() string {
	return "unknown chain: " + e.Value
}

// ChainDefinition carries the static metadata of a supported chain.
type ChainDefinition struct {
	Chain            ChainType
	Name             string
	NativeSymbol     string
	Decimals         int32
	RPCURL           string
	FallbackRPCURLs  []string
	BlockExplorerURL string
}
