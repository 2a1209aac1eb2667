package entity

// TokenInfo holds the details of a specific token. Identity is
// (Chain, Address); symbols repeat across chains.
type TokenInfo struct {
	Address  string    `json:"address" yaml:"address"`
	Symbol   string    `json:"symbol" yaml:"symbol"`
	Name     string    `json:"name" yaml:"name"`
	Decimals uint8     `json:"decimals" yaml:"decimals"`
	Chain    ChainType `json:"chainId" yaml:"chain"`
}

// IsZero reports whether the token carries no identity at all.
func (t TokenInfo) IsZero() bool {
	return t.Address == "" && t.Symbol == ""
}

// SameAsset reports whether two tokens denote the same asset, i.e. the
// same address on the same chain.
func (t TokenInfo) SameAsset(other TokenInfo) bool {
	return t.Chain == other.Chain && t.Address == other.Address
}
