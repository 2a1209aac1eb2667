package chainregistry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cross_swap/internal/domain/entity"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

func TestResolveKnownChain(t *testing.T) {
	r := NewRegistry(nopLogger{}, nil)

	def, err := r.Resolve(entity.ChainEthereum)
	require.NoError(t, err)
	assert.Equal(t, "ETH", def.NativeSymbol)
	assert.NotEmpty(t, def.RPCURL)
	assert.Equal(t, "https://etherscan.io", def.BlockExplorerURL)
}

func TestResolveUnknownChainFailsClosed(t *testing.T) {
	r := NewRegistry(nopLogger{}, nil)

	_, err := r.Resolve(entity.ChainType("solana"))
	require.Error(t, err)

	var unknownErr *entity.UnknownChainError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "solana", unknownErr.Value)
}

func TestRPCOverrideAppliesToKnownChainOnly(t *testing.T) {
	r := NewRegistry(nopLogger{}, map[string]string{
		"ethereum": "https://eth.example.com",
		"solana":   "https://sol.example.com",
	})

	def, err := r.Resolve(entity.ChainEthereum)
	require.NoError(t, err)
	assert.Equal(t, "https://eth.example.com", def.RPCURL)

	assert.Len(t, r.All(), 5)
}

func TestAllReturnsStableOrder(t *testing.T) {
	r := NewRegistry(nopLogger{}, nil)

	all := r.All()
	require.Len(t, all, 5)
	assert.Equal(t, entity.ChainEthereum, all[0].Chain)
	assert.Equal(t, entity.ChainPolygonZkEVM, all[4].Chain)
}
