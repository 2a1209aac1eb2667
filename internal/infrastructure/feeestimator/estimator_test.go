package feeestimator

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cross_swap/internal/app/port"
	"cross_swap/internal/domain/entity"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

type stubRegistry struct {
	defs map[entity.ChainType]entity.ChainDefinition
}

func (r *stubRegistry) Resolve(chain entity.ChainType) (entity.ChainDefinition, error) {
	def, ok := r.defs[chain]
	if !ok {
		return entity.ChainDefinition{}, &entity.UnknownChainError{Value: chain.String()}
	}
	return def, nil
}

func (r *stubRegistry) All() []entity.ChainDefinition { return nil }

func TestStaticEstimatorSameChain(t *testing.T) {
	e := NewStaticEstimator(decimal.NewFromFloat(0.001), nopLogger{})

	est, err := e.EstimateFee(context.Background(), entity.ChainEthereum, entity.ChainEthereum)
	require.NoError(t, err)
	assert.Equal(t, "0.001", est.Fee.String())
	assert.False(t, est.Fallback)
}

func TestStaticEstimatorCrossChainMultiplier(t *testing.T) {
	e := NewStaticEstimator(decimal.NewFromFloat(0.001), nopLogger{})

	est, err := e.EstimateFee(context.Background(), entity.ChainEthereum, entity.ChainBinance)
	require.NoError(t, err)
	assert.Equal(t, "0.0015", est.Fee.String())
}

func TestStaticEstimatorRejectsUnknownChain(t *testing.T) {
	e := NewStaticEstimator(decimal.NewFromFloat(0.001), nopLogger{})

	_, err := e.EstimateFee(context.Background(), entity.ChainType("solana"), entity.ChainEthereum)
	var feeErr *entity.FeeEstimationError
	require.ErrorAs(t, err, &feeErr)
	assert.Equal(t, entity.ChainType("solana"), feeErr.Chain)
}

func newLive(t *testing.T, gasPrice GasPriceFunc) *LiveEstimator {
	t.Helper()
	registry := &stubRegistry{defs: map[entity.ChainType]entity.ChainDefinition{
		entity.ChainEthereum: {Chain: entity.ChainEthereum, NativeSymbol: "ETH", RPCURL: "https://eth.example.com"},
		entity.ChainBinance:  {Chain: entity.ChainBinance, NativeSymbol: "BNB", RPCURL: "https://bsc.example.com"},
		entity.ChainTron:     {Chain: entity.ChainTron, NativeSymbol: "TRX"},
	}}
	return NewLiveEstimator(registry, gasPrice, time.Second, nopLogger{})
}

func TestLiveEstimatorSameChainGasMath(t *testing.T) {
	// 20 gwei x 180,000 gas = 0.0036 native units.
	e := newLive(t, func(_ context.Context, rpcURL string) (*big.Int, error) {
		assert.Equal(t, "https://eth.example.com", rpcURL)
		return big.NewInt(20_000_000_000), nil
	})

	est, err := e.EstimateFee(context.Background(), entity.ChainEthereum, entity.ChainEthereum)
	require.NoError(t, err)
	assert.Equal(t, "0.0036", est.Fee.String())
	assert.Equal(t, "180000", est.EstimatedGas.String())
}

func TestLiveEstimatorCrossChainGasUnits(t *testing.T) {
	e := newLive(t, func(context.Context, string) (*big.Int, error) {
		return big.NewInt(20_000_000_000), nil
	})

	est, err := e.EstimateFee(context.Background(), entity.ChainEthereum, entity.ChainBinance)
	require.NoError(t, err)
	assert.Equal(t, "0.005", est.Fee.String())
	assert.Equal(t, "250000", est.EstimatedGas.String())
}

func TestLiveEstimatorUnreachableEndpointFails(t *testing.T) {
	rpcErr := errors.New("connection refused")
	e := newLive(t, func(context.Context, string) (*big.Int, error) {
		return nil, rpcErr
	})

	_, err := e.EstimateFee(context.Background(), entity.ChainEthereum, entity.ChainEthereum)
	var feeErr *entity.FeeEstimationError
	require.ErrorAs(t, err, &feeErr)
	assert.ErrorIs(t, err, rpcErr)
}

func TestLiveEstimatorNoEndpointConfigured(t *testing.T) {
	e := newLive(t, func(context.Context, string) (*big.Int, error) {
		t.Fatal("gas price must not be queried without an endpoint")
		return nil, nil
	})

	_, err := e.EstimateFee(context.Background(), entity.ChainTron, entity.ChainTron)
	var feeErr *entity.FeeEstimationError
	require.ErrorAs(t, err, &feeErr)
}

func TestFallbackEstimatorDisabledPropagatesLiveError(t *testing.T) {
	live := newLive(t, func(context.Context, string) (*big.Int, error) {
		return nil, errors.New("rpc down")
	})
	static := NewStaticEstimator(decimal.NewFromFloat(0.001), nopLogger{})
	e := NewFallbackEstimator(live, static, false, nopLogger{})

	_, err := e.EstimateFee(context.Background(), entity.ChainEthereum, entity.ChainBinance)
	var feeErr *entity.FeeEstimationError
	require.ErrorAs(t, err, &feeErr)
}

func TestFallbackEstimatorOptInMarksResult(t *testing.T) {
	live := newLive(t, func(context.Context, string) (*big.Int, error) {
		return nil, errors.New("rpc down")
	})
	static := NewStaticEstimator(decimal.NewFromFloat(0.001), nopLogger{})
	e := NewFallbackEstimator(live, static, true, nopLogger{})

	est, err := e.EstimateFee(context.Background(), entity.ChainEthereum, entity.ChainBinance)
	require.NoError(t, err)
	assert.True(t, est.Fallback)
	assert.Equal(t, "0.0015", est.Fee.String())
}

func TestFallbackEstimatorPassesThroughLiveSuccess(t *testing.T) {
	live := newLive(t, func(context.Context, string) (*big.Int, error) {
		return big.NewInt(20_000_000_000), nil
	})
	static := NewStaticEstimator(decimal.NewFromFloat(0.001), nopLogger{})
	e := NewFallbackEstimator(live, static, true, nopLogger{})

	est, err := e.EstimateFee(context.Background(), entity.ChainEthereum, entity.ChainEthereum)
	require.NoError(t, err)
	assert.False(t, est.Fallback)
	assert.Equal(t, "0.0036", est.Fee.String())
}

var _ port.FeeEstimator = (*StaticEstimator)(nil)
var _ port.FeeEstimator = (*LiveEstimator)(nil)
var _ port.FeeEstimator = (*FallbackEstimator)(nil)
