package feeestimator

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"

	"cross_swap/internal/app/port"
	"cross_swap/internal/domain/entity"
)

// Fixed gas-unit estimates per swap shape.
const (
	gasUnitsSameChain  = 180_000
	gasUnitsCrossChain = 250_000
)

// nativeExponent converts wei-scale gas prices into native units.
const nativeExponent = -18

// GasPriceFunc observes the current gas price at an RPC endpoint, in wei.
type GasPriceFunc func(ctx context.Context, rpcURL string) (*big.Int, error)

// DialGasPrice is the production GasPriceFunc: it dials the endpoint and
// issues a single gas-price query.
func DialGasPrice(ctx context.Context, rpcURL string) (*big.Int, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}
	defer client.Close()
	return client.SuggestGasPrice(ctx)
}

// LiveEstimator implements port.FeeEstimator by multiplying an observed
// gas price by a fixed gas-unit estimate. It never falls back to the
// static estimate on its own; wrap it in a FallbackEstimator for that.
type LiveEstimator struct {
	registry   port.ChainRegistry
	gasPrice   GasPriceFunc
	rpcTimeout time.Duration
	logger     port.Logger
}

// NewLiveEstimator creates a LiveEstimator. A nil gasPrice uses
// DialGasPrice.
func NewLiveEstimator(registry port.ChainRegistry, gasPrice GasPriceFunc, rpcTimeout time.Duration, logger port.Logger) *LiveEstimator {
	if gasPrice == nil {
		gasPrice = DialGasPrice
	}
	if rpcTimeout <= 0 {
		rpcTimeout = 10 * time.Second
	}
	return &LiveEstimator{
		registry:   registry,
		gasPrice:   gasPrice,
		rpcTimeout: rpcTimeout,
		logger:     logger,
	}
}

// EstimateFee implements port.FeeEstimator. The fee is charged on the
// source chain, so its gas price and native currency apply.
func (e *LiveEstimator) EstimateFee(ctx context.Context, sourceChain, targetChain entity.ChainType) (entity.FeeEstimate, error) {
	if !targetChain.Valid() {
		return entity.FeeEstimate{}, &entity.FeeEstimationError{Chain: targetChain, Message: "unknown target chain"}
	}

	def, err := e.registry.Resolve(sourceChain)
	if err != nil {
		return entity.FeeEstimate{}, &entity.FeeEstimationError{Chain: sourceChain, Message: "unknown source chain", Err: err}
	}
	if def.RPCURL == "" {
		return entity.FeeEstimate{}, &entity.FeeEstimationError{Chain: sourceChain, Message: "no RPC endpoint configured for live estimation"}
	}

	rpcCtx, cancel := context.WithTimeout(ctx, e.rpcTimeout)
	defer cancel()

	gasPriceWei, err := e.gasPrice(rpcCtx, def.RPCURL)
	if err != nil {
		return entity.FeeEstimate{}, &entity.FeeEstimationError{Chain: sourceChain, Message: "gas price query failed", Err: err}
	}
	if gasPriceWei == nil || gasPriceWei.Sign() <= 0 {
		return entity.FeeEstimate{}, &entity.FeeEstimationError{Chain: sourceChain, Message: "malformed gas price response"}
	}

	gasUnits := int64(gasUnitsSameChain)
	if sourceChain != targetChain {
		gasUnits = gasUnitsCrossChain
	}

	units := decimal.NewFromInt(gasUnits)
	fee := decimal.NewFromBigInt(gasPriceWei, nativeExponent).Mul(units)

	e.logger.Debug("Live network fee estimated",
		"sourceChain", sourceChain.String(),
		"targetChain", targetChain.String(),
		"gasPriceWei", gasPriceWei.String(),
		"gasUnits", gasUnits,
		"fee", fee.String())
	return entity.FeeEstimate{Fee: fee, EstimatedGas: units}, nil
}
