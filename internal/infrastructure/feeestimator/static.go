// Package feeestimator provides the two network-fee estimation modes
// behind the port.FeeEstimator contract: a static configuration-driven
// estimate and a live gas-price estimate against the chain's RPC endpoint.
package feeestimator

import (
	"context"

	"github.com/shopspring/decimal"

	"cross_swap/internal/app/port"
	"cross_swap/internal/domain/entity"
)

// DefaultBaseFee is the static per-swap fee in native units.
var DefaultBaseFee = decimal.NewFromFloat(0.001)

// crossChainMultiplier prices the bridging overhead of a cross-chain swap.
var crossChainMultiplier = decimal.NewFromFloat(1.5)

// StaticEstimator implements port.FeeEstimator with a configured base fee:
// same-chain swaps pay baseFee, cross-chain swaps pay baseFee x 1.5.
type StaticEstimator struct {
	baseFee decimal.Decimal
	logger  port.Logger
}

// NewStaticEstimator creates a StaticEstimator. A non-positive base fee
// falls back to DefaultBaseFee.
func NewStaticEstimator(baseFee decimal.Decimal, logger port.Logger) *StaticEstimator {
	if baseFee.LessThanOrEqual(decimal.Zero) {
		baseFee = DefaultBaseFee
	}
	return &StaticEstimator{baseFee: baseFee, logger: logger}
}

// EstimateFee implements port.FeeEstimator.
func (e *StaticEstimator) EstimateFee(_ context.Context, sourceChain, targetChain entity.ChainType) (entity.FeeEstimate, error) {
	if !sourceChain.Valid() {
		return entity.FeeEstimate{}, &entity.FeeEstimationError{Chain: sourceChain, Message: "unknown source chain"}
	}
	if !targetChain.Valid() {
		return entity.FeeEstimate{}, &entity.FeeEstimationError{Chain: targetChain, Message: "unknown target chain"}
	}

	fee := e.baseFee
	if sourceChain != targetChain {
		fee = fee.Mul(crossChainMultiplier)
	}
	e.logger.Debug("Static network fee estimated",
		"sourceChain", sourceChain.String(),
		"targetChain", targetChain.String(),
		"fee", fee.String())
	return entity.FeeEstimate{Fee: fee}, nil
}
