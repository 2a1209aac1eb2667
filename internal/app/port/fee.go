package port

import (
	"context"

	"cross_swap/internal/domain/entity"
)

// FeeEstimator computes a network-fee estimate in native-currency units
// for a swap between two chains. Callers are agnostic to whether the
// static or the live RPC-backed mode is active behind this contract.
type FeeEstimator interface {
	EstimateFee(ctx context.Context, sourceChain, targetChain entity.ChainType) (entity.FeeEstimate, error)
}
