package feeestimator

import (
	"context"

	"cross_swap/internal/app/port"
	"cross_swap/internal/domain/entity"
	"cross_swap/internal/pkg/metrics"
)

// FallbackEstimator wraps a live estimator with an explicit, opt-in static
// fallback. The substitution is never silent: fallback estimates are
// marked on the result and counted, so callers can warn users instead of
// trusting defaulted data.
type FallbackEstimator struct {
	live    port.FeeEstimator
	static  port.FeeEstimator
	enabled bool
	logger  port.Logger
}

// NewFallbackEstimator creates a FallbackEstimator. With enabled false it
// is a transparent pass-through to the live estimator.
func NewFallbackEstimator(live, static port.FeeEstimator, enabled bool, logger port.Logger) *FallbackEstimator {
	return &FallbackEstimator{live: live, static: static, enabled: enabled, logger: logger}
}

// EstimateFee implements port.FeeEstimator.
func (e *FallbackEstimator) EstimateFee(ctx context.Context, sourceChain, targetChain entity.ChainType) (entity.FeeEstimate, error) {
	est, liveErr := e.live.EstimateFee(ctx, sourceChain, targetChain)
	if liveErr == nil {
		return est, nil
	}
	if !e.enabled {
		return entity.FeeEstimate{}, liveErr
	}

	staticEst, err := e.static.EstimateFee(ctx, sourceChain, targetChain)
	if err != nil {
		// The static path failing means the inputs are bad; the live error
		// stays the primary diagnostic.
		return entity.FeeEstimate{}, liveErr
	}

	metrics.FeeFallbacksTotal.Inc()
	e.logger.Warn("Live fee estimation failed, serving marked static fallback",
		"sourceChain", sourceChain.String(),
		"targetChain", targetChain.String(),
		"error", liveErr)
	staticEst.Fallback = true
	return staticEst, nil
}
