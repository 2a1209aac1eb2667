// Package service contains the application-layer orchestration: the quote
// computation pipeline and the debounced re-quote controller on top of it.
package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"cross_swap/internal/app/cache"
	"cross_swap/internal/app/port"
	"cross_swap/internal/domain/entity"
	"cross_swap/internal/pkg/metrics"
)

// Pipeline stage identifiers carried by QuoteError.
const (
	StageValidate = "validate"
	StageRate     = "rate"
	StageFee      = "fee"
)

// Default quote computation parameters.
var (
	DefaultSlippageTolerance    = decimal.NewFromFloat(0.005)
	DefaultPriceImpactThreshold = decimal.NewFromFloat(0.05)
	DefaultImpactCoefficient    = decimal.NewFromFloat(0.000001)
	DefaultImpactCap            = decimal.NewFromFloat(0.99)
)

// QuoteConfig tunes the quote pipeline. Zero values take the documented
// defaults, so the zero struct is usable.
type QuoteConfig struct {
	// CacheDuration bounds both the memoization window and the ValidTo
	// horizon stamped on returned quotes.
	CacheDuration time.Duration
	// SlippageTolerance is the safety margin subtracted from the expected
	// output when computing MinimumReceived.
	SlippageTolerance decimal.Decimal
	// PriceImpactThreshold is the cutoff above which a quote is flagged
	// high-impact.
	PriceImpactThreshold decimal.Decimal
	// ImpactCoefficient scales amount x rate into a fractional impact.
	ImpactCoefficient decimal.Decimal
	// ImpactCap bounds the computed impact strictly below 1.
	ImpactCap decimal.Decimal
	// DisableInFlightDedupe turns off single-flight collapsing of
	// concurrent identical requests.
	DisableInFlightDedupe bool
}

func (c QuoteConfig) withDefaults() QuoteConfig {
	if c.CacheDuration <= 0 {
		c.CacheDuration = cache.DefaultDuration
	}
	if c.SlippageTolerance.LessThanOrEqual(decimal.Zero) {
		c.SlippageTolerance = DefaultSlippageTolerance
	}
	if c.PriceImpactThreshold.LessThanOrEqual(decimal.Zero) {
		c.PriceImpactThreshold = DefaultPriceImpactThreshold
	}
	if c.ImpactCoefficient.LessThanOrEqual(decimal.Zero) {
		c.ImpactCoefficient = DefaultImpactCoefficient
	}
	if c.ImpactCap.LessThanOrEqual(decimal.Zero) || c.ImpactCap.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		c.ImpactCap = DefaultImpactCap
	}
	return c
}

// QuoteServiceImpl implements port.QuoteService: validate, cache lookup,
// rate fetch, impact, fee, minimum received, route assembly, cache write.
// Explicitly constructed and injectable; it owns no global state.
type QuoteServiceImpl struct {
	priceSource  port.PriceSource
	feeEstimator port.FeeEstimator
	quoteCache   port.QuoteCache
	cfg          QuoteConfig
	logger       port.Logger
	group        singleflight.Group
	now          func() time.Time
}

// NewQuoteService creates a QuoteServiceImpl.
func NewQuoteService(
	priceSource port.PriceSource,
	feeEstimator port.FeeEstimator,
	quoteCache port.QuoteCache,
	cfg QuoteConfig,
	logger port.Logger,
) *QuoteServiceImpl {
	return &QuoteServiceImpl{
		priceSource:  priceSource,
		feeEstimator: feeEstimator,
		quoteCache:   quoteCache,
		cfg:          cfg.withDefaults(),
		logger:       logger,
		now:          time.Now,
	}
}

// GetQuote implements port.QuoteService. On any stage failure it returns a
// *entity.QuoteError wrapping the cause; no partial quote is ever built.
func (s *QuoteServiceImpl) GetQuote(ctx context.Context, from, to entity.TokenInfo, amount string, sourceChain, targetChain entity.ChainType) (entity.Quote, error) {
	amountDec, err := s.validate(from, to, amount, sourceChain, targetChain)
	if err != nil {
		metrics.QuoteRequestsTotal.WithLabelValues("error").Inc()
		return entity.Quote{}, &entity.QuoteError{Stage: StageValidate, Err: err}
	}

	key := cache.Key(from.Symbol, to.Symbol, amount, sourceChain, targetChain)
	if quote, ok := s.quoteCache.Get(key); ok {
		metrics.QuoteRequestsTotal.WithLabelValues("cache_hit").Inc()
		s.logger.Debug("Quote served from cache", "key", key)
		return quote, nil
	}

	if s.cfg.DisableInFlightDedupe {
		return s.compute(ctx, from, to, amount, amountDec, sourceChain, targetChain, key)
	}

	result, err, shared := s.group.Do(key, func() (any, error) {
		return s.compute(ctx, from, to, amount, amountDec, sourceChain, targetChain, key)
	})
	if err != nil {
		return entity.Quote{}, err
	}
	if shared {
		s.logger.Debug("Quote request collapsed into in-flight computation", "key", key)
	}
	return result.(entity.Quote), nil
}

func (s *QuoteServiceImpl) validate(from, to entity.TokenInfo, amount string, sourceChain, targetChain entity.ChainType) (decimal.Decimal, error) {
	if from.IsZero() {
		return decimal.Decimal{}, &entity.InvalidParamsError{Reason: "source token is required"}
	}
	if to.IsZero() {
		return decimal.Decimal{}, &entity.InvalidParamsError{Reason: "destination token is required"}
	}
	if from.SameAsset(to) {
		return decimal.Decimal{}, &entity.InvalidParamsError{Reason: "source and destination tokens are the same asset"}
	}
	if !sourceChain.Valid() {
		return decimal.Decimal{}, &entity.InvalidParamsError{Reason: "unknown source chain " + sourceChain.String()}
	}
	if !targetChain.Valid() {
		return decimal.Decimal{}, &entity.InvalidParamsError{Reason: "unknown target chain " + targetChain.String()}
	}
	amountDec, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Decimal{}, &entity.InvalidParamsError{Reason: "amount is not a valid number"}
	}
	if amountDec.LessThanOrEqual(decimal.Zero) {
		return decimal.Decimal{}, &entity.InvalidParamsError{Reason: "amount must be greater than zero"}
	}
	return amountDec, nil
}

func (s *QuoteServiceImpl) compute(ctx context.Context, from, to entity.TokenInfo, amount string, amountDec decimal.Decimal, sourceChain, targetChain entity.ChainType, key string) (entity.Quote, error) {
	started := s.now()

	rateInfo, err := s.priceSource.FetchRate(ctx, from, to)
	if err != nil {
		metrics.QuoteRequestsTotal.WithLabelValues("error").Inc()
		return entity.Quote{}, &entity.QuoteError{Stage: StageRate, Err: err}
	}

	impact := s.priceImpact(amountDec, rateInfo.Rate)

	feeEstimate, err := s.feeEstimator.EstimateFee(ctx, sourceChain, targetChain)
	if err != nil {
		metrics.QuoteRequestsTotal.WithLabelValues("error").Inc()
		return entity.Quote{}, &entity.QuoteError{Stage: StageFee, Err: err}
	}

	toAmount := amountDec.Mul(rateInfo.Rate)
	minimumReceived := s.minimumReceived(toAmount, impact)
	route := s.route(from, to, rateInfo.Path)

	quote := entity.Quote{
		FromToken:       from,
		ToToken:         to,
		FromAmount:      amountDec.String(),
		ToAmount:        toAmount.String(),
		ExchangeRate:    rateInfo.Rate.String(),
		PriceImpact:     impact.String(),
		NetworkFee:      feeEstimate.Fee.String(),
		MinimumReceived: minimumReceived.String(),
		Route:           route,
		ValidTo:         s.now().Add(s.cfg.CacheDuration).Unix(),
		HighImpact:      impact.GreaterThanOrEqual(s.cfg.PriceImpactThreshold),
		FeeFallback:     feeEstimate.Fallback,
	}
	if !feeEstimate.EstimatedGas.IsZero() {
		quote.EstimatedGas = feeEstimate.EstimatedGas.String()
	}

	s.quoteCache.Put(key, quote)

	metrics.QuoteRequestsTotal.WithLabelValues("ok").Inc()
	metrics.QuoteDurationSeconds.Observe(s.now().Sub(started).Seconds())
	s.logger.Info("Quote computed",
		"fromToken", from.Symbol,
		"toToken", to.Symbol,
		"amount", amount,
		"sourceChain", sourceChain.String(),
		"targetChain", targetChain.String(),
		"rate", quote.ExchangeRate,
		"highImpact", quote.HighImpact)
	return quote, nil
}

// priceImpact approximates the fractional rate degradation as a linear
// function of the trade's notional size, capped strictly below 1. Real
// liquidity depth is out of reach here, so larger trades simply degrade
// proportionally.
func (s *QuoteServiceImpl) priceImpact(amount, rate decimal.Decimal) decimal.Decimal {
	impact := amount.Mul(rate).Mul(s.cfg.ImpactCoefficient)
	if impact.GreaterThan(s.cfg.ImpactCap) {
		return s.cfg.ImpactCap
	}
	return impact
}

// minimumReceived = toAmount x (1 - impact - slippage), clamped to zero.
func (s *QuoteServiceImpl) minimumReceived(toAmount, impact decimal.Decimal) decimal.Decimal {
	margin := decimal.NewFromInt(1).Sub(impact).Sub(s.cfg.SlippageTolerance)
	guaranteed := toAmount.Mul(margin)
	if guaranteed.IsNegative() {
		return decimal.Zero
	}
	return guaranteed
}

// route carries the price source's path when it knows one, pinned to the
// swap's endpoint symbols, and falls back to the direct two-hop route.
func (s *QuoteServiceImpl) route(from, to entity.TokenInfo, path []string) []string {
	if len(path) < 2 || path[0] != from.Symbol || path[len(path)-1] != to.Symbol {
		return []string{from.Symbol, to.Symbol}
	}
	route := make([]string, len(path))
	copy(route, path)
	return route
}
