package httpclient

import (
	"context"
	stdjson "encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	jsoniter "github.com/json-iterator/go"
	gocache "github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"cross_swap/internal/domain/entity"
	"cross_swap/internal/pkg/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// rateScale is the decimal precision of computed exchange rates; enough to
// avoid visible rounding for amounts up to 1e9 units.
const rateScale = 18

// DefaultSymbolToID maps token symbols to CoinGecko asset identifiers.
// Pairs whose symbols are absent here are unsupported.
var DefaultSymbolToID = map[string]string{
	"ETH":   "ethereum",
	"WETH":  "weth",
	"BNB":   "binancecoin",
	"WBNB":  "wbnb",
	"TRX":   "tron",
	"MATIC": "matic-network",
	"USDT":  "tether",
	"USDC":  "usd-coin",
	"DAI":   "dai",
	"BTC":   "bitcoin",
	"WBTC":  "wrapped-bitcoin",
}

// Config holds the CoinGecko client settings.
type Config struct {
	BaseURL            string
	APIKey             string
	Timeout            time.Duration
	RetryCount         int
	RetryDelay         time.Duration
	RateLimitPerSecond float64
	RateBurst          int
	// PriceTTL bounds the per-id USD price memoization; it is deliberately
	// shorter than the quote cache window.
	PriceTTL time.Duration
}

// retryableStatuses are the upstream statuses worth a backed-off retry on
// this idempotent GET. Everything else fails immediately.
var retryableStatuses = map[int]struct{}{
	fasthttp.StatusRequestTimeout:      {},
	fasthttp.StatusTooManyRequests:     {},
	fasthttp.StatusInternalServerError: {},
	fasthttp.StatusBadGateway:          {},
	fasthttp.StatusServiceUnavailable:  {},
	fasthttp.StatusGatewayTimeout:      {},
}

// CoinGeckoClient implements port.PriceSource against the CoinGecko
// /simple/price endpoint. Both tokens' USD prices are fetched in a single
// request and combined into a pairwise rate.
type CoinGeckoClient struct {
	client     *fasthttp.Client
	cfg        Config
	logger     *zap.Logger
	limiter    *rate.Limiter
	prices     *gocache.Cache
	symbolToID map[string]string
}

// NewCoinGeckoClient creates a new CoinGeckoClient. A nil symbolToID uses
// DefaultSymbolToID.
func NewCoinGeckoClient(cfg Config, logger *zap.Logger, symbolToID map[string]string) *CoinGeckoClient {
	if symbolToID == nil {
		symbolToID = DefaultSymbolToID
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.RateLimitPerSecond <= 0 {
		cfg.RateLimitPerSecond = 5
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = 10
	}
	if cfg.PriceTTL <= 0 {
		cfg.PriceTTL = 15 * time.Second
	}
	return &CoinGeckoClient{
		client:     &fasthttp.Client{},
		cfg:        cfg,
		logger:     logger.Named("CoinGeckoClient"),
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimitPerSecond), cfg.RateBurst),
		prices:     gocache.New(cfg.PriceTTL, 2*cfg.PriceTTL),
		symbolToID: symbolToID,
	}
}

// FetchRate implements port.PriceSource. The rate is fromUSD/toUSD at 18
// decimal places; no default rate is ever substituted on failure.
func (c *CoinGeckoClient) FetchRate(ctx context.Context, from, to entity.TokenInfo) (entity.RateInfo, error) {
	fromID, ok := c.symbolToID[strings.ToUpper(from.Symbol)]
	if !ok {
		return entity.RateInfo{}, &entity.UnsupportedPairError{Symbol: from.Symbol}
	}
	toID, ok := c.symbolToID[strings.ToUpper(to.Symbol)]
	if !ok {
		return entity.RateInfo{}, &entity.UnsupportedPairError{Symbol: to.Symbol}
	}

	fromUSD, haveFrom := c.cachedPrice(fromID)
	toUSD, haveTo := c.cachedPrice(toID)
	if !haveFrom || !haveTo {
		fetched, err := c.fetchUSDPrices(ctx, fromID, toID)
		if err != nil {
			return entity.RateInfo{}, err
		}
		fromUSD = fetched[fromID]
		toUSD = fetched[toID]
		c.prices.Set(fromID, fromUSD, gocache.DefaultExpiration)
		c.prices.Set(toID, toUSD, gocache.DefaultExpiration)
	}

	if toUSD.IsZero() {
		return entity.RateInfo{}, &entity.PriceSourceError{
			Message: fmt.Sprintf("zero USD price for asset %q", toID),
		}
	}

	pairRate := fromUSD.DivRound(toUSD, rateScale)
	c.logger.Debug("Computed pairwise rate",
		zap.String("fromID", fromID),
		zap.String("toID", toID),
		zap.String("rate", pairRate.String()))
	return entity.RateInfo{Rate: pairRate}, nil
}

func (c *CoinGeckoClient) cachedPrice(id string) (decimal.Decimal, bool) {
	v, ok := c.prices.Get(id)
	if !ok {
		return decimal.Decimal{}, false
	}
	price, ok := v.(decimal.Decimal)
	return price, ok
}

// fetchUSDPrices issues one GET for both asset ids, retrying transient
// failures with capped exponential backoff.
func (c *CoinGeckoClient) fetchUSDPrices(ctx context.Context, ids ...string) (map[string]decimal.Decimal, error) {
	requestURL := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd",
		strings.TrimRight(c.cfg.BaseURL, "/"), strings.Join(ids, ","))

	var result map[string]decimal.Decimal
	op := func() error {
		status, body, err := c.do(ctx, requestURL)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(&entity.PriceSourceError{Message: "request cancelled", Err: ctx.Err()})
			}
			return &entity.PriceSourceError{Message: "request failed", Err: err}
		}

		if status != fasthttp.StatusOK {
			psErr := &entity.PriceSourceError{StatusCode: status, Message: string(body)}
			if _, retryable := retryableStatuses[status]; retryable {
				return psErr
			}
			return backoff.Permanent(psErr)
		}

		parsed, err := parseSimplePrice(body, ids)
		if err != nil {
			// A 200 with an unusable body will not improve on retry.
			return backoff.Permanent(err)
		}
		result = parsed
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.cfg.RetryDelay
	bo.MaxElapsedTime = 0 // bounded by attempt count and ctx instead

	notify := func(err error, next time.Duration) {
		metrics.UpstreamRetriesTotal.Inc()
		c.logger.Warn("Retrying price source request",
			zap.String("url", requestURL),
			zap.Duration("backoff", next),
			zap.Error(err))
	}

	retries := uint64(0)
	if c.cfg.RetryCount > 0 {
		retries = uint64(c.cfg.RetryCount)
	}
	err := backoff.RetryNotify(op, backoff.WithContext(backoff.WithMaxRetries(bo, retries), ctx), notify)
	if err != nil {
		c.logger.Error("Price source request failed", zap.String("url", requestURL), zap.Error(err))
		return nil, err
	}
	return result, nil
}

// do executes one rate-limited GET and returns status plus a copy of the
// body (the fasthttp buffers are recycled on release).
func (c *CoinGeckoClient) do(ctx context.Context, requestURL string) (int, []byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, nil, err
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.cfg.APIKey)
	}

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if deadline, ok := ctx.Deadline(); ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			return 0, nil, fmt.Errorf("failed to execute request to %s: %w", requestURL, err)
		}
	} else {
		if err := c.client.DoTimeout(req, resp, c.cfg.Timeout); err != nil {
			return 0, nil, fmt.Errorf("failed to execute request to %s with default timeout: %w", requestURL, err)
		}
	}

	body := append([]byte(nil), resp.Body()...)
	return resp.StatusCode(), body, nil
}

// parseSimplePrice decodes {"<id>": {"usd": <number>}} keeping full
// numeric precision, and requires every requested id to be present.
func parseSimplePrice(body []byte, ids []string) (map[string]decimal.Decimal, error) {
	var raw map[string]map[string]stdjson.Number
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &entity.PriceSourceError{
			StatusCode: fasthttp.StatusOK,
			Message:    fmt.Sprintf("failed to decode price response: %v", err),
			Err:        err,
		}
	}

	prices := make(map[string]decimal.Decimal, len(ids))
	for _, id := range ids {
		currencies, ok := raw[id]
		if !ok {
			return nil, &entity.PriceSourceError{
				StatusCode: fasthttp.StatusOK,
				Message:    fmt.Sprintf("asset %q missing from price response", id),
			}
		}
		usd, ok := currencies["usd"]
		if !ok {
			return nil, &entity.PriceSourceError{
				StatusCode: fasthttp.StatusOK,
				Message:    fmt.Sprintf("usd price missing for asset %q", id),
			}
		}
		price, err := decimal.NewFromString(usd.String())
		if err != nil {
			return nil, &entity.PriceSourceError{
				StatusCode: fasthttp.StatusOK,
				Message:    fmt.Sprintf("unparseable usd price %q for asset %q", usd.String(), id),
				Err:        err,
			}
		}
		prices[id] = price
	}
	return prices, nil
}
