package restapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cross_swap/internal/domain/entity"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubQuoteService struct {
	mu    sync.Mutex
	quote entity.Quote
	err   error
	calls int
}

func (s *stubQuoteService) GetQuote(_ context.Context, _, _ entity.TokenInfo, _ string, _, _ entity.ChainType) (entity.Quote, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return entity.Quote{}, s.err
	}
	return s.quote, nil
}

func (s *stubQuoteService) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stubRegistry struct{}

func (stubRegistry) Resolve(chain entity.ChainType) (entity.ChainDefinition, error) {
	if !chain.Valid() {
		return entity.ChainDefinition{}, &entity.UnknownChainError{Value: chain.String()}
	}
	return entity.ChainDefinition{Chain: chain}, nil
}

func (stubRegistry) All() []entity.ChainDefinition {
	return []entity.ChainDefinition{
		{Chain: entity.ChainEthereum, Name: "Ethereum", NativeSymbol: "ETH", Decimals: 18, BlockExplorerURL: "https://etherscan.io"},
		{Chain: entity.ChainBinance, Name: "BNB Smart Chain", NativeSymbol: "BNB", Decimals: 18},
	}
}

type stubCatalog struct {
	tokens map[entity.ChainType][]entity.TokenInfo
}

func (s *stubCatalog) TokensByChain(chain entity.ChainType) ([]entity.TokenInfo, error) {
	if !chain.Valid() {
		return nil, &entity.UnknownChainError{Value: chain.String()}
	}
	return s.tokens[chain], nil
}

func (s *stubCatalog) FindBySymbol(chain entity.ChainType, symbol string) (entity.TokenInfo, bool) {
	for _, token := range s.tokens[chain] {
		if token.Symbol == symbol {
			return token, true
		}
	}
	return entity.TokenInfo{}, false
}

func newTestRouter(qs *stubQuoteService) *gin.Engine {
	catalog := &stubCatalog{tokens: map[entity.ChainType][]entity.TokenInfo{
		entity.ChainEthereum: {
			{Address: "0xC02a", Symbol: "ETH", Name: "Ethereum", Decimals: 18, Chain: entity.ChainEthereum},
		},
		entity.ChainBinance: {
			{Address: "0x55d3", Symbol: "USDT", Name: "Tether USD", Decimals: 18, Chain: entity.ChainBinance},
		},
	}}
	handler := NewQuoteHandler(qs, stubRegistry{}, catalog)
	return SetupRouter(handler, nil, zap.NewNop(), RouterOptions{})
}

func doRequest(t *testing.T, router *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGetQuoteEndpointSuccess(t *testing.T) {
	qs := &stubQuoteService{quote: entity.Quote{
		FromAmount:      "2.5",
		ToAmount:        "7500",
		ExchangeRate:    "3000",
		NetworkFee:      "0.0015",
		MinimumReceived: "7406.25",
		Route:           []string{"ETH", "USDT"},
	}}
	router := newTestRouter(qs)

	rec := doRequest(t, router, "/api/v1/quote?fromChain=ethereum&toChain=binance&fromToken=ETH&toToken=USDT&amount=2.5")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp APIQuoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "3000", resp.Data.ExchangeRate)
	assert.Equal(t, []string{"ETH", "USDT"}, resp.Data.Route)
	assert.Equal(t, 1, qs.callCount())
}

func TestGetQuoteEndpointRejectsUnknownChain(t *testing.T) {
	qs := &stubQuoteService{}
	router := newTestRouter(qs)

	rec := doRequest(t, router, "/api/v1/quote?fromChain=solana&toChain=binance&fromToken=ETH&toToken=USDT&amount=1")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, qs.callCount())
}

func TestGetQuoteEndpointRequiresAllParams(t *testing.T) {
	qs := &stubQuoteService{}
	router := newTestRouter(qs)

	rec := doRequest(t, router, "/api/v1/quote?fromChain=ethereum&toChain=binance&fromToken=ETH&toToken=USDT")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, qs.callCount())
}

func TestGetQuoteEndpointUnlistedToken(t *testing.T) {
	qs := &stubQuoteService{}
	router := newTestRouter(qs)

	rec := doRequest(t, router, "/api/v1/quote?fromChain=ethereum&toChain=binance&fromToken=XYZ&toToken=USDT&amount=1")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 0, qs.callCount())
}

func TestGetQuoteEndpointErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantStage  string
	}{
		{
			name:       "invalid params",
			err:        &entity.QuoteError{Stage: "validate", Err: &entity.InvalidParamsError{Reason: "amount must be greater than zero"}},
			wantStatus: http.StatusBadRequest,
			wantStage:  "validate",
		},
		{
			name:       "unsupported pair",
			err:        &entity.QuoteError{Stage: "rate", Err: &entity.UnsupportedPairError{Symbol: "XYZ"}},
			wantStatus: http.StatusUnprocessableEntity,
			wantStage:  "rate",
		},
		{
			name:       "price source down",
			err:        &entity.QuoteError{Stage: "rate", Err: &entity.PriceSourceError{StatusCode: 503, Message: "unavailable"}},
			wantStatus: http.StatusBadGateway,
			wantStage:  "rate",
		},
		{
			name:       "fee estimation down",
			err:        &entity.QuoteError{Stage: "fee", Err: &entity.FeeEstimationError{Chain: entity.ChainEthereum, Message: "rpc down"}},
			wantStatus: http.StatusBadGateway,
			wantStage:  "fee",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			qs := &stubQuoteService{err: tc.err}
			router := newTestRouter(qs)

			rec := doRequest(t, router, "/api/v1/quote?fromChain=ethereum&toChain=binance&fromToken=ETH&toToken=USDT&amount=1")

			assert.Equal(t, tc.wantStatus, rec.Code)
			var resp APIErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tc.wantStage, resp.Stage)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestListChainsEndpoint(t *testing.T) {
	router := newTestRouter(&stubQuoteService{})

	rec := doRequest(t, router, "/api/v1/chains")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp APIChainsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "ethereum", resp.Data[0].ID)
	assert.Equal(t, "ETH", resp.Data[0].NativeSymbol)
}

func TestListTokensEndpoint(t *testing.T) {
	router := newTestRouter(&stubQuoteService{})

	rec := doRequest(t, router, "/api/v1/chains/ethereum/tokens")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp APITokensResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "ETH", resp.Data[0].Symbol)
}

func TestListTokensEndpointUnknownChain(t *testing.T) {
	router := newTestRouter(&stubQuoteService{})

	rec := doRequest(t, router, "/api/v1/chains/solana/tokens")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(&stubQuoteService{})

	rec := doRequest(t, router, "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
}
