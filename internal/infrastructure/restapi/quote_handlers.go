// Package restapi exposes the quoting pipeline over HTTP with gin.
package restapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cross_swap/internal/app/port"
	"cross_swap/internal/domain/entity"
)

// APIErrorResponse is the error envelope for all failure responses.
type APIErrorResponse struct {
	Error string `json:"error"`
	// Stage names the failing pipeline stage when the failure happened
	// inside the quote computation.
	Stage string `json:"stage,omitempty"`
}

// APIQuoteResponse wraps a computed quote.
type APIQuoteResponse struct {
	Data entity.Quote `json:"data"`
}

// APIChainInfo is the public projection of a chain definition; RPC
// endpoints stay internal.
type APIChainInfo struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	NativeSymbol     string `json:"nativeSymbol"`
	Decimals         int32  `json:"decimals"`
	BlockExplorerURL string `json:"blockExplorerUrl,omitempty"`
}

// APIChainsResponse lists the supported chains.
type APIChainsResponse struct {
	Data []APIChainInfo `json:"data"`
}

// APITokensResponse lists a chain's known tokens.
type APITokensResponse struct {
	Data []entity.TokenInfo `json:"data"`
}

// QuoteHandler handles the HTTP requests of the quoting API.
type QuoteHandler struct {
	quoteService port.QuoteService
	registry     port.ChainRegistry
	catalog      port.TokenCatalog
}

// NewQuoteHandler creates a new QuoteHandler.
func NewQuoteHandler(qs port.QuoteService, registry port.ChainRegistry, catalog port.TokenCatalog) *QuoteHandler {
	return &QuoteHandler{
		quoteService: qs,
		registry:     registry,
		catalog:      catalog,
	}
}

// GetQuoteHandler handles GET /api/v1/quote. Query parameters: fromChain,
// toChain, fromToken, toToken, amount.
func (h *QuoteHandler) GetQuoteHandler(c *gin.Context) {
	ctx := c.Request.Context()

	sourceChain, err := entity.ParseChainType(c.Query("fromChain"))
	if err != nil {
		c.JSON(http.StatusBadRequest, APIErrorResponse{Error: err.Error()})
		return
	}
	targetChain, err := entity.ParseChainType(c.Query("toChain"))
	if err != nil {
		c.JSON(http.StatusBadRequest, APIErrorResponse{Error: err.Error()})
		return
	}

	fromSymbol := c.Query("fromToken")
	toSymbol := c.Query("toToken")
	amount := c.Query("amount")
	if fromSymbol == "" || toSymbol == "" || amount == "" {
		c.JSON(http.StatusBadRequest, APIErrorResponse{Error: "fromToken, toToken and amount query parameters are required"})
		return
	}

	from, ok := h.catalog.FindBySymbol(sourceChain, fromSymbol)
	if !ok {
		c.JSON(http.StatusNotFound, APIErrorResponse{Error: "token " + fromSymbol + " is not listed on chain " + sourceChain.String()})
		return
	}
	to, ok := h.catalog.FindBySymbol(targetChain, toSymbol)
	if !ok {
		c.JSON(http.StatusNotFound, APIErrorResponse{Error: "token " + toSymbol + " is not listed on chain " + targetChain.String()})
		return
	}

	quote, err := h.quoteService.GetQuote(ctx, from, to, amount, sourceChain, targetChain)
	if err != nil {
		status, body := quoteErrorResponse(err)
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusOK, APIQuoteResponse{Data: quote})
}

// quoteErrorResponse maps pipeline errors to HTTP statuses: caller faults
// are 4xx, upstream faults are 502.
func quoteErrorResponse(err error) (int, APIErrorResponse) {
	stage := ""
	var quoteErr *entity.QuoteError
	if errors.As(err, &quoteErr) {
		stage = quoteErr.Stage
	}

	var invalidErr *entity.InvalidParamsError
	if errors.As(err, &invalidErr) {
		return http.StatusBadRequest, APIErrorResponse{Error: invalidErr.Error(), Stage: stage}
	}
	var pairErr *entity.UnsupportedPairError
	if errors.As(err, &pairErr) {
		return http.StatusUnprocessableEntity, APIErrorResponse{Error: pairErr.Error(), Stage: stage}
	}
	var srcErr *entity.PriceSourceError
	if errors.As(err, &srcErr) {
		return http.StatusBadGateway, APIErrorResponse{Error: srcErr.Error(), Stage: stage}
	}
	var feeErr *entity.FeeEstimationError
	if errors.As(err, &feeErr) {
		return http.StatusBadGateway, APIErrorResponse{Error: feeErr.Error(), Stage: stage}
	}
	return http.StatusInternalServerError, APIErrorResponse{Error: "internal error", Stage: stage}
}

// ListChainsHandler handles GET /api/v1/chains.
func (h *QuoteHandler) ListChainsHandler(c *gin.Context) {
	defs := h.registry.All()
	chains := make([]APIChainInfo, 0, len(defs))
	for _, def := range defs {
		chains = append(chains, APIChainInfo{
			ID:               def.Chain.String(),
			Name:             def.Name,
			NativeSymbol:     def.NativeSymbol,
			Decimals:         def.Decimals,
			BlockExplorerURL: def.BlockExplorerURL,
		})
	}
	c.JSON(http.StatusOK, APIChainsResponse{Data: chains})
}

// ListTokensHandler handles GET /api/v1/chains/:chain/tokens.
func (h *QuoteHandler) ListTokensHandler(c *gin.Context) {
	chain, err := entity.ParseChainType(c.Param("chain"))
	if err != nil {
		c.JSON(http.StatusNotFound, APIErrorResponse{Error: err.Error()})
		return
	}

	tokens, err := h.catalog.TokensByChain(chain)
	if err != nil {
		c.JSON(http.StatusNotFound, APIErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, APITokensResponse{Data: tokens})
}
