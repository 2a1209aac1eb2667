package restapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"cross_swap/internal/app/port"
	"cross_swap/internal/app/service"
	"cross_swap/internal/domain/entity"
)

const streamWriteTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The REST surface already allows all origins; the stream matches.
	CheckOrigin: func(*http.Request) bool { return true },
}

// StreamInputMessage is one swap form change sent by the client.
type StreamInputMessage struct {
	FromChain string `json:"fromChain"`
	ToChain   string `json:"toChain"`
	FromToken string `json:"fromToken"`
	ToToken   string `json:"toToken"`
	Amount    string `json:"amount"`
}

// StreamQuoteMessage is one controller snapshot pushed to the client.
type StreamQuoteMessage struct {
	State    string        `json:"state"`
	Quote    *entity.Quote `json:"quote,omitempty"`
	Error    string        `json:"error,omitempty"`
	Revision uint64        `json:"revision"`
}

// QuoteStreamHandler serves the interactive quoting websocket: the client
// streams swap form changes, the server debounces them through a
// per-connection re-quote controller and pushes state snapshots back.
type QuoteStreamHandler struct {
	quoteService port.QuoteService
	catalog      port.TokenCatalog
	settle       time.Duration
	logger       *zap.Logger
	appLogger    port.Logger
}

// NewQuoteStreamHandler creates a QuoteStreamHandler. settle is the
// debounce window applied to each connection's input stream.
func NewQuoteStreamHandler(qs port.QuoteService, catalog port.TokenCatalog, settle time.Duration, logger *zap.Logger, appLogger port.Logger) *QuoteStreamHandler {
	return &QuoteStreamHandler{
		quoteService: qs,
		catalog:      catalog,
		settle:       settle,
		logger:       logger.Named("QuoteStream"),
		appLogger:    appLogger,
	}
}

// StreamQuotesHandler handles GET /api/v1/quote/stream.
func (h *QuoteStreamHandler) StreamQuotesHandler(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	// gorilla permits one concurrent writer; snapshots arrive from the
	// controller's fetch goroutines as well as the read loop.
	var writeMu sync.Mutex
	writeSnapshot := func(snap service.RequoteSnapshot) {
		msg := StreamQuoteMessage{
			State:    string(snap.State),
			Error:    snap.ErrorMsg,
			Revision: snap.Revision,
		}
		if snap.State == service.StateReady {
			quote := snap.Quote
			msg.Quote = &quote
		}
		writeMu.Lock()
		defer writeMu.Unlock()
		conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
		if err := conn.WriteJSON(msg); err != nil {
			h.logger.Debug("Failed to push quote snapshot", zap.Error(err))
		}
	}

	controller := service.NewRequoteController(h.quoteService, h.settle, h.appLogger, writeSnapshot)
	defer controller.Close()

	for {
		var input StreamInputMessage
		if err := conn.ReadJSON(&input); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug("Quote stream closed unexpectedly", zap.Error(err))
			}
			return
		}

		swapInput, errMsg := h.resolveInput(input)
		if errMsg != "" {
			writeMu.Lock()
			conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
			conn.WriteJSON(StreamQuoteMessage{State: string(service.StateErrored), Error: errMsg})
			writeMu.Unlock()
			continue
		}
		controller.OnChange(swapInput)
	}
}

// resolveInput maps a client message to a SwapInput. An empty amount
// passes through untouched so the controller can clear its state; anything
// else must name listed chains and tokens.
func (h *QuoteStreamHandler) resolveInput(input StreamInputMessage) (service.SwapInput, string) {
	if input.Amount == "" {
		return service.SwapInput{}, ""
	}

	sourceChain, err := entity.ParseChainType(input.FromChain)
	if err != nil {
		return service.SwapInput{}, err.Error()
	}
	targetChain, err := entity.ParseChainType(input.ToChain)
	if err != nil {
		return service.SwapInput{}, err.Error()
	}
	from, ok := h.catalog.FindBySymbol(sourceChain, input.FromToken)
	if !ok {
		return service.SwapInput{}, "token " + input.FromToken + " is not listed on chain " + sourceChain.String()
	}
	to, ok := h.catalog.FindBySymbol(targetChain, input.ToToken)
	if !ok {
		return service.SwapInput{}, "token " + input.ToToken + " is not listed on chain " + targetChain.String()
	}

	return service.SwapInput{
		FromToken:   from,
		ToToken:     to,
		Amount:      input.Amount,
		SourceChain: sourceChain,
		TargetChain: targetChain,
	}, ""
}
