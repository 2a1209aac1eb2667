package restapi

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cross_swap/internal/app/service"
	"cross_swap/internal/domain/entity"
)

type nopAppLogger struct{}

func (nopAppLogger) Info(string, ...any)  {}
func (nopAppLogger) Debug(string, ...any) {}
func (nopAppLogger) Warn(string, ...any)  {}
func (nopAppLogger) Error(string, ...any) {}

func newStreamServer(t *testing.T, qs *stubQuoteService, settle time.Duration) (*httptest.Server, *websocket.Conn) {
	t.Helper()
	catalog := &stubCatalog{tokens: map[entity.ChainType][]entity.TokenInfo{
		entity.ChainEthereum: {
			{Address: "0xC02a", Symbol: "ETH", Name: "Ethereum", Decimals: 18, Chain: entity.ChainEthereum},
		},
		entity.ChainBinance: {
			{Address: "0x55d3", Symbol: "USDT", Name: "Tether USD", Decimals: 18, Chain: entity.ChainBinance},
		},
	}}
	handler := NewQuoteHandler(qs, stubRegistry{}, catalog)
	streamHandler := NewQuoteStreamHandler(qs, catalog, settle, zap.NewNop(), nopAppLogger{})
	router := SetupRouter(handler, streamHandler, zap.NewNop(), RouterOptions{})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/quote/stream"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return server, conn
}

func readUntilState(t *testing.T, conn *websocket.Conn, want service.RequoteState) StreamQuoteMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		var msg StreamQuoteMessage
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.State == string(want) {
			return msg
		}
	}
}

func TestQuoteStreamBurstYieldsSingleQuote(t *testing.T) {
	qs := &stubQuoteService{quote: entity.Quote{
		FromAmount:   "123",
		ExchangeRate: "3000",
	}}
	_, conn := newStreamServer(t, qs, 50*time.Millisecond)

	for _, amount := range []string{"1", "12", "123"} {
		require.NoError(t, conn.WriteJSON(StreamInputMessage{
			FromChain: "ethereum",
			ToChain:   "binance",
			FromToken: "ETH",
			ToToken:   "USDT",
			Amount:    amount,
		}))
	}

	msg := readUntilState(t, conn, service.StateReady)
	require.NotNil(t, msg.Quote)
	assert.Equal(t, "123", msg.Quote.FromAmount)
	assert.Equal(t, 1, qs.callCount(), "burst within the settle window must fire one quote call")
}

func TestQuoteStreamErrorSurfaced(t *testing.T) {
	qs := &stubQuoteService{err: &entity.QuoteError{
		Stage: "rate",
		Err:   &entity.PriceSourceError{StatusCode: 503, Message: "unavailable"},
	}}
	_, conn := newStreamServer(t, qs, 20*time.Millisecond)

	require.NoError(t, conn.WriteJSON(StreamInputMessage{
		FromChain: "ethereum",
		ToChain:   "binance",
		FromToken: "ETH",
		ToToken:   "USDT",
		Amount:    "1",
	}))

	msg := readUntilState(t, conn, service.StateErrored)
	assert.Contains(t, msg.Error, "temporarily unavailable")
	assert.Nil(t, msg.Quote)
}

func TestQuoteStreamRejectsUnknownChainWithoutQuoteCall(t *testing.T) {
	qs := &stubQuoteService{}
	_, conn := newStreamServer(t, qs, 20*time.Millisecond)

	require.NoError(t, conn.WriteJSON(StreamInputMessage{
		FromChain: "solana",
		ToChain:   "binance",
		FromToken: "ETH",
		ToToken:   "USDT",
		Amount:    "1",
	}))

	msg := readUntilState(t, conn, service.StateErrored)
	assert.Contains(t, msg.Error, "unknown chain")
	assert.Equal(t, 0, qs.callCount())
}

func TestQuoteStreamEmptyAmountGoesIdle(t *testing.T) {
	qs := &stubQuoteService{quote: entity.Quote{FromAmount: "1"}}
	_, conn := newStreamServer(t, qs, 20*time.Millisecond)

	require.NoError(t, conn.WriteJSON(StreamInputMessage{
		FromChain: "ethereum",
		ToChain:   "binance",
		FromToken: "ETH",
		ToToken:   "USDT",
		Amount:    "1",
	}))
	readUntilState(t, conn, service.StateReady)

	require.NoError(t, conn.WriteJSON(StreamInputMessage{Amount: ""}))
	msg := readUntilState(t, conn, service.StateIdle)
	assert.Nil(t, msg.Quote)
	assert.Empty(t, msg.Error)
}
