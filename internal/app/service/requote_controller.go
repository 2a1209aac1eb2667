package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"cross_swap/internal/app/port"
	"cross_swap/internal/domain/entity"
)

// RequoteState names the phases of the debounced re-quote cycle.
type RequoteState string

const (
	StateIdle       RequoteState = "idle"
	StateDebouncing RequoteState = "debouncing"
	StateFetching   RequoteState = "fetching"
	StateReady      RequoteState = "ready"
	StateErrored    RequoteState = "errored"
)

// DefaultSettleWindow is the quiet period after the last input change
// before a quote is requested.
const DefaultSettleWindow = 500 * time.Millisecond

// SwapInput is one snapshot of the swap form's fields.
type SwapInput struct {
	FromToken   entity.TokenInfo
	ToToken     entity.TokenInfo
	Amount      string
	SourceChain entity.ChainType
	TargetChain entity.ChainType
}

// RequoteSnapshot is the controller's externally visible state at one
// point in time.
type RequoteSnapshot struct {
	State    RequoteState
	Quote    entity.Quote
	ErrorMsg string
	// Revision counts qualifying input changes; snapshots from different
	// revisions are not comparable.
	Revision uint64
}

// RequoteController drives quote recomputation from swap form input
// changes: trailing-edge debounce over a settle window, with stale fetch
// results discarded by revision so an out-of-order completion can never
// overwrite a later input's quote.
type RequoteController struct {
	quotes   port.QuoteService
	settle   time.Duration
	logger   port.Logger
	onUpdate func(RequoteSnapshot)

	mu       sync.Mutex
	state    RequoteState
	quote    entity.Quote
	errMsg   string
	input    SwapInput
	revision uint64
	timer    *time.Timer
	closed   bool
}

// NewRequoteController creates a controller in the Idle state. onUpdate,
// when non-nil, is invoked after every externally visible state change;
// it runs with the controller's lock released and must not call back into
// the controller synchronously from the same goroutine expecting ordering
// beyond snapshot revisions. A non-positive settle window falls back to
// DefaultSettleWindow.
func NewRequoteController(quotes port.QuoteService, settle time.Duration, logger port.Logger, onUpdate func(RequoteSnapshot)) *RequoteController {
	if settle <= 0 {
		settle = DefaultSettleWindow
	}
	return &RequoteController{
		quotes:   quotes,
		settle:   settle,
		logger:   logger,
		onUpdate: onUpdate,
		state:    StateIdle,
	}
}

// OnChange feeds a new input snapshot into the controller. An empty
// amount forces Idle and clears any quote or error; any other change
// (re)starts the settle timer — a burst of changes inside the window
// produces exactly one quote request, for the last value seen.
func (c *RequoteController) OnChange(input SwapInput) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	c.revision++
	c.input = input
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}

	if input.Amount == "" {
		c.state = StateIdle
		c.quote = entity.Quote{}
		c.errMsg = ""
		snapshot := c.snapshotLocked()
		c.mu.Unlock()
		c.notify(snapshot)
		return
	}

	c.state = StateDebouncing
	revision := c.revision
	c.timer = time.AfterFunc(c.settle, func() {
		c.settleElapsed(revision)
	})
	snapshot := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snapshot)
}

// settleElapsed fires when the timer for a revision elapses without
// further input changes.
func (c *RequoteController) settleElapsed(revision uint64) {
	c.mu.Lock()
	if c.closed || revision != c.revision || c.state != StateDebouncing {
		c.mu.Unlock()
		return
	}
	c.state = StateFetching
	input := c.input
	snapshot := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snapshot)

	go c.fetch(revision, input)
}

func (c *RequoteController) fetch(revision uint64, input SwapInput) {
	quote, err := c.quotes.GetQuote(context.Background(), input.FromToken, input.ToToken, input.Amount, input.SourceChain, input.TargetChain)

	c.mu.Lock()
	if c.closed || revision != c.revision {
		// Superseded by a later input change; discard regardless of
		// arrival order.
		c.mu.Unlock()
		c.logger.Debug("Discarded stale quote result", "revision", revision)
		return
	}

	if err != nil {
		c.state = StateErrored
		c.quote = entity.Quote{}
		c.errMsg = userMessage(err)
		c.logger.Warn("Re-quote failed", "revision", revision, "error", err)
	} else {
		c.state = StateReady
		c.quote = quote
		c.errMsg = ""
	}
	snapshot := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snapshot)
}

// Snapshot returns the current externally visible state.
func (c *RequoteController) Snapshot() RequoteSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Close stops the pending timer and makes all further input and fetch
// completions no-ops.
func (c *RequoteController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *RequoteController) snapshotLocked() RequoteSnapshot {
	return RequoteSnapshot{
		State:    c.state,
		Quote:    c.quote,
		ErrorMsg: c.errMsg,
		Revision: c.revision,
	}
}

func (c *RequoteController) notify(snapshot RequoteSnapshot) {
	if c.onUpdate != nil {
		c.onUpdate(snapshot)
	}
}

// userMessage maps pipeline errors to messages fit for the swap form.
func userMessage(err error) string {
	var invalidErr *entity.InvalidParamsError
	if errors.As(err, &invalidErr) {
		return "Please check the swap details: " + invalidErr.Reason + "."
	}
	var pairErr *entity.UnsupportedPairError
	if errors.As(err, &pairErr) {
		return "Price data is not available for " + pairErr.Symbol + "."
	}
	var srcErr *entity.PriceSourceError
	if errors.As(err, &srcErr) {
		return "The price service is temporarily unavailable. Please try again."
	}
	var feeErr *entity.FeeEstimationError
	if errors.As(err, &feeErr) {
		return "Network fees could not be estimated right now. Please try again."
	}
	return "The quote could not be computed. Please try again."
}
