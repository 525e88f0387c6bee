// Package coordinator decides when to call the signal service and which
// result the dashboard shows. It is a bubbletea component: every transition
// runs on the program's Update loop, the quiescence timer is a tea.Tick and
// the network call is a tea.Cmd. Each dispatch mints a new generation and
// completions for any other generation are discarded.
package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/signal-deck/internal/bias"
	"github.com/Veraticus/signal-deck/internal/fallback"
	"github.com/Veraticus/signal-deck/internal/model"
	"github.com/Veraticus/signal-deck/internal/signals"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	// DefaultDebounce is the quiescence window after the last bias change.
	DefaultDebounce = 600 * time.Millisecond
	// DefaultTimeout bounds a single signal service call.
	DefaultTimeout = 15 * time.Second
)

// Fetcher performs the outbound signal service call.
type Fetcher interface {
	Fetch(ctx context.Context, req model.InferenceRequest) ([]byte, error)
}

// Config holds coordinator configuration.
type Config struct {
	Fetcher    Fetcher
	Now        func() time.Time
	WalletHint string
	Debounce   time.Duration
	Timeout    time.Duration
	Demo       bool
}

// Coordinator owns the request status state machine.
type Coordinator struct {
	ctx             context.Context
	fetcher         Fetcher
	cancel          context.CancelFunc
	now             func() time.Time
	result          model.InferenceResult
	lastRequest     model.InferenceRequest
	walletHint      string
	diagnostic      string
	debounce        time.Duration
	timeout         time.Duration
	generation      uint64
	debounceSeq     uint64
	revision        uint64
	dispatches      int
	bias            int
	status          model.RequestStatus
	demo            bool
	hasResult       bool
	debouncePending bool
}

// New creates a coordinator seeded with the initial effective bias.
// Calls inherit ctx, so cancelling it aborts any in-flight request.
func New(ctx context.Context, cfg Config, initialBias int) (Coordinator, error) {
	if !cfg.Demo && cfg.Fetcher == nil {
		return Coordinator{}, fmt.Errorf("fetcher is required unless demo mode is enabled")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return Coordinator{
		ctx:        ctx,
		fetcher:    cfg.Fetcher,
		now:        cfg.Now,
		walletHint: cfg.WalletHint,
		debounce:   cfg.Debounce,
		timeout:    cfg.Timeout,
		demo:       cfg.Demo,
		bias:       initialBias,
		status:     model.StatusIdle,
	}, nil
}

// Update applies a message and returns the next state and any command to run.
func (c Coordinator) Update(msg tea.Msg) (Coordinator, tea.Cmd) {
	switch msg := msg.(type) {
	case BiasChangedMsg:
		return c.handleBiasChanged(msg)

	case debounceFiredMsg:
		if !c.debouncePending || msg.seq != c.debounceSeq {
			return c, nil
		}
		return c.run(false)

	case ManualRunMsg:
		return c.run(msg.IncludeWalletHint)

	case AbortMsg:
		c.abort()
		return c, nil

	case NetworkResolvedMsg:
		return c.handleResolved(msg), nil

	case NetworkFailedMsg:
		return c.handleFailed(msg), nil
	}

	return c, nil
}

// handleBiasChanged restarts the quiescence timer. A superseded timer still
// fires but carries a stale sequence and is ignored.
func (c Coordinator) handleBiasChanged(msg BiasChangedMsg) (Coordinator, tea.Cmd) {
	c.bias = msg.Bias
	c.debounceSeq++
	c.debouncePending = true

	seq := c.debounceSeq
	return c, tea.Tick(c.debounce, func(time.Time) tea.Msg {
		return debounceFiredMsg{seq: seq}
	})
}

// run supersedes everything outstanding and starts a new generation.
func (c Coordinator) run(includeWalletHint bool) (Coordinator, tea.Cmd) {
	c.cancelDebounce()
	c.cancelInFlight()
	c.generation++

	wallet := ""
	if includeWalletHint {
		wallet = c.walletHint
	}
	req := bias.NewRequest(c.bias, wallet)
	c.lastRequest = req

	if c.demo {
		c.apply(fallback.DemoSnapshot(), model.StatusIdle, "")
		return c, nil
	}

	ctx, cancel := context.WithTimeout(c.ctx, c.timeout)
	c.cancel = cancel
	c.status = model.StatusLoading
	c.dispatches++

	slog.Debug("Dispatching signal request",
		"generation", c.generation,
		"bias", c.bias,
		"wallet_hint", wallet != "")

	return c, dispatch(ctx, c.fetcher, c.generation, req)
}

// dispatch captures everything the call needs so the command never reads
// coordinator state after it was issued.
func dispatch(ctx context.Context, fetcher Fetcher, generation uint64, req model.InferenceRequest) tea.Cmd {
	return func() tea.Msg {
		payload, err := fetcher.Fetch(ctx, req)
		if err != nil {
			return NetworkFailedMsg{Generation: generation, Err: err}
		}
		return NetworkResolvedMsg{Generation: generation, Payload: payload}
	}
}

func (c Coordinator) handleResolved(msg NetworkResolvedMsg) Coordinator {
	if msg.Generation != c.generation {
		slog.Debug("Discarding stale signal response", "generation", msg.Generation, "current", c.generation)
		return c
	}
	c.cancelInFlight()

	result, err := signals.Project(msg.Payload, c.now())
	if err != nil {
		return c.fail(msg.Generation, err)
	}

	c.apply(result, model.StatusIdle, "")
	return c
}

func (c Coordinator) handleFailed(msg NetworkFailedMsg) Coordinator {
	if msg.Generation != c.generation {
		slog.Debug("Discarding stale signal failure", "generation", msg.Generation, "current", c.generation)
		return c
	}
	c.cancelInFlight()
	if signals.IsCancellation(msg.Err) {
		// Parent context gone: nothing is in flight any more. The result and
		// diagnostic are left as they were.
		if c.status == model.StatusLoading {
			c.status = model.StatusIdle
		}
		return c
	}
	return c.fail(msg.Generation, msg.Err)
}

// fail substitutes the fallback snapshot for a genuine failure.
func (c Coordinator) fail(generation uint64, err error) Coordinator {
	slog.Warn("Signal request failed, showing fallback signals",
		"generation", generation,
		"error", err)

	result, message := fallback.ErrorSnapshot()
	c.apply(result, model.StatusError, message)
	return c
}

func (c *Coordinator) apply(result model.InferenceResult, status model.RequestStatus, diagnostic string) {
	c.result = result
	c.hasResult = true
	c.diagnostic = diagnostic
	c.status = status
	c.revision++
}

func (c *Coordinator) abort() {
	c.cancelDebounce()
	if c.cancel != nil {
		c.cancelInFlight()
		c.generation++
	}
	if c.status == model.StatusLoading {
		c.status = model.StatusIdle
	}
}

func (c *Coordinator) cancelDebounce() {
	if c.debouncePending {
		c.debounceSeq++
		c.debouncePending = false
	}
}

// cancelInFlight tells an outstanding call to stop. Its completion, if it
// still arrives, fails the generation check.
func (c *Coordinator) cancelInFlight() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// Status returns the current request status.
func (c Coordinator) Status() model.RequestStatus {
	return c.status
}

// Result returns a copy of the last applied result.
func (c Coordinator) Result() (model.InferenceResult, bool) {
	if !c.hasResult {
		return model.InferenceResult{}, false
	}
	return c.result.Clone(), true
}

// Diagnostic returns the message shown with a fallback result, if any.
func (c Coordinator) Diagnostic() string {
	return c.diagnostic
}

// Generation returns the current generation.
func (c Coordinator) Generation() uint64 {
	return c.generation
}

// Revision increases every time a result is applied.
func (c Coordinator) Revision() uint64 {
	return c.revision
}

// Dispatches returns how many network calls have been issued.
func (c Coordinator) Dispatches() int {
	return c.dispatches
}

// Bias returns the effective bias the next run will use.
func (c Coordinator) Bias() int {
	return c.bias
}

// LastRequest returns the request built for the current generation.
func (c Coordinator) LastRequest() model.InferenceRequest {
	return c.lastRequest
}

// DebouncePending reports whether a quiescence timer is waiting to fire.
func (c Coordinator) DebouncePending() bool {
	return c.debouncePending
}

// Demo reports whether live calls are disabled.
func (c Coordinator) Demo() bool {
	return c.demo
}
