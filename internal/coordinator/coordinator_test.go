package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/signal-deck/internal/bias"
	"github.com/Veraticus/signal-deck/internal/fallback"
	"github.com/Veraticus/signal-deck/internal/model"
	"github.com/Veraticus/signal-deck/internal/signals"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeFetcher records requests and answers with respond.
type fakeFetcher struct {
	respond func(ctx context.Context, call int, req model.InferenceRequest) ([]byte, error)
	calls   []model.InferenceRequest
	mu      sync.Mutex
}

func (f *fakeFetcher) Fetch(ctx context.Context, req model.InferenceRequest) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	call := len(f.calls)
	f.mu.Unlock()

	if f.respond == nil {
		return actionPayload("stake"), nil
	}
	return f.respond(ctx, call, req)
}

func (f *fakeFetcher) Calls() []model.InferenceRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.InferenceRequest, len(f.calls))
	copy(out, f.calls)
	return out
}

func actionPayload(action string) []byte {
	return []byte(fmt.Sprintf(`{"recommendations":[{"action":%q,"probability":0.7}],"narrative":"live %s"}`, action, action))
}

func newTestCoordinator(t *testing.T, cfg Config) Coordinator {
	t.Helper()
	c, err := New(context.Background(), cfg, bias.High)
	require.NoError(t, err)
	return c
}

// drain runs cmd and feeds every resulting message back into the coordinator.
func drain(c Coordinator, cmd tea.Cmd) Coordinator {
	for cmd != nil {
		msg := cmd()
		c, cmd = c.Update(msg)
	}
	return c
}

func topAction(t *testing.T, c Coordinator) string {
	t.Helper()
	result, ok := c.Result()
	require.True(t, ok, "expected a stored result")
	require.NotEmpty(t, result.Recommendations)
	return result.Recommendations[0].Action
}

func TestNew(t *testing.T) {
	_, err := New(context.Background(), Config{}, bias.Low)
	require.Error(t, err)

	c, err := New(context.Background(), Config{Demo: true}, bias.Low)
	require.NoError(t, err)
	assert.Equal(t, model.StatusIdle, c.Status())
	assert.Equal(t, bias.Low, c.Bias())
	assert.Equal(t, uint64(0), c.Generation())

	_, ok := c.Result()
	assert.False(t, ok)
}

func TestManualRunResolves(t *testing.T) {
	fetcher := &fakeFetcher{}
	c := newTestCoordinator(t, Config{Fetcher: fetcher})

	c, cmd := c.Update(ManualRunMsg{})
	require.NotNil(t, cmd)
	assert.Equal(t, model.StatusLoading, c.Status())
	assert.Equal(t, uint64(1), c.Generation())

	msg := cmd()
	resolved, ok := msg.(NetworkResolvedMsg)
	require.True(t, ok, "expected NetworkResolvedMsg, got %T", msg)
	assert.Equal(t, uint64(1), resolved.Generation)

	c, cmd = c.Update(msg)
	assert.Nil(t, cmd)
	assert.Equal(t, model.StatusIdle, c.Status())
	assert.Equal(t, "stake", topAction(t, c))
	assert.Empty(t, c.Diagnostic())
	assert.Equal(t, uint64(1), c.Revision())

	result, _ := c.Result()
	assert.Equal(t, model.SourceLive, result.Source)
	assert.Equal(t, "live stake", result.Narrative)

	calls := fetcher.Calls()
	require.Len(t, calls, 1)
	assert.InDelta(t, 0.6, calls[0].PriceWeight, 1e-12)
	assert.InDelta(t, 0.4, calls[0].SentimentWeight, 1e-12)
	assert.Equal(t, 1.0, calls[0].PriceWeight+calls[0].SentimentWeight)
}

func TestDebounceCollapsesBurst(t *testing.T) {
	fetcher := &fakeFetcher{}
	c, err := New(context.Background(), Config{Fetcher: fetcher, Debounce: 600 * time.Millisecond}, bias.Low)
	require.NoError(t, err)

	var ticks []tea.Cmd
	var cmd tea.Cmd

	c, cmd = c.Update(BiasChangedMsg{Bias: bias.Snap(50)})
	ticks = append(ticks, cmd)

	time.Sleep(100 * time.Millisecond)
	c, cmd = c.Update(BiasChangedMsg{Bias: bias.Snap(55)})
	ticks = append(ticks, cmd)

	time.Sleep(50 * time.Millisecond)
	c, cmd = c.Update(BiasChangedMsg{Bias: bias.Snap(60)})
	ticks = append(ticks, cmd)

	assert.True(t, c.DebouncePending())
	assert.Empty(t, fetcher.Calls(), "nothing is dispatched inside the window")

	for _, tick := range ticks {
		require.NotNil(t, tick)
		c = drain(c, tick)
	}

	calls := fetcher.Calls()
	require.Len(t, calls, 1, "a burst inside the window dispatches exactly once")
	assert.InDelta(t, 0.6, calls[0].PriceWeight, 1e-12)
	assert.Equal(t, 1, c.Dispatches())
	assert.False(t, c.DebouncePending())
	assert.Equal(t, model.StatusIdle, c.Status())
}

func TestManualRunCancelsPendingDebounce(t *testing.T) {
	fetcher := &fakeFetcher{}
	c := newTestCoordinator(t, Config{Fetcher: fetcher, Debounce: 10 * time.Millisecond})

	c, tick := c.Update(BiasChangedMsg{Bias: bias.Low})
	require.NotNil(t, tick)

	c, run := c.Update(ManualRunMsg{})
	require.NotNil(t, run)
	assert.False(t, c.DebouncePending())

	// The superseded timer still fires but must not dispatch.
	c, cmd := c.Update(tick())
	assert.Nil(t, cmd)

	c = drain(c, run)
	assert.Len(t, fetcher.Calls(), 1)
	assert.InDelta(t, 0.5, fetcher.Calls()[0].PriceWeight, 1e-12, "manual run uses the latest bias")
	assert.Equal(t, model.StatusIdle, c.Status())
}

func TestManualRunInvalidatesInFlightCall(t *testing.T) {
	fetcher := &fakeFetcher{
		respond: func(ctx context.Context, call int, _ model.InferenceRequest) ([]byte, error) {
			if call == 1 {
				<-ctx.Done()
				return nil, fmt.Errorf("%w: %w", signals.ErrCancelled, ctx.Err())
			}
			return actionPayload("restake"), nil
		},
	}
	c := newTestCoordinator(t, Config{Fetcher: fetcher})

	c, first := c.Update(ManualRunMsg{})
	c, second := c.Update(ManualRunMsg{})
	assert.Equal(t, uint64(2), c.Generation())

	// The first call observes cancellation; its completion is discarded.
	c, cmd := c.Update(first())
	assert.Nil(t, cmd)
	assert.Equal(t, model.StatusLoading, c.Status())
	_, ok := c.Result()
	assert.False(t, ok)

	c = drain(c, second)
	assert.Equal(t, model.StatusIdle, c.Status())
	assert.Equal(t, "restake", topAction(t, c))
}

func TestStaleResponseNeverOverwrites(t *testing.T) {
	fetcher := &fakeFetcher{
		respond: func(_ context.Context, call int, _ model.InferenceRequest) ([]byte, error) {
			// The first call ignores cancellation and completes anyway.
			if call == 1 {
				return actionPayload("from-a"), nil
			}
			return actionPayload("from-b"), nil
		},
	}
	c := newTestCoordinator(t, Config{Fetcher: fetcher})

	c, callA := c.Update(ManualRunMsg{})
	c, callB := c.Update(ManualRunMsg{})

	msgA := callA()
	msgB := callB()

	// B completes first, A arrives late.
	c, _ = c.Update(msgB)
	c, _ = c.Update(msgA)

	assert.Equal(t, "from-b", topAction(t, c))
	assert.Equal(t, model.StatusIdle, c.Status())
	assert.Equal(t, uint64(1), c.Revision(), "the stale response applies nothing")
}

func TestStaleFailureIsIgnored(t *testing.T) {
	fetcher := &fakeFetcher{
		respond: func(_ context.Context, call int, _ model.InferenceRequest) ([]byte, error) {
			if call == 1 {
				return nil, fmt.Errorf("%w: status 502", signals.ErrTransport)
			}
			return actionPayload("stake"), nil
		},
	}
	c := newTestCoordinator(t, Config{Fetcher: fetcher})

	c, callA := c.Update(ManualRunMsg{})
	c, callB := c.Update(ManualRunMsg{})

	msgA := callA()
	msgB := callB()

	c, _ = c.Update(msgB)
	c, _ = c.Update(msgA)

	assert.Equal(t, model.StatusIdle, c.Status())
	assert.Empty(t, c.Diagnostic())
	assert.Equal(t, "stake", topAction(t, c))
}

func TestTransportFailureFallsBack(t *testing.T) {
	fetcher := &fakeFetcher{
		respond: func(context.Context, int, model.InferenceRequest) ([]byte, error) {
			return nil, fmt.Errorf("%w: status 503", signals.ErrTransport)
		},
	}
	c := newTestCoordinator(t, Config{Fetcher: fetcher})

	c, cmd := c.Update(ManualRunMsg{})
	c = drain(c, cmd)

	want, message := fallback.ErrorSnapshot()
	result, ok := c.Result()
	require.True(t, ok)

	assert.Equal(t, model.StatusError, c.Status())
	assert.Equal(t, want.Recommendations, result.Recommendations)
	assert.Equal(t, want.Cluster, result.Cluster)
	assert.Equal(t, message, c.Diagnostic())
	assert.Equal(t, fallback.ErrorMessage, c.Diagnostic())
	assert.Equal(t, model.SourceFallback, result.Source)
}

func TestMalformedResponseFallsBack(t *testing.T) {
	fetcher := &fakeFetcher{
		respond: func(context.Context, int, model.InferenceRequest) ([]byte, error) {
			return []byte("<html>bad gateway</html>"), nil
		},
	}
	c := newTestCoordinator(t, Config{Fetcher: fetcher})

	c, cmd := c.Update(ManualRunMsg{})
	c = drain(c, cmd)

	assert.Equal(t, model.StatusError, c.Status())
	assert.Equal(t, fallback.ErrorMessage, c.Diagnostic())
}

func TestTimeoutIsGenuineFailure(t *testing.T) {
	fetcher := &fakeFetcher{
		respond: func(ctx context.Context, _ int, _ model.InferenceRequest) ([]byte, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	c := newTestCoordinator(t, Config{Fetcher: fetcher, Timeout: 20 * time.Millisecond})

	c, cmd := c.Update(ManualRunMsg{})
	c = drain(c, cmd)

	assert.Equal(t, model.StatusError, c.Status())
	assert.Equal(t, fallback.ErrorMessage, c.Diagnostic())
}

func TestCancellationIsNeverAnError(t *testing.T) {
	fetcher := &fakeFetcher{
		respond: func(context.Context, int, model.InferenceRequest) ([]byte, error) {
			return nil, context.Canceled
		},
	}
	c := newTestCoordinator(t, Config{Fetcher: fetcher})

	c, cmd := c.Update(ManualRunMsg{})
	c = drain(c, cmd)

	assert.Equal(t, model.StatusIdle, c.Status())
	assert.Empty(t, c.Diagnostic())
	assert.Equal(t, uint64(0), c.Revision())
}

func TestParentCancelReturnsToIdle(t *testing.T) {
	fetcher := &fakeFetcher{
		respond: func(ctx context.Context, _ int, _ model.InferenceRequest) ([]byte, error) {
			<-ctx.Done()
			return nil, fmt.Errorf("%w: %w", signals.ErrCancelled, ctx.Err())
		},
	}

	parent, cancel := context.WithCancel(context.Background())
	c, err := New(parent, Config{Fetcher: fetcher}, bias.High)
	require.NoError(t, err)

	c, cmd := c.Update(ManualRunMsg{})
	require.Equal(t, model.StatusLoading, c.Status())
	generation := c.Generation()

	cancel()
	c = drain(c, cmd)

	assert.Equal(t, model.StatusIdle, c.Status())
	assert.Equal(t, generation, c.Generation())
	assert.Empty(t, c.Diagnostic())
	_, ok := c.Result()
	assert.False(t, ok)
}

func TestParentCancelKeepsPreviousResult(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher := &fakeFetcher{
		respond: func(ctx context.Context, call int, _ model.InferenceRequest) ([]byte, error) {
			if call == 1 {
				return actionPayload("restake"), nil
			}
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	c, err := New(parent, Config{Fetcher: fetcher}, bias.High)
	require.NoError(t, err)

	c, cmd := c.Update(ManualRunMsg{})
	c = drain(c, cmd)
	require.Equal(t, "restake", topAction(t, c))

	c, cmd = c.Update(ManualRunMsg{})
	cancel()
	c = drain(c, cmd)

	assert.Equal(t, model.StatusIdle, c.Status())
	assert.Equal(t, "restake", topAction(t, c))
	assert.Equal(t, uint64(1), c.Revision())
}

func TestRecoveryAfterFailure(t *testing.T) {
	fail := true
	fetcher := &fakeFetcher{
		respond: func(context.Context, int, model.InferenceRequest) ([]byte, error) {
			if fail {
				return nil, errors.New("connection reset")
			}
			return actionPayload("stake"), nil
		},
	}
	c := newTestCoordinator(t, Config{Fetcher: fetcher})

	c, cmd := c.Update(ManualRunMsg{})
	c = drain(c, cmd)
	require.Equal(t, model.StatusError, c.Status())

	fail = false
	c, cmd = c.Update(ManualRunMsg{})
	assert.Equal(t, model.StatusLoading, c.Status())
	c = drain(c, cmd)

	assert.Equal(t, model.StatusIdle, c.Status())
	assert.Empty(t, c.Diagnostic())
	assert.Equal(t, "stake", topAction(t, c))
}

func TestDemoModeNeverCallsNetwork(t *testing.T) {
	fetcher := &fakeFetcher{}
	c := newTestCoordinator(t, Config{
		Fetcher:    fetcher,
		Demo:       true,
		WalletHint: "0xabc",
		Debounce:   5 * time.Millisecond,
	})

	demo := fallback.DemoSnapshot()

	c, cmd := c.Update(ManualRunMsg{IncludeWalletHint: true})
	assert.Nil(t, cmd)
	assert.Equal(t, model.StatusIdle, c.Status())
	result, ok := c.Result()
	require.True(t, ok)
	assert.Equal(t, demo.Recommendations, result.Recommendations)
	assert.Equal(t, demo.Cluster, result.Cluster)

	for _, b := range []int{bias.Low, bias.High, 0, 100} {
		var tick tea.Cmd
		c, tick = c.Update(BiasChangedMsg{Bias: b})
		c = drain(c, tick)

		result, ok = c.Result()
		require.True(t, ok)
		assert.Equal(t, demo.Recommendations, result.Recommendations)
		assert.Equal(t, model.StatusIdle, c.Status())
	}

	assert.Empty(t, fetcher.Calls())
	assert.Equal(t, 0, c.Dispatches())
	assert.Equal(t, uint64(5), c.Revision())
}

func TestWalletHint(t *testing.T) {
	fetcher := &fakeFetcher{}
	c := newTestCoordinator(t, Config{Fetcher: fetcher, WalletHint: "0xabc"})

	c, cmd := c.Update(ManualRunMsg{IncludeWalletHint: true})
	assert.Equal(t, "0xabc", c.LastRequest().WalletHint)
	c = drain(c, cmd)

	c, cmd = c.Update(ManualRunMsg{IncludeWalletHint: false})
	assert.Empty(t, c.LastRequest().WalletHint)
	_ = drain(c, cmd)

	calls := fetcher.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "0xabc", calls[0].WalletHint)
	assert.Empty(t, calls[1].WalletHint)
}

func TestAbort(t *testing.T) {
	fetcher := &fakeFetcher{}
	c := newTestCoordinator(t, Config{Fetcher: fetcher, Debounce: 5 * time.Millisecond})

	c, call := c.Update(ManualRunMsg{})
	c, tick := c.Update(BiasChangedMsg{Bias: bias.Low})
	c, cmd := c.Update(AbortMsg{})
	assert.Nil(t, cmd)
	assert.Equal(t, model.StatusIdle, c.Status())
	assert.False(t, c.DebouncePending())
	assert.Equal(t, uint64(2), c.Generation())

	c, cmd = c.Update(tick())
	assert.Nil(t, cmd)

	c, _ = c.Update(call())
	_, ok := c.Result()
	assert.False(t, ok, "a completion for an aborted call is discarded")
	assert.Len(t, fetcher.Calls(), 1)
}

func TestResultIsACopy(t *testing.T) {
	c := newTestCoordinator(t, Config{Demo: true})
	c, _ = c.Update(ManualRunMsg{})

	result, ok := c.Result()
	require.True(t, ok)
	result.Recommendations[0].Action = "mutated"

	assert.NotEqual(t, "mutated", topAction(t, c))
}

func TestUnknownMessageIsIgnored(t *testing.T) {
	c := newTestCoordinator(t, Config{Demo: true})
	next, cmd := c.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	assert.Nil(t, cmd)
	assert.Equal(t, c.Status(), next.Status())
	assert.Equal(t, c.Generation(), next.Generation())
}
