package signals

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Veraticus/signal-deck/internal/model"
	"github.com/google/uuid"
)

const (
	signalsPath = "/signals"
	healthPath  = "/health"

	// maxResponseBytes bounds how much of a response body is read.
	maxResponseBytes = 1 << 20
)

// Config configures a signal service client.
type Config struct {
	HTTPClient *http.Client
	BaseURL    string
}

// Client posts inference requests to the signal service.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a new signal service client.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("signal service URL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		// Per-call deadlines come from the caller's context.
		httpClient = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
	}, nil
}

// requestBody is the wire form of model.InferenceRequest.
type requestBody struct {
	Wallet          *string `json:"wallet"`
	PriceWeight     float64 `json:"price_weight"`
	SentimentWeight float64 `json:"sentiment_weight"`
}

func newRequestBody(req model.InferenceRequest) requestBody {
	body := requestBody{
		PriceWeight:     req.PriceWeight,
		SentimentWeight: req.SentimentWeight,
	}
	if req.WalletHint != "" {
		wallet := req.WalletHint
		body.Wallet = &wallet
	}
	return body
}

// Fetch posts the request and returns the raw response payload.
// Errors wrap ErrCancelled, ErrTransport or ErrMalformed.
func (c *Client) Fetch(ctx context.Context, req model.InferenceRequest) ([]byte, error) {
	jsonBody, err := json.Marshal(newRequestBody(req))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal request: %w", ErrMalformed, err)
	}

	requestID := uuid.NewString()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+signalsPath, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", ErrTransport, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}
	if len(body) > maxResponseBytes {
		return nil, fmt.Errorf("%w: response too large (over %d bytes)", ErrTransport, maxResponseBytes)
	}

	slog.Debug("Signal service responded",
		"request_id", requestID,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"price_weight", req.PriceWeight)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d: %s", ErrTransport, resp.StatusCode, truncate(string(body), 200))
	}

	return body, nil
}

// Health checks that the signal service is up.
func (c *Client) Health(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %w", ErrTransport, err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return classifyTransportError(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health status %d", ErrTransport, resp.StatusCode)
	}
	return nil
}

// BaseURL returns the service address the client posts to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func classifyTransportError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %w", ErrCancelled, err)
	}
	return fmt.Errorf("%w: %w", ErrTransport, err)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
