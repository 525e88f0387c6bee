package trust

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Veraticus/signal-deck/internal/common"
	"github.com/Veraticus/signal-deck/internal/model"
)

// ErrRegistryNotInitialized is returned when the registry has not been built yet.
var ErrRegistryNotInitialized = errors.New("trust registry not initialized")

// Config configures a registry client.
type Config struct {
	HTTPClient *http.Client
	BaseURL    string
	Retry      common.RetryOptions
}

// Client reads the dataset registry over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	retry      common.RetryOptions
}

type datasetsResponse struct {
	Datasets []model.DatasetRecord `json:"datasets"`
}

// NewClient creates a new registry client.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("%w: trust registry URL", common.ErrMissingConfig)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		retry:      cfg.Retry,
	}, nil
}

// Datasets lists the registry, retrying transient failures.
func (c *Client) Datasets(ctx context.Context) ([]model.DatasetRecord, error) {
	var records []model.DatasetRecord
	err := common.WithRetry(ctx, func() error {
		var err error
		records, err = c.call(ctx, http.MethodGet, "/trust/datasets")
		return err
	}, c.retry)
	return records, err
}

// Verify asks the registry service to rebuild itself and returns the result.
func (c *Client) Verify(ctx context.Context) ([]model.DatasetRecord, error) {
	return c.call(ctx, http.MethodPost, "/trust/verify")
}

func (c *Client) call(ctx context.Context, method, path string) ([]model.DatasetRecord, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", common.ErrServiceUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrRegistryNotInitialized
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, common.ErrRateLimit
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d", common.ErrServiceUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("trust registry error (status %d): %s", resp.StatusCode, string(body))
	}

	var decoded datasetsResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("failed to parse registry: %w", err)
	}
	return decoded.Datasets, nil
}
