package trust

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Veraticus/signal-deck/internal/common"
	"github.com/Veraticus/signal-deck/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const registryJSON = `{"datasets": [
  {"id": "eeth_apr", "label": "eETH APR Snapshot", "status": "ok", "size_bytes": 2048,
   "sha256": "abc123", "last_verified_at": "2025-11-09T06:00:57.123456+00:00",
   "eigenlayer_attestation": {"simulated": true, "proof_id": "eigen-sim::eeth_apr::2025-11-09T06:00:57Z", "confidence": 0.9},
   "zkp_simulation": {"scheme": "zkp-demo", "status": "pass", "dataset": "eeth_apr"}},
  {"id": "holder_retention", "label": "EtherFi Holder Retention", "status": "missing", "size_bytes": null,
   "sha256": null, "last_verified_at": "2025-11-09T06:00:57.123456+00:00"}
]}`

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	client, err := NewClient(Config{
		BaseURL: url,
		Retry:   common.RetryOptions{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond},
	})
	require.NoError(t, err)
	return client
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "  "})
	require.ErrorIs(t, err, common.ErrMissingConfig)

	client, err := NewClient(Config{BaseURL: "http://localhost:8100/"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8100", client.baseURL)
}

func TestClientDatasets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/trust/datasets", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(registryJSON))
	}))
	defer server.Close()

	records, err := newTestClient(t, server.URL).Datasets(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	ok := records[0]
	assert.Equal(t, "eeth_apr", ok.ID)
	assert.Equal(t, model.DatasetOK, ok.Status)
	assert.True(t, ok.Verified())
	require.NotNil(t, ok.SizeBytes)
	assert.Equal(t, int64(2048), *ok.SizeBytes)
	require.NotNil(t, ok.Attestation)
	assert.InDelta(t, 0.9, ok.Attestation.Confidence, 1e-9)
	require.NotNil(t, ok.ZKP)
	assert.Equal(t, "pass", ok.ZKP.Status)
	assert.Equal(t, 2025, ok.LastVerifiedAt.Year())

	missing := records[1]
	assert.Equal(t, model.DatasetMissing, missing.Status)
	assert.Nil(t, missing.SizeBytes)
	assert.Empty(t, missing.SHA256)
	assert.False(t, missing.Verified())
}

func TestClientDatasetsRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(registryJSON))
	}))
	defer server.Close()

	records, err := newTestClient(t, server.URL).Datasets(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, int32(3), hits.Load())
}

func TestClientDatasetsGivesUp(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).Datasets(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrMaxRetries)
	assert.ErrorIs(t, err, common.ErrServiceUnavailable)
	assert.Equal(t, int32(3), hits.Load())
}

func TestClientDatasetsNotInitialized(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		http.Error(w, `{"detail": "Trust registry not initialized"}`, http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).Datasets(context.Background())
	assert.True(t, errors.Is(err, ErrRegistryNotInitialized))
	assert.Equal(t, int32(1), hits.Load(), "not-found is not retried")
}

func TestClientDatasetsMalformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"datasets": "nope"`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).Datasets(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse registry")
}

func TestClientVerify(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/trust/verify", r.URL.Path)
		_, _ = w.Write([]byte(registryJSON))
	}))
	defer server.Close()

	records, err := newTestClient(t, server.URL).Verify(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 2)
}
