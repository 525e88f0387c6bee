package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/Veraticus/signal-deck/internal/trust"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const verifiedRegistry = `{"datasets": [
  {"id": "eeth_apr", "label": "eETH APR Snapshot", "status": "ok", "size_bytes": 2048,
   "sha256": "0123456789abcdef0123", "last_verified_at": "2025-11-09T06:00:57Z"},
  {"id": "holder_retention", "label": "EtherFi Holder Retention", "status": "missing",
   "size_bytes": null, "sha256": null, "last_verified_at": "2025-11-09T06:00:57Z"}
]}`

// runTrust executes `deck trust <args>` against a trust service at url.
func runTrust(t *testing.T, url string, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("trust.api_url", url)
	viper.Set("database.path", filepath.Join(t.TempDir(), "deck.db"))

	var out bytes.Buffer
	cmd := trustCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestTrustVerify(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/trust/verify", r.URL.Path)
		_, _ = w.Write([]byte(verifiedRegistry))
	}))
	defer server.Close()

	out, err := runTrust(t, server.URL, "verify")
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load())
	assert.Contains(t, out, "eeth_apr")
	assert.Contains(t, out, "0123456789abcdef")
	assert.Contains(t, out, "holder_retention")
	assert.Contains(t, out, "missing")
	assert.Contains(t, out, "1/2 datasets verified")
}

func TestTrustVerifyIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := runTrust(t, server.URL, "verify")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to verify registry")
	assert.Equal(t, int32(1), calls.Load())
}

func TestTrustVerifyUninitialized(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	_, err := runTrust(t, server.URL, "verify")
	require.ErrorIs(t, err, trust.ErrRegistryNotInitialized)
}

func TestTrustListFromAPI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/trust/datasets", r.URL.Path)
		_, _ = w.Write([]byte(verifiedRegistry))
	}))
	defer server.Close()

	out, err := runTrust(t, server.URL, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "eeth_apr")
	assert.Contains(t, out, "holder_retention")
}
