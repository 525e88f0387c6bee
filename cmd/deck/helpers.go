package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Veraticus/signal-deck/internal/common"
	"github.com/Veraticus/signal-deck/internal/config"
	"github.com/Veraticus/signal-deck/internal/coordinator"
	"github.com/Veraticus/signal-deck/internal/service"
	"github.com/Veraticus/signal-deck/internal/signals"
	"github.com/Veraticus/signal-deck/internal/storage"
	"github.com/Veraticus/signal-deck/internal/trust"
	"github.com/spf13/viper"
)

// loadSettings resolves and validates the configuration.
func loadSettings() (*config.Settings, error) {
	settings, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, common.NewUserErrorWithHint("invalid configuration",
			"check $HOME/.config/deck/config.yaml or the MODEL_API_URL, TRUST_API_URL and DECK_* variables", err)
	}
	return settings, nil
}

// initStorage opens the run history database and applies migrations.
func initStorage(ctx context.Context, settings *config.Settings) (service.Storage, error) {
	store, err := storage.NewSQLiteStorage(settings.DatabasePath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// newCoordinatorConfig wires the signal client into coordinator settings.
// Demo mode never builds a client.
func newCoordinatorConfig(settings *config.Settings) (coordinator.Config, error) {
	cfg := coordinator.Config{
		WalletHint: settings.Signals.Wallet,
		Debounce:   settings.Signals.Debounce,
		Timeout:    settings.Signals.Timeout,
		Demo:       settings.Signals.Demo,
	}
	if cfg.Demo {
		return cfg, nil
	}

	client, err := signals.NewClient(signals.Config{
		HTTPClient: &http.Client{},
		BaseURL:    settings.Signals.APIURL,
	})
	if err != nil {
		return coordinator.Config{}, err
	}
	cfg.Fetcher = client
	return cfg, nil
}

// newTrustClient creates the registry client with default retry settings.
func newTrustClient(settings *config.Settings) (*trust.Client, error) {
	return trust.NewClient(trust.Config{
		BaseURL: settings.Trust.APIURL,
		Retry:   common.RetryOptions{MaxAttempts: 3},
	})
}
