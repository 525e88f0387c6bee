// Package config loads and validates deck settings from viper.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Veraticus/signal-deck/internal/bias"
	"github.com/Veraticus/signal-deck/internal/common"
	"github.com/spf13/viper"
)

// Defaults.
const (
	DefaultSignalsURL   = "http://localhost:8000"
	DefaultTrustURL     = "http://localhost:8100"
	DefaultDemoWeight   = 65
	DefaultDebounce     = 600 * time.Millisecond
	DefaultTimeout      = 15 * time.Second
	DefaultPollInterval = 30 * time.Second
	DefaultManifest     = "./datasets.yaml"
	DefaultRegistryPath = "./trust_proofs.json"
	DefaultDatabasePath = "$HOME/.local/share/deck/deck.db"
)

// envBindings maps config keys to the unprefixed environment variables the
// signal and trust services already use.
var envBindings = map[string]string{
	"signals.demo":        "DEMO_SIGNALS",
	"signals.demo_weight": "DEMO_WEIGHT",
	"signals.api_url":     "MODEL_API_URL",
	"signals.wallet":      "DECK_WALLET",
	"signals.debounce":    "DECK_DEBOUNCE",
	"signals.timeout":     "DECK_TIMEOUT",
	"trust.api_url":       "TRUST_API_URL",
}

// SignalsSettings configures the signal service and the request coordinator.
type SignalsSettings struct {
	APIURL     string
	Wallet     string
	Debounce   time.Duration
	Timeout    time.Duration
	DemoWeight int
	Demo       bool
}

// TrustSettings configures the dataset registry.
type TrustSettings struct {
	APIURL       string
	Manifest     string
	RegistryPath string
	PollInterval time.Duration
}

// LoggingSettings configures slog.
type LoggingSettings struct {
	Level  string
	Format string
}

// Settings is the fully resolved deck configuration.
type Settings struct {
	Logging      LoggingSettings
	Trust        TrustSettings
	Signals      SignalsSettings
	DatabasePath string
}

// SetDefaults registers defaults and environment bindings on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("signals.demo", false)
	v.SetDefault("signals.demo_weight", DefaultDemoWeight)
	v.SetDefault("signals.api_url", DefaultSignalsURL)
	v.SetDefault("signals.wallet", "")
	v.SetDefault("signals.debounce", DefaultDebounce)
	v.SetDefault("signals.timeout", DefaultTimeout)
	v.SetDefault("trust.api_url", DefaultTrustURL)
	v.SetDefault("trust.poll_interval", DefaultPollInterval)
	v.SetDefault("trust.manifest", DefaultManifest)
	v.SetDefault("trust.registry_path", DefaultRegistryPath)
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}
}

// Load resolves settings from v and validates them.
func Load(v *viper.Viper) (*Settings, error) {
	SetDefaults(v)

	settings := &Settings{
		Signals: SignalsSettings{
			APIURL:     strings.TrimSpace(v.GetString("signals.api_url")),
			Wallet:     strings.TrimSpace(v.GetString("signals.wallet")),
			Debounce:   v.GetDuration("signals.debounce"),
			Timeout:    v.GetDuration("signals.timeout"),
			DemoWeight: v.GetInt("signals.demo_weight"),
			Demo:       v.GetBool("signals.demo"),
		},
		Trust: TrustSettings{
			APIURL:       strings.TrimSpace(v.GetString("trust.api_url")),
			Manifest:     ExpandPath(v.GetString("trust.manifest")),
			RegistryPath: ExpandPath(v.GetString("trust.registry_path")),
			PollInterval: v.GetDuration("trust.poll_interval"),
		},
		Logging: LoggingSettings{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
		DatabasePath: ExpandPath(v.GetString("database.path")),
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Validate checks the settings for values that cannot work.
func (s *Settings) Validate() error {
	if !s.Signals.Demo {
		if err := validateURL("signals.api_url", s.Signals.APIURL); err != nil {
			return err
		}
	}
	if err := validateURL("trust.api_url", s.Trust.APIURL); err != nil {
		return err
	}
	if s.Signals.DemoWeight < bias.MinWeight || s.Signals.DemoWeight > bias.MaxWeight {
		return fmt.Errorf("%w: signals.demo_weight must be between %d and %d, got %d",
			common.ErrInvalidConfig, bias.MinWeight, bias.MaxWeight, s.Signals.DemoWeight)
	}
	if s.Signals.Debounce < 0 {
		return fmt.Errorf("%w: signals.debounce must not be negative", common.ErrInvalidConfig)
	}
	if s.Signals.Timeout <= 0 {
		return fmt.Errorf("%w: signals.timeout must be positive", common.ErrInvalidConfig)
	}
	if s.Trust.PollInterval < time.Second {
		return fmt.Errorf("%w: trust.poll_interval must be at least 1s", common.ErrInvalidConfig)
	}
	if s.DatabasePath == "" {
		return fmt.Errorf("%w: database.path", common.ErrMissingConfig)
	}
	if _, err := common.ParseLevel(s.Logging.Level); err != nil {
		return err
	}
	return nil
}

func validateURL(key, raw string) error {
	if raw == "" {
		return fmt.Errorf("%w: %s", common.ErrMissingConfig, key)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %s %q is not an absolute URL", common.ErrInvalidConfig, key, raw)
	}
	return nil
}
