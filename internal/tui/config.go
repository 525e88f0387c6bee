package tui

import (
	"time"

	"github.com/Veraticus/signal-deck/internal/coordinator"
	"github.com/Veraticus/signal-deck/internal/service"
	"github.com/Veraticus/signal-deck/internal/tui/themes"
)

// Config holds dashboard configuration.
type Config struct {
	Theme         themes.Theme
	Storage       service.Storage
	Registry      service.RegistrySource
	Coordinator   coordinator.Config
	PollInterval  time.Duration
	InitialWeight int
	Width         int
	Height        int
	AutoRun       bool
}

// Option is a functional option for configuring the dashboard.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Theme:         themes.Default,
		PollInterval:  30 * time.Second,
		InitialWeight: 65,
		Width:         100,
		Height:        40,
		AutoRun:       true,
	}
}

// WithCoordinator configures request coordination.
func WithCoordinator(cfg coordinator.Config) Option {
	return func(c *Config) {
		c.Coordinator = cfg
	}
}

// WithStorage persists every applied result to storage.
func WithStorage(storage service.Storage) Option {
	return func(c *Config) {
		c.Storage = storage
	}
}

// WithRegistry polls the dataset registry every interval.
func WithRegistry(source service.RegistrySource, interval time.Duration) Option {
	return func(c *Config) {
		c.Registry = source
		if interval > 0 {
			c.PollInterval = interval
		}
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithInitialWeight seeds the bias control.
func WithInitialWeight(weight int) Option {
	return func(c *Config) {
		c.InitialWeight = weight
	}
}

// WithAutoRun controls whether a run is dispatched on startup.
func WithAutoRun(enabled bool) Option {
	return func(c *Config) {
		c.AutoRun = enabled
	}
}
