package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Veraticus/signal-deck/internal/common"
	"github.com/Veraticus/signal-deck/internal/config"
	"github.com/Veraticus/signal-deck/internal/tui"
	"github.com/Veraticus/signal-deck/internal/tui/themes"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func dashCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dash",
		Short: "Open the interactive signal dashboard",
		Long: `Open the terminal dashboard. Move the bias control with the arrow keys;
a request is sent once input settles. The dataset registry is polled in the
background and every applied result is saved to run history.`,
		Example: `  # Live dashboard against the default signal service
  deck dash

  # Offline demo with a sentiment-leaning start
  deck dash --demo --weight 30`,
		RunE: runDash,
	}

	cmd.Flags().Int("weight", -1, "initial bias control value 0-100 (default: signals.demo_weight)")
	cmd.Flags().Bool("demo", false, "use canned demo signals instead of the live service")
	cmd.Flags().String("theme", "default", "color theme (default, catppuccin-mocha)")
	cmd.Flags().String("log-file", "$HOME/.local/share/deck/dash.log", "file to write logs to while the dashboard owns the terminal")

	return cmd
}

func runDash(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("demo") {
		settings.Signals.Demo, _ = cmd.Flags().GetBool("demo")
	}

	weight, _ := cmd.Flags().GetInt("weight")
	if weight < 0 {
		weight = settings.Signals.DemoWeight
	}

	logFile, _ := cmd.Flags().GetString("log-file")
	closeLog, err := redirectLogs(config.ExpandPath(logFile))
	if err != nil {
		return err
	}
	defer closeLog()

	coordCfg, err := newCoordinatorConfig(settings)
	if err != nil {
		return err
	}

	store, err := initStorage(ctx, settings)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	registry, err := newTrustClient(settings)
	if err != nil {
		return err
	}

	themeName, _ := cmd.Flags().GetString("theme")

	slog.Info("Starting dashboard",
		"demo", settings.Signals.Demo,
		"signals_url", settings.Signals.APIURL,
		"weight", weight)

	return tui.Run(ctx,
		tui.WithCoordinator(coordCfg),
		tui.WithStorage(store),
		tui.WithRegistry(registry, settings.Trust.PollInterval),
		tui.WithInitialWeight(weight),
		tui.WithTheme(themes.GetTheme(themeName)),
	)
}

// redirectLogs sends slog output to path while the dashboard runs.
func redirectLogs(path string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600) //nolint:gosec // path comes from the operator
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	if err := common.SetupLogger(f, viper.GetString("logging.level"), viper.GetString("logging.format")); err != nil {
		_ = f.Close()
		return nil, err
	}

	return func() {
		_ = common.SetupLogger(os.Stderr, viper.GetString("logging.level"), viper.GetString("logging.format"))
		_ = f.Close()
	}, nil
}
