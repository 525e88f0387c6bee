package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Veraticus/signal-deck/internal/cli"
	"github.com/Veraticus/signal-deck/internal/config"
	"github.com/Veraticus/signal-deck/internal/signals"
	"github.com/spf13/cobra"
)

const doctorTimeout = 5 * time.Second

type checkResult struct {
	err    error
	name   string
	detail string
	warn   bool
}

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, services and storage",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			settings, err := loadSettings()
			if err != nil {
				return err
			}

			results := []checkResult{
				checkSignals(ctx, settings),
				checkTrust(ctx, settings),
				checkStorage(ctx, settings),
				checkManifest(settings),
			}

			failed := 0
			for _, r := range results {
				switch {
				case r.err != nil && r.warn:
					cmd.Println(cli.FormatWarning(fmt.Sprintf("%-10s %v", r.name, r.err)))
				case r.err != nil:
					failed++
					cmd.Println(cli.FormatError(fmt.Sprintf("%-10s %v", r.name, r.err)))
				default:
					cmd.Println(cli.FormatSuccess(fmt.Sprintf("%-10s %s", r.name, r.detail)))
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d check(s) failed", failed)
			}
			return nil
		},
	}
}

func checkSignals(ctx context.Context, settings *config.Settings) checkResult {
	result := checkResult{name: "signals"}
	if settings.Signals.Demo {
		result.detail = "demo mode, live service not used"
		return result
	}

	client, err := signals.NewClient(signals.Config{BaseURL: settings.Signals.APIURL})
	if err != nil {
		result.err = err
		return result
	}

	ctx, cancel := context.WithTimeout(ctx, doctorTimeout)
	defer cancel()
	if err := client.Health(ctx); err != nil {
		result.err = fmt.Errorf("%s: %w (dashboard will show fallback signals)", client.BaseURL(), err)
		return result
	}
	result.detail = client.BaseURL() + " healthy"
	return result
}

func checkTrust(ctx context.Context, settings *config.Settings) checkResult {
	result := checkResult{name: "trust", warn: true}

	client, err := newTrustClient(settings)
	if err != nil {
		result.err = err
		return result
	}

	ctx, cancel := context.WithTimeout(ctx, doctorTimeout)
	defer cancel()
	records, err := client.Datasets(ctx)
	if err != nil {
		result.err = err
		return result
	}

	verified := 0
	for _, r := range records {
		if r.Verified() {
			verified++
		}
	}
	result.detail = fmt.Sprintf("%d/%d datasets verified", verified, len(records))
	return result
}

func checkStorage(ctx context.Context, settings *config.Settings) checkResult {
	result := checkResult{name: "storage"}

	store, err := initStorage(ctx, settings)
	if err != nil {
		result.err = err
		return result
	}
	defer func() { _ = store.Close() }()

	runs, err := store.ListRuns(ctx, 1)
	if err != nil {
		result.err = err
		return result
	}

	result.detail = settings.DatabasePath
	if len(runs) > 0 {
		result.detail += fmt.Sprintf(" (last run %s)", runs[0].CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return result
}

func checkManifest(settings *config.Settings) checkResult {
	result := checkResult{name: "manifest", warn: true}
	if _, err := os.Stat(settings.Trust.Manifest); err != nil {
		result.err = fmt.Errorf("%s not found; 'deck trust build' needs --manifest or --data-dir", settings.Trust.Manifest)
		return result
	}
	result.detail = settings.Trust.Manifest
	return result
}
