package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/Veraticus/signal-deck/internal/cli"
	"github.com/Veraticus/signal-deck/internal/config"
	"github.com/Veraticus/signal-deck/internal/model"
	"github.com/Veraticus/signal-deck/internal/trust"
	"github.com/spf13/cobra"
)

func trustCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trust",
		Short: "Inspect and build the dataset integrity registry",
		Long: `The dataset registry lists every training dataset with its SHA-256 digest
and simulated attestation records.`,
		Example: `  # Show the registry served by the trust API
  deck trust list

  # Ask the trust service to re-hash its datasets
  deck trust verify

  # Hash local datasets into trust_proofs.json
  deck trust build --manifest ./datasets.yaml

  # Poll the registry and log status changes
  deck trust watch --interval 1m`,
	}

	cmd.AddCommand(trustListCmd())
	cmd.AddCommand(trustVerifyCmd())
	cmd.AddCommand(trustBuildCmd())
	cmd.AddCommand(trustWatchCmd())

	return cmd
}

func trustListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registry entries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			settings, err := loadSettings()
			if err != nil {
				return err
			}

			var records []model.DatasetRecord
			source, _ := cmd.Flags().GetString("source")
			switch source {
			case "api":
				client, err := newTrustClient(settings)
				if err != nil {
					return err
				}
				if records, err = client.Datasets(ctx); err != nil {
					return fmt.Errorf("failed to fetch registry: %w", err)
				}
			case "file":
				if records, err = trust.LoadRegistry(settings.Trust.RegistryPath); err != nil {
					return err
				}
			case "cache":
				store, err := initStorage(ctx, settings)
				if err != nil {
					return err
				}
				defer func() { _ = store.Close() }()
				if records, err = store.ListDatasets(ctx); err != nil {
					return fmt.Errorf("failed to read cached registry: %w", err)
				}
			default:
				return fmt.Errorf("unknown source %q (want api, file or cache)", source)
			}

			if len(records) == 0 {
				cmd.Println(cli.FormatInfo("Registry is empty."))
				return nil
			}
			cmd.Print(cli.FormatDatasets(records))
			return nil
		},
	}

	cmd.Flags().String("source", "api", "where to read the registry from (api, file, cache)")
	return cmd
}

func trustVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Have the trust service rebuild its registry",
		Long: `Re-hash every dataset on the trust service and print the fresh registry.
Unlike list, the request is sent once and never retried.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			client, err := newTrustClient(settings)
			if err != nil {
				return err
			}

			records, err := client.Verify(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to verify registry: %w", err)
			}
			if len(records) == 0 {
				cmd.Println(cli.FormatInfo("Registry is empty."))
				return nil
			}

			verified := 0
			for _, r := range records {
				if r.Verified() {
					verified++
				}
			}
			cmd.Print(cli.FormatDatasets(records))
			if verified < len(records) {
				cmd.Println(cli.FormatWarning(fmt.Sprintf("%d/%d datasets verified", verified, len(records))))
				return nil
			}
			cmd.Println(cli.FormatSuccess(fmt.Sprintf("%d/%d datasets verified", verified, len(records))))
			return nil
		},
	}
}

func trustBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Hash local datasets and write the registry file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			settings, err := loadSettings()
			if err != nil {
				return err
			}

			manifest, err := resolveManifest(cmd, settings)
			if err != nil {
				return err
			}

			concurrency, _ := cmd.Flags().GetInt("concurrency")
			opts := trust.BuildOptions{Concurrency: concurrency}
			if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
				opts.Progress = cmd.ErrOrStderr()
			}

			records, err := trust.BuildRegistry(ctx, manifest, opts)
			if err != nil {
				return fmt.Errorf("failed to build registry: %w", err)
			}

			output, _ := cmd.Flags().GetString("output")
			if output == "" {
				output = settings.Trust.RegistryPath
			}
			if err := trust.SaveRegistry(config.ExpandPath(output), records); err != nil {
				return err
			}

			missing := 0
			for _, r := range records {
				if r.Status == model.DatasetMissing {
					missing++
				}
			}
			cmd.Print(cli.FormatDatasets(records))
			cmd.Println(cli.FormatSuccess(fmt.Sprintf("Wrote %d entries to %s", len(records), output)))
			if missing > 0 {
				cmd.Println(cli.FormatWarning(fmt.Sprintf("%d dataset(s) missing", missing)))
			}
			return nil
		},
	}

	cmd.Flags().String("manifest", "", "dataset manifest (default: trust.manifest)")
	cmd.Flags().String("data-dir", "", "use the built-in dataset list rooted at this directory")
	cmd.Flags().String("output", "", "registry file to write (default: trust.registry_path)")
	cmd.Flags().Int("concurrency", 4, "files hashed in parallel")
	cmd.Flags().Bool("quiet", false, "hide the progress bar")
	return cmd
}

func resolveManifest(cmd *cobra.Command, settings *config.Settings) (trust.Manifest, error) {
	if dir, _ := cmd.Flags().GetString("data-dir"); dir != "" {
		return trust.DefaultManifest(config.ExpandPath(dir)), nil
	}

	path, _ := cmd.Flags().GetString("manifest")
	if path == "" {
		path = settings.Trust.Manifest
	}
	path = config.ExpandPath(path)

	if _, err := os.Stat(path); err != nil {
		return trust.Manifest{}, fmt.Errorf("manifest %s not found; pass --manifest or --data-dir: %w", path, err)
	}
	return trust.LoadManifest(path)
}

func trustWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll the registry and log status changes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			settings, err := loadSettings()
			if err != nil {
				return err
			}
			interval := settings.Trust.PollInterval
			if cmd.Flags().Changed("interval") {
				interval, _ = cmd.Flags().GetDuration("interval")
			}

			client, err := newTrustClient(settings)
			if err != nil {
				return err
			}
			store, err := initStorage(ctx, settings)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			out := cmd.OutOrStdout()
			watcher := trust.NewWatcher(client, interval,
				trust.WithSnapshotStore(store),
				trust.WithChangeHandler(func(changes []trust.StatusChange) {
					lines := make([]string, 0, len(changes))
					for _, c := range changes {
						lines = append(lines, c.String())
					}
					_, _ = fmt.Fprintln(out, strings.Join(lines, "\n"))
				}),
			)

			if _, err := watcher.Poll(ctx); err != nil {
				slog.Warn("Initial registry poll failed", "error", err)
			}
			if err := watcher.Start(ctx); err != nil {
				return err
			}
			<-ctx.Done()
			watcher.Stop()
			return nil
		},
	}

	cmd.Flags().Duration("interval", 0, "poll interval (default: trust.poll_interval)")
	return cmd
}
