package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Veraticus/signal-deck/internal/cli"
	"github.com/Veraticus/signal-deck/internal/common"
	"github.com/Veraticus/signal-deck/internal/storage"
	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved runs",
		Long:  `List the results applied by the dashboard and 'deck signals', newest first.`,
		Example: `  deck history --limit 50
  deck history show 3f2a9c1e-...`,
		RunE: runHistory,
	}

	cmd.Flags().Int("limit", storage.DefaultRunLimit, "maximum number of runs to show")
	cmd.Flags().Bool("json", false, "print JSON")

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show one saved run in full",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryShow,
	})

	return cmd
}

func runHistory(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	store, err := initStorage(ctx, settings)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.ListRuns(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		cmd.Println(cli.FormatInfo("No runs saved yet. Try 'deck signals' or 'deck dash'."))
		return nil
	}

	cmd.Print(cli.FormatRuns(runs))
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	store, err := initStorage(ctx, settings)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	run, err := store.GetRun(ctx, args[0])
	if errors.Is(err, common.ErrNotFound) {
		return common.NewUserError(fmt.Sprintf("no run with id %s", args[0]), err)
	}
	if err != nil {
		return fmt.Errorf("failed to load run: %w", err)
	}

	cmd.Println(cli.FormatTitle("Run " + run.ID))
	cmd.Println(cli.SubtleStyle.Render(fmt.Sprintf("created %s · generation %d · %s",
		run.CreatedAt.Local().Format("2006-01-02 15:04:05"), run.Generation, run.Status)))
	if run.Request.WalletHint != "" {
		cmd.Println(cli.SubtleStyle.Render("wallet " + run.Request.WalletHint))
	}
	cmd.Print(cli.FormatResult(run.Result, run.Status, run.Diagnostic))
	return nil
}
