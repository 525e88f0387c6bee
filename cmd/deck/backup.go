package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/Veraticus/signal-deck/internal/cli"
	"github.com/Veraticus/signal-deck/internal/storage"
	"github.com/spf13/cobra"
)

func backupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup [tag]",
		Short: "Snapshot the run history database",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			settings, err := loadSettings()
			if err != nil {
				return err
			}
			store, err := storage.NewSQLiteStorage(settings.DatabasePath)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()
			if err := store.Migrate(ctx); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}

			if list, _ := cmd.Flags().GetBool("list"); list {
				backups, err := store.ListBackups()
				if err != nil {
					return err
				}
				if len(backups) == 0 {
					cmd.Println(cli.FormatInfo("No backups yet."))
					return nil
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				_, _ = fmt.Fprintln(w, "ID\tCREATED\tRUNS\tDATASETS\tSIZE")
				for _, b := range backups {
					_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n",
						b.ID, b.CreatedAt.Local().Format("2006-01-02 15:04"), b.Runs, b.Datasets, b.FileSize)
				}
				return w.Flush()
			}

			tag := ""
			if len(args) == 1 {
				tag = args[0]
			}
			info, err := store.Backup(ctx, tag)
			if err != nil {
				return err
			}
			cmd.Println(cli.FormatSuccess(fmt.Sprintf("Backed up %d runs and %d datasets to %s", info.Runs, info.Datasets, info.Path)))
			return nil
		},
	}

	cmd.Flags().Bool("list", false, "list existing backups")
	return cmd
}
