package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/SyntevoAlex/gitgitgadget/archive"
	"github.com/SyntevoAlex/gitgitgadget/gitcmd"
)

// registerBackfill adds the subcommand that seeds or extends a local archive
// clone from an mbox snapshot, e.g. a downloaded lore dump.
func registerBackfill(root *cobra.Command) {
	var (
		archiveDir string
		branch     string
		batchSize  int
		logLevel   string
	)

	backfillCmd := &cobra.Command{
		Use:   "backfill <mbox-file>",
		Short: "Import an mbox snapshot into the archive repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

			git, err := gitcmd.New(archiveDir)
			if err != nil {
				return err
			}
			a := archive.New(git, branch, logger)

			imported, err := a.ImportMbox(cmd.Context(), args[0], batchSize, logLevel)
			if err != nil {
				return fmt.Errorf("import %s: %w", args[0], err)
			}

			logger.Info("backfill done", "imported", imported)
			return nil
		},
	}

	flags := backfillCmd.Flags()
	flags.StringVar(&archiveDir, "archive", "", "Path to the local clone of the mailing-list archive")
	flags.StringVar(&branch, "branch", "master", "Archive branch to import onto")
	flags.IntVar(&batchSize, "batch", 100, "Messages per import commit")
	flags.StringVar(&logLevel, "log-level", "info", "Logging level: debug, info, warn, error")
	_ = backfillCmd.MarkFlagRequired("archive")

	root.AddCommand(backfillCmd)
}
