package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/UrUsualKal/ai-traffic-light-system/internal/service/inspect"
	"github.com/UrUsualKal/ai-traffic-light-system/internal/version"
)

var (
	// journalFile is the SQLite journal written by the controller.
	journalFile string
	// limit caps how many rows are printed.
	limit int

	// rootCmd represents the base command for inspecting controller runs.
	rootCmd = &cobra.Command{
		Use:   "traffic-journal",
		Short: "Inspect the signal controller's run journal.",
		Long: `Reads the SQLite journal the controller writes and renders it for
operators: which runs happened, and tick by tick what each run observed,
decided and sent.`,
	}

	// runsCmd lists the recorded controller runs.
	runsCmd = &cobra.Command{
		Use:   "runs",
		Short: "List recorded controller runs, newest first.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &inspect.Options{
				JournalFile: journalFile,
				Limit:       limit,
			}

			return inspect.Runs(ctx, options)
		},
	}

	// ticksCmd dumps one run's recorded ticks.
	ticksCmd = &cobra.Command{
		Use:   "ticks <run-id>",
		Short: "Show one run's recorded ticks in order.",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &inspect.Options{
				JournalFile: journalFile,
				RunID:       args[0],
				Limit:       limit,
			}

			return inspect.Ticks(ctx, options)
		},
	}
)

// Execute runs the traffic-journal CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().
		StringVarP(&journalFile, "journal", "j", "traffic-light-journal.db", "path to the journal file")
	rootCmd.PersistentFlags().IntVarP(&limit, "limit", "n", 0, "print at most this many rows, 0 for all")

	rootCmd.AddCommand(runsCmd, ticksCmd)
}
