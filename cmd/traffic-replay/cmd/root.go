package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/UrUsualKal/ai-traffic-light-system/internal/service/replay"
	"github.com/UrUsualKal/ai-traffic-light-system/internal/version"
)

var (
	// pace slows the replay to real time instead of finishing instantly.
	pace bool

	// rootCmd represents the base command for replaying traffic scenarios.
	rootCmd = &cobra.Command{
		Use:   "traffic-replay <fixture>",
		Short: "Replay a scripted traffic scenario against the controller.",
		Long: `Replays a YAML fixture of vehicle counts through the signal controller on
a simulated clock and prints every command token it would have sent.

When the fixture lists an expected token sequence, the replay fails with a
non-zero exit status if the controller deviates from it. Fixtures without
expectations just report what happened, which is how new scenarios are
drafted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &replay.Options{
				FixturePath: args[0],
				Pace:        pace,
			}

			return replay.Run(ctx, options)
		},
	}
)

// Execute runs the traffic-replay CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().BoolVar(&pace, "pace", false, "replay in real time instead of instantly")
}
