package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/UrUsualKal/ai-traffic-light-system/internal/config"
	"github.com/UrUsualKal/ai-traffic-light-system/internal/service/controller"
	"github.com/UrUsualKal/ai-traffic-light-system/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// linkTarget overrides the actuator link from the configuration.
	linkTarget string
	// inputPath is the vehicle count stream ("-" for standard input).
	inputPath string
	// journalFile overrides the journal path from the configuration.
	journalFile string

	// rootCmd represents the base command for running the signal controller.
	rootCmd = &cobra.Command{
		Use:   "traffic-controller",
		Short: "Run the intersection signal controller.",
		Long: `Starts the control loop for a two-direction intersection: direction A
carries the AI-monitored approach, direction B carries cross traffic.

The controller reads one vehicle count per line from the input stream
(standard input by default), smooths and debounces the counts, drives the
two lights through yellow clearances and the high-traffic regime, and sends
command tokens over the configured actuator link.

Send SIGHUP to resynchronize: the controller re-emits the current command
so an actuator that lost power catches up. SIGTERM or SIGINT stops the
loop after the current tick.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &controller.Options{
				ConfigPath:  configPath,
				Link:        linkTarget,
				Input:       inputPath,
				JournalFile: journalFile,
			}

			return controller.Run(ctx, options)
		},
	}

	// initCmd writes a settings file with every value at its default.
	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Write a default settings file.",
		Long: `Writes a settings file with every value at its default so operators have
a complete template to edit. Refuses to overwrite an existing file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := configPath
			if path == "" {
				path = config.DefaultConfigFilename
			}

			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("settings file already exists: %s", path)
			}

			if err := config.Save(path, config.Default()); err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Settings written to", path)

			return nil
		},
	}
)

// Execute runs the traffic-controller CLI and exits with non-zero status on error.
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
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&linkTarget, "link", "l", "", "actuator link: console, serial:<device> or tcp:<host:port>")
	rootCmd.Flags().StringVarP(&inputPath, "input", "i", "", "vehicle count stream, \"-\" or empty for standard input")
	rootCmd.Flags().StringVarP(&journalFile, "journal", "j", "", "SQLite journal file recording the run")

	rootCmd.AddCommand(initCmd)
}
