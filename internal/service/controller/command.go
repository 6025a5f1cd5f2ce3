package controller

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/UrUsualKal/ai-traffic-light-system/internal/config"
	"github.com/UrUsualKal/ai-traffic-light-system/internal/detect"
	"github.com/UrUsualKal/ai-traffic-light-system/internal/engine"
	"github.com/UrUsualKal/ai-traffic-light-system/internal/journal"
	"github.com/UrUsualKal/ai-traffic-light-system/internal/link"
	"github.com/UrUsualKal/ai-traffic-light-system/internal/logger"
	"github.com/UrUsualKal/ai-traffic-light-system/internal/source"
	"github.com/UrUsualKal/ai-traffic-light-system/internal/timer"
	"github.com/UrUsualKal/ai-traffic-light-system/internal/version"
)

// Options controls the traffic-controller process.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// Link overrides the actuator link target from the settings.
	Link string
	// Input is the sample stream path. Empty or "-" reads standard input,
	// which is how the detector process normally pipes counts in.
	Input string
	// JournalFile overrides the journal path from the settings.
	JournalFile string
}

// Run starts the control loop and blocks until the context is canceled.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "traffic-controller")

	// Load configuration first to get link and timing settings.
	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if opts.Link != "" {
		settings.Link = opts.Link
	}

	if opts.JournalFile != "" {
		settings.JournalFile = opts.JournalFile
	}

	if err := config.Validate(settings); err != nil {
		return err
	}

	if level, ok := logger.ParseLogLevel(settings.LogLevel); ok {
		logger.SetLevel(level)
	}

	// Two controllers on one actuator link would interleave tokens.
	if err := ensureSingleInstance(); err != nil {
		return err
	}

	sink, err := link.ParseTarget(settings.Link, settings.SendTimeout)
	if err != nil {
		return fmt.Errorf("build actuator link: %w", err)
	}

	defer func() {
		if err := sink.Close(); err != nil {
			logger.ErrorKV(ctx, "Closing actuator link failed", "error", err)
		}
	}()

	input, err := openInput(opts.Input)
	if err != nil {
		return err
	}

	if input != os.Stdin {
		defer func() {
			_ = input.Close()
		}()
	}

	run := &loop{
		settings:   settings,
		controller: engine.NewController(detectConfig(settings), machineConfig(settings), sink),
		source:     source.NewLines(input),
		clock:      timer.System(),
	}

	if settings.JournalFile != "" {
		records, err := journal.Open(settings.JournalFile)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}

		defer func() {
			if err := records.Close(); err != nil {
				logger.ErrorKV(ctx, "Closing journal failed", "error", err)
			}
		}()

		started, err := records.BeginRun(time.Now(), settings.Link)
		if err != nil {
			return fmt.Errorf("begin journal run: %w", err)
		}

		run.journal = records
		run.runID = started.ID

		ctx = logger.WithKV(ctx, "run_id", started.ID)
	}

	logger.InfoKV(ctx, "Traffic controller starting",
		"version", version.Short(),
		"link", settings.Link,
		"tick_interval", settings.TickInterval,
		"yellow_duration", settings.YellowDuration,
		"high_traffic_timer", settings.HighTrafficTimer,
		"high_traffic_threshold", settings.HighTrafficThreshold,
	)

	return run.run(ctx)
}

// openInput resolves the sample stream: standard input by default, a file
// or named pipe otherwise.
func openInput(path string) (*os.File, error) {
	if path == "" || path == "-" {
		return os.Stdin, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sample input: %w", err)
	}

	return file, nil
}

func detectConfig(settings *config.Config) detect.Config {
	return detect.Config{
		HistorySize:           settings.DetectionHistorySize,
		ConfirmationDelay:     settings.ConfirmationDelay,
		HighConfirmationDelay: settings.HighConfirmationDelay,
		HighThreshold:         settings.HighTrafficThreshold,
	}
}

func machineConfig(settings *config.Config) engine.Config {
	return engine.Config{
		YellowDuration:   settings.YellowDuration,
		HighTrafficTimer: settings.HighTrafficTimer,
		HighThreshold:    settings.HighTrafficThreshold,
	}
}
