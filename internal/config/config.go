package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/UrUsualKal/ai-traffic-light-system/internal/detect"
	"github.com/UrUsualKal/ai-traffic-light-system/internal/engine"
	"github.com/UrUsualKal/ai-traffic-light-system/internal/link"
)

// Config holds the settings shared by the traffic light binaries.
type Config struct {
	// Link is the actuator link target: console, serial:<device> or
	// tcp:<host:port>.
	Link string `yaml:"link"`
	// SendTimeout bounds a single command delivery on networked links.
	SendTimeout time.Duration `yaml:"send_timeout"`
	// TickInterval is the heartbeat of the control loop: when no sample
	// arrives within it, the loop re-ticks with the last count so running
	// clearances and alternation windows still make progress.
	TickInterval time.Duration `yaml:"tick_interval"`
	// JournalFile is the SQLite file recording runs. Empty disables the
	// journal.
	JournalFile string `yaml:"journal_file"`
	// LogLevel is the zap level name for the controller logs.
	LogLevel string `yaml:"log_level"`
	// YellowDuration is the length of every yellow clearance interval.
	YellowDuration time.Duration `yaml:"yellow_duration"`
	// HighTrafficTimer is the green window of each direction while the
	// high-traffic regime is engaged.
	HighTrafficTimer time.Duration `yaml:"high_traffic_timer"`
	// HighTrafficThreshold is the confirmed count that engages the regime.
	HighTrafficThreshold int `yaml:"high_traffic_threshold"`
	// ConfirmationDelay is how long a changed count must persist before it
	// is believed.
	ConfirmationDelay time.Duration `yaml:"confirmation_delay"`
	// HighConfirmationDelay replaces ConfirmationDelay for counts at or
	// above the threshold, so congestion is recognized faster.
	HighConfirmationDelay time.Duration `yaml:"high_confirmation_delay"`
	// DetectionHistorySize is the smoothing window of the detector filter.
	DetectionHistorySize int `yaml:"detection_history_size"`
}

const (
	// DefaultConfigFilename is the default filename for controller settings.
	DefaultConfigFilename = "traffic-light-settings.yaml"

	// DefaultLink drives the console when no actuator is configured.
	DefaultLink = "console"

	// DefaultLogLevel is the default zap level name.
	DefaultLogLevel = "info"

	// DefaultTickInterval is the default control loop heartbeat.
	DefaultTickInterval = 200 * time.Millisecond

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errSerialDeviceRequired is returned when a serial link has no device.
	errSerialDeviceRequired = errors.New("serial link needs a device path")
	// errUnknownLink is returned for a link target with an unknown scheme.
	errUnknownLink = errors.New("unknown link target")
)

// Load reads configuration from the provided path and validates it.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Default returns a configuration with every field at its default.
func Default() *Config {
	cfg := &Config{}

	// Validation never fails on an empty config: it only fills defaults.
	_ = Validate(cfg)

	return cfg
}

// Validate checks the link target and fills defaults for everything left
// unset.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.Link == "" {
		cfg.Link = DefaultLink
	}

	if err := validateLink(cfg.Link); err != nil {
		return err
	}

	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = link.DefaultSendTimeout
	}

	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}

	if cfg.YellowDuration <= 0 {
		cfg.YellowDuration = engine.DefaultYellowDuration
	}

	if cfg.HighTrafficTimer <= 0 {
		cfg.HighTrafficTimer = engine.DefaultHighTrafficTimer
	}

	if cfg.HighTrafficThreshold <= 0 {
		cfg.HighTrafficThreshold = engine.DefaultHighThreshold
	}

	if cfg.ConfirmationDelay <= 0 {
		cfg.ConfirmationDelay = detect.DefaultConfirmationDelay
	}

	if cfg.HighConfirmationDelay <= 0 {
		cfg.HighConfirmationDelay = detect.DefaultHighConfirmationDelay
	}

	if cfg.DetectionHistorySize <= 0 {
		cfg.DetectionHistorySize = detect.DefaultHistorySize
	}

	return nil
}

func validateLink(target string) error {
	scheme, rest, found := strings.Cut(target, ":")
	if !found {
		scheme = target
	}

	switch scheme {
	case "console":
		return nil
	case "serial":
		if rest == "" {
			return errSerialDeviceRequired
		}

		return nil
	case "tcp":
		if _, err := net.ResolveTCPAddr("tcp", rest); err != nil {
			return fmt.Errorf("invalid actuator socket: %w", err)
		}

		return nil
	default:
		return fmt.Errorf("%w: %q", errUnknownLink, target)
	}
}
