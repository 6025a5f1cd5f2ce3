package replay

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/UrUsualKal/ai-traffic-light-system/internal/detect"
	"github.com/UrUsualKal/ai-traffic-light-system/internal/engine"
	"github.com/UrUsualKal/ai-traffic-light-system/internal/source"
)

// defaultTickIntervalMS paces fixtures that do not name an interval.
const defaultTickIntervalMS = 100

var errNoSteps = errors.New("fixture has no steps")

// fixture is one scripted replay scenario.
type fixture struct {
	// Description says what the scenario demonstrates.
	Description string `yaml:"description"`
	// TickIntervalMS is the spacing of detector samples.
	TickIntervalMS int `yaml:"tick_interval_ms"`

	// Engine timing overrides; zero keeps the engine default.
	YellowMS                int `yaml:"yellow_ms"`
	HighTrafficTimerMS      int `yaml:"high_traffic_timer_ms"`
	ConfirmationDelayMS     int `yaml:"confirmation_delay_ms"`
	HighConfirmationDelayMS int `yaml:"high_confirmation_delay_ms"`
	HistorySize             int `yaml:"history_size"`
	HighThreshold           int `yaml:"high_threshold"`

	// Steps is the scripted detector output.
	Steps []fixtureStep `yaml:"steps"`
	// Expect is the command token sequence the run must produce. Empty
	// means report-only.
	Expect []string `yaml:"expect"`
}

// fixtureStep is one stretch of constant detector output.
type fixtureStep struct {
	Count int `yaml:"count"`
	ForMS int `yaml:"for_ms"`
}

// loadFixture reads and validates a fixture file.
func loadFixture(path string) (*fixture, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}

	var fix fixture
	if err := yaml.Unmarshal(contents, &fix); err != nil {
		return nil, fmt.Errorf("unmarshal fixture: %w", err)
	}

	if len(fix.Steps) == 0 {
		return nil, errNoSteps
	}

	if fix.TickIntervalMS <= 0 {
		fix.TickIntervalMS = defaultTickIntervalMS
	}

	return &fix, nil
}

func (f *fixture) tickInterval() time.Duration {
	return time.Duration(f.TickIntervalMS) * time.Millisecond
}

func (f *fixture) detectConfig() detect.Config {
	return detect.Config{
		HistorySize:           f.HistorySize,
		ConfirmationDelay:     time.Duration(f.ConfirmationDelayMS) * time.Millisecond,
		HighConfirmationDelay: time.Duration(f.HighConfirmationDelayMS) * time.Millisecond,
		HighThreshold:         f.HighThreshold,
	}
}

func (f *fixture) machineConfig() engine.Config {
	return engine.Config{
		YellowDuration:   time.Duration(f.YellowMS) * time.Millisecond,
		HighTrafficTimer: time.Duration(f.HighTrafficTimerMS) * time.Millisecond,
		HighThreshold:    f.HighThreshold,
	}
}

func (f *fixture) sourceSteps() []source.Step {
	steps := make([]source.Step, 0, len(f.Steps))
	for _, step := range f.Steps {
		steps = append(steps, source.Step{
			Count: step.Count,
			For:   time.Duration(step.ForMS) * time.Millisecond,
		})
	}

	return steps
}
