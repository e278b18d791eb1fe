// Package tuning loads the simulation timing constants.
package tuning

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed tuning.yaml
var defaultsYAML []byte

// Tuning holds the knobs the clock and catch-up use.
type Tuning struct {
	TickIntervalMS              int     `yaml:"tick_interval_ms"`
	ConversionSecondsPerManager float64 `yaml:"conversion_seconds_per_manager"`
	OfflineCapSeconds           float64 `yaml:"offline_cap_seconds"`
	ReportEveryTicks            uint64  `yaml:"report_every_ticks"`
}

// Default returns the embedded defaults.
func Default() Tuning {
	var t Tuning
	if err := yaml.Unmarshal(defaultsYAML, &t); err != nil {
		panic(fmt.Sprintf("tuning: embedded defaults: %v", err))
	}
	return t
}

// Load overlays the YAML file at path onto the defaults. An empty path
// returns the defaults.
func Load(path string) (Tuning, error) {
	t := Default()
	if path == "" {
		return t, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("read tuning: %w", err)
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("parse tuning %s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning %s: %w", path, err)
	}
	return t, nil
}

// Validate rejects values the engine cannot run with.
func (t Tuning) Validate() error {
	switch {
	case t.TickIntervalMS <= 0:
		return fmt.Errorf("tick_interval_ms must be positive, got %d", t.TickIntervalMS)
	case t.ConversionSecondsPerManager <= 0:
		return fmt.Errorf("conversion_seconds_per_manager must be positive, got %g", t.ConversionSecondsPerManager)
	case t.OfflineCapSeconds < 0:
		return fmt.Errorf("offline_cap_seconds must not be negative, got %g", t.OfflineCapSeconds)
	}
	return nil
}

// TickInterval returns the fixed tick interval.
func (t Tuning) TickInterval() time.Duration {
	return time.Duration(t.TickIntervalMS) * time.Millisecond
}

// OfflineCap returns the catch-up ceiling.
func (t Tuning) OfflineCap() time.Duration {
	return time.Duration(t.OfflineCapSeconds * float64(time.Second))
}
