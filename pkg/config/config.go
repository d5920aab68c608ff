// Package config holds the engine's runtime configuration: the default
// period window per cadence (how many recent periods a scorecard view
// shows). Values come from built-in defaults, an optional YAML file, and
// environment variable overrides, in that order.
package config

import (
	"fmt"
	"os"
	"strconv"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"

	"github.com/brian-incrementum/incrementum-eos-sub000/pkg/scorecard/period"
)

// maxConfigFileSize is the maximum allowed config file size (1 MiB).
const maxConfigFileSize = 1 << 20

// Config is the engine configuration.
type Config struct {
	// Windows maps each cadence to the default number of recent periods
	// shown for metrics of that cadence.
	Windows map[period.Cadence]int `yaml:"windows"`
}

// Default returns the built-in configuration: 13 weeks (a quarter of weekly
// data), 12 months, and 8 quarters.
func Default() *Config {
	return &Config{
		Windows: map[period.Cadence]int{
			period.CadenceWeekly:    13,
			period.CadenceMonthly:   12,
			period.CadenceQuarterly: 8,
		},
	}
}

// Window returns the configured window for a cadence. Unconfigured cadences
// fall back to the built-in default.
func (c *Config) Window(cadence period.Cadence) int {
	if n, ok := c.Windows[cadence]; ok && n >= 1 {
		return n
	}
	return Default().Windows[cadence]
}

// Load builds the configuration from defaults, the optional YAML file at
// path (skipped when path is empty), and environment overrides
// (SCORECARD_WINDOW_WEEKLY, SCORECARD_WINDOW_MONTHLY,
// SCORECARD_WINDOW_QUARTERLY).
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeFile overlays windows from a YAML file onto the config.
func (c *Config) mergeFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return fmt.Errorf("config file %s exceeds maximum allowed size (1 MiB)", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	for cadence, n := range parsed.Windows {
		c.Windows[cadence] = n
	}
	return nil
}

// applyEnv overlays environment variable overrides.
func (c *Config) applyEnv() {
	envKeys := map[period.Cadence]string{
		period.CadenceWeekly:    "SCORECARD_WINDOW_WEEKLY",
		period.CadenceMonthly:   "SCORECARD_WINDOW_MONTHLY",
		period.CadenceQuarterly: "SCORECARD_WINDOW_QUARTERLY",
	}
	for cadence, key := range envKeys {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 1 {
				c.Windows[cadence] = n
			}
		}
	}
}

// Validate checks that every configured cadence is known and every window
// is at least 1.
func (c *Config) Validate() error {
	cadences := maps.Keys(c.Windows)
	slices.Sort(cadences)

	for _, cadence := range cadences {
		if _, err := period.ParseCadence(string(cadence)); err != nil {
			return fmt.Errorf("config: %w", err)
		}
		if c.Windows[cadence] < 1 {
			return fmt.Errorf("config: window for %s must be >= 1 (got %d)", cadence, c.Windows[cadence])
		}
	}
	return nil
}
