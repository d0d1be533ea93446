// Package config defines the engine's tunables (§6.5), decoded from YAML
// with defaults applied, and a hot-reload watcher applied at tick
// boundaries only (§5, §10.4) — no teacher precedent (it hardcodes an
// Options struct per call site), generalized from that pattern into a
// single reloadable document shared by every boundary operation.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds every recognized option in §6.5.
type Config struct {
	RerouteThreshold            float64          `yaml:"reroute_threshold"`
	RerouteLookaheadEdges       int              `yaml:"reroute_lookahead_edges"`
	RerouteProbabilityThreshold float64          `yaml:"reroute_probability_threshold"`
	BaseEdgeCapacity            float64          `yaml:"base_edge_capacity"`
	MultiplierSmoothingAlpha    float64          `yaml:"multiplier_smoothing_alpha"`
	HistoryWindow               int              `yaml:"history_window"`
	AutoSpawnTarget             int              `yaml:"auto_spawn_target"`
	AutoSpawnBatch              int              `yaml:"auto_spawn_batch"`
	TickIntervalMs              int              `yaml:"tick_interval_ms"`
	AccidentClearTicks          int64            `yaml:"accident_clear_ticks"`
	Maps                        map[string]string `yaml:"maps"`
	LogLevel                    string           `yaml:"log_level"`
	MetricsAddr                 string           `yaml:"metrics_addr"`
	Seed                        int64            `yaml:"seed"`
}

// Default returns the configuration with every §6.5 default applied.
func Default() *Config {
	return &Config{
		RerouteThreshold:            0.20,
		RerouteLookaheadEdges:       3,
		RerouteProbabilityThreshold: 0.5,
		BaseEdgeCapacity:            4,
		MultiplierSmoothingAlpha:    0.3,
		HistoryWindow:               20,
		AutoSpawnTarget:             75,
		AutoSpawnBatch:              3,
		TickIntervalMs:              100,
		AccidentClearTicks:          200,
		Maps:                        map[string]string{},
		LogLevel:                    "info",
	}
}

// Load decodes a YAML file over the defaults; any field absent from the
// file keeps its default value.
func Load(path string) (*Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate range-checks the §6.5 options that declare an explicit range.
func (c *Config) Validate() error {
	if c.TickIntervalMs < 25 || c.TickIntervalMs > 500 {
		return fmt.Errorf("config: tick_interval_ms must be in [25,500], got %d", c.TickIntervalMs)
	}
	return nil
}
