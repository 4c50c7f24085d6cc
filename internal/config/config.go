// Package config exposes strongly typed application configuration structs loaded from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// App captures process-wide runtime settings such as name, metrics, and logging levels.
type App struct {
	Name        string `yaml:"name"`
	Env         string `yaml:"env"`
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
}

// Backend describes the autotrader REST API the monitor polls.
type Backend struct {
	BaseURL            string `yaml:"base_url"`
	APIKey             string `yaml:"api_key"`
	TradesPath         string `yaml:"trades_path"`
	StatusPath         string `yaml:"status_path"`
	SeriesPath         string `yaml:"series_path"`
	TradesIntervalSecs int    `yaml:"trades_interval_secs"`
	SeriesIntervalSecs int    `yaml:"series_interval_secs"`
	SimIntervalSecs    int    `yaml:"sim_interval_secs"`
}

// Stream configures the optional live mark-price websocket.
type Stream struct {
	Enabled bool   `yaml:"enabled"`
	Symbol  string `yaml:"symbol"`
	URL     string `yaml:"url"`
}

// Correlation groups the tunable knobs of the sentiment correlation pass.
type Correlation struct {
	Lag        int `yaml:"lag"`
	HistoryCap int `yaml:"history_cap"`
}

// Sim groups the Monte-Carlo projection defaults.
type Sim struct {
	Days       int     `yaml:"days"`
	Paths      int     `yaml:"paths"`
	Drift      float64 `yaml:"drift"`
	Volatility float64 `yaml:"volatility_per_day"`
	Seed       int64   `yaml:"seed"`
}

// Alert encodes the drawdown guard-rail the monitor warns on.
type Alert struct {
	MaxDrawdown float64 `yaml:"max_drawdown"`
}

// Journal configures optional trade persistence.
type Journal struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App         App         `yaml:"app"`
	Backend     Backend     `yaml:"backend"`
	Stream      Stream      `yaml:"stream"`
	Correlation Correlation `yaml:"correlation"`
	Sim         Sim         `yaml:"sim"`
	Alert       Alert       `yaml:"alert"`
	Journal     Journal     `yaml:"journal"`
}

// Load reads a YAML file from disk and hydrates a Config struct with defaults
// applied for omitted polling and simulation knobs.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	config.applyDefaults()
	return &config, nil
}

// Save persists a Config struct to disk as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.App.MetricsAddr == "" {
		c.App.MetricsAddr = ":9091"
	}
	if c.Backend.TradesIntervalSecs <= 0 {
		c.Backend.TradesIntervalSecs = 20
	}
	if c.Backend.SeriesIntervalSecs <= 0 {
		c.Backend.SeriesIntervalSecs = 30
	}
	if c.Backend.SimIntervalSecs <= 0 {
		c.Backend.SimIntervalSecs = 60
	}
	if c.Correlation.Lag < 0 {
		c.Correlation.Lag = 0
	}
	if c.Correlation.HistoryCap <= 0 {
		c.Correlation.HistoryCap = 288 // 24h of 5-minute buckets
	}
	if c.Sim.Days < 1 {
		c.Sim.Days = 7
	}
	if c.Sim.Paths < 1 {
		c.Sim.Paths = 100
	}
	if c.Sim.Volatility <= 0 {
		c.Sim.Volatility = 0.04
	}
	if c.Journal.Path == "" {
		c.Journal.Path = "data/trades.jsonl"
	}
}

// ApplyEnvOverrides lets deployment environments override backend credentials
// without touching the YAML file.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("BOTWATCH_BACKEND_URL"); v != "" {
		c.Backend.BaseURL = v
	}
	if v := os.Getenv("BOTWATCH_API_KEY"); v != "" {
		c.Backend.APIKey = v
	}
}
