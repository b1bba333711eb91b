// Package config loads application configuration from defaults, an optional
// YAML file, and environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/ericfisherdev/trustscore/internal/application"
	"github.com/ericfisherdev/trustscore/internal/application/signal"
	"github.com/ericfisherdev/trustscore/internal/domain/model"
)

const (
	envPrefix     = "TRUSTSCORE_"
	envConfigFile = "TRUSTSCORE_CONFIG"
)

// Config holds the application configuration.
type Config struct {
	Addr             string             `koanf:"addr"`
	// DBPath is a file path, or ":memory:" for history that dies with the process.
	DBPath           string             `koanf:"db_path"`
	LogLevel         string             `koanf:"log_level"`
	GitHubToken      string             `koanf:"github_token"`
	SignalTimeout    time.Duration      `koanf:"signal_timeout"`
	FailurePolicy    string             `koanf:"failure_policy"`
	PersistReports   bool               `koanf:"persist_reports"`
	LicenseAllowList []string           `koanf:"license_allow_list"`
	Weights          map[string]float64 `koanf:"weights"`
	// LatencyBuckets overrides the latency histogram buckets, in seconds.
	LatencyBuckets   []float64          `koanf:"metrics_latency_buckets"`
}

// New returns a Config populated with defaults.
func New() *Config {
	weights := make(map[string]float64, len(application.DefaultWeights))
	for name, w := range application.DefaultWeights {
		weights[string(name)] = w
	}

	return &Config{
		Addr:             "127.0.0.1:8080",
		DBPath:           "trustscore.db",
		LogLevel:         "info",
		SignalTimeout:    application.DefaultSignalTimeout,
		FailurePolicy:    string(application.FailurePolicyZero),
		PersistReports:   true,
		LicenseAllowList: append([]string(nil), signal.DefaultLicenseAllowList...),
		Weights:          weights,
	}
}

// Load builds a Config by layering, from lowest to highest precedence:
//  1. defaults (New)
//  2. the YAML file named by TRUSTSCORE_CONFIG, if set
//  3. TRUSTSCORE_* environment variables (e.g. TRUSTSCORE_SIGNAL_TIMEOUT=10s)
//
// Weights and metrics_latency_buckets can only be set from the file. When no token is configured,
// GITHUB_TOKEN is used; without any token the GitHub API allows 60 requests
// per hour.
func Load() (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(envConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
	}

	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}
	// The file path itself is not a config key.
	k.Delete("config")

	cfg := New()
	if k.Exists("weights") {
		// A configured weight table replaces the defaults rather than merging.
		cfg.Weights = nil
	}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if cfg.GitHubToken == "" {
		cfg.GitHubToken = os.Getenv("GITHUB_TOKEN")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration can build a working scorer.
func (c *Config) Validate() error {
	var errs []error

	if c.Addr == "" {
		errs = append(errs, errors.New("addr must not be empty"))
	}
	if c.PersistReports && c.DBPath == "" {
		errs = append(errs, errors.New("db_path must not be empty when persist_reports is set"))
	}
	if c.SignalTimeout <= 0 {
		errs = append(errs, fmt.Errorf("signal_timeout must be positive, got %s", c.SignalTimeout))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if _, err := application.ParseFailurePolicy(c.FailurePolicy); err != nil {
		errs = append(errs, err)
	}
	if err := c.ScoringWeights().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("weights: %w", err))
	}
	for i, b := range c.LatencyBuckets {
		if b <= 0 || (i > 0 && b <= c.LatencyBuckets[i-1]) {
			errs = append(errs, fmt.Errorf("metrics_latency_buckets must be positive and strictly increasing, got %v", c.LatencyBuckets))
			break
		}
	}

	return errors.Join(errs...)
}

// SlogLevel parses LogLevel ("debug", "info", "warn", "error").
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// ScoringWeights converts the configured weight table to signal weights.
func (c *Config) ScoringWeights() application.Weights {
	w := make(application.Weights, len(c.Weights))
	for name, v := range c.Weights {
		w[model.SignalName(name)] = v
	}
	return w
}

// Policy returns the parsed failure policy. Call Validate first.
func (c *Config) Policy() application.FailurePolicy {
	p, _ := application.ParseFailurePolicy(c.FailurePolicy)
	return p
}
