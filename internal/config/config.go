// Package config handles TOML/YAML configuration for ocitally.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Authentication modes.
const (
	AuthConfigFile        = "config"
	AuthInstancePrincipal = "instance_principal"
)

// Output sinks.
const (
	SinkPAR = "par"
	SinkS3  = "s3"
	SinkDir = "dir"
)

// ErrNoDestination is returned when the selected sink has no target.
var ErrNoDestination = errors.New("no upload destination configured")

// Config is the root configuration structure.
type Config struct {
	OCI     OCIConfig    `toml:"oci" yaml:"oci"`
	Sweep   SweepConfig  `toml:"sweep" yaml:"sweep"`
	Output  OutputConfig `toml:"output" yaml:"output"`
	OTEL    OTELConfig   `toml:"otel" yaml:"otel"`
	Metrics PushConfig   `toml:"metrics" yaml:"metrics"`
	Ledger  LedgerConfig `toml:"ledger" yaml:"ledger"`
	Log     LogConfig    `toml:"log" yaml:"log"`
}

// OCIConfig holds provider authentication and scope.
type OCIConfig struct {
	Auth       string   `toml:"auth" yaml:"auth"`
	ConfigFile string   `toml:"config_file" yaml:"config_file"`
	Profile    string   `toml:"profile" yaml:"profile"`
	Tenancy    string   `toml:"tenancy" yaml:"tenancy"`
	Regions    []string `toml:"regions" yaml:"regions"` // empty = every subscribed region
}

// SweepConfig controls provider call pacing.
type SweepConfig struct {
	CallsPerSecond float64 `toml:"calls_per_second" yaml:"calls_per_second"`
	Burst          int     `toml:"burst" yaml:"burst"`
}

// OutputConfig selects and configures the report sink.
type OutputConfig struct {
	Sink   string      `toml:"sink" yaml:"sink"`
	PARURL string      `toml:"par_url" yaml:"par_url"`
	Dir    string      `toml:"dir" yaml:"dir"`
	S3     S3Config    `toml:"s3" yaml:"s3"`
	Retry  RetryConfig `toml:"retry" yaml:"retry"`
}

// S3Config targets an S3-compatible endpoint such as the OCI Object Storage
// compatibility API.
type S3Config struct {
	Endpoint        string `toml:"endpoint" yaml:"endpoint"`
	Region          string `toml:"region" yaml:"region"`
	Bucket          string `toml:"bucket" yaml:"bucket"`
	Prefix          string `toml:"prefix" yaml:"prefix"`
	AccessKeyID     string `toml:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `toml:"secret_access_key" yaml:"secret_access_key"`
	PathStyle       bool   `toml:"path_style" yaml:"path_style"`
}

// RetryConfig bounds upload retries.
type RetryConfig struct {
	MaxAttempts        int           `toml:"max_attempts" yaml:"max_attempts"`
	InitialIntervalStr string        `toml:"initial_interval" yaml:"initial_interval"`
	MaxIntervalStr     string        `toml:"max_interval" yaml:"max_interval"`
	InitialInterval    time.Duration `toml:"-" yaml:"-"`
	MaxInterval        time.Duration `toml:"-" yaml:"-"`
}

// OTELConfig holds OpenTelemetry settings.
type OTELConfig struct {
	Endpoint    string        `toml:"endpoint" yaml:"endpoint"`
	Insecure    bool          `toml:"insecure" yaml:"insecure"`
	ServiceName string        `toml:"service_name" yaml:"service_name"`
	Traces      TracesConfig  `toml:"traces" yaml:"traces"`
	Metrics     MetricsConfig `toml:"metrics" yaml:"metrics"`
}

// TracesConfig holds tracing settings.
type TracesConfig struct {
	Enabled    bool    `toml:"enabled" yaml:"enabled"`
	SampleRate float64 `toml:"sample_rate" yaml:"sample_rate"`
}

// MetricsConfig holds OTLP metrics settings.
type MetricsConfig struct {
	Enabled bool `toml:"enabled" yaml:"enabled"`
}

// PushConfig configures the Prometheus Pushgateway push at end of run.
type PushConfig struct {
	Pushgateway string `toml:"pushgateway" yaml:"pushgateway"`
	Job         string `toml:"job" yaml:"job"`
}

// LedgerConfig locates the run history database. Empty disables it.
type LedgerConfig struct {
	Path string `toml:"path" yaml:"path"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"` // console or json; empty picks by terminal
}

// Load reads a config file (TOML, or YAML for .yaml/.yml), overlays OCITALLY_*
// environment variables and applies defaults. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	if err := parseDurations(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse config: %w", err)
		}
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse config: %w", err)
		}
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.OCI.Auth == "" {
		cfg.OCI.Auth = AuthConfigFile
	}
	if cfg.OCI.ConfigFile == "" {
		cfg.OCI.ConfigFile = "~/.oci/config"
	}
	if cfg.OCI.Profile == "" {
		cfg.OCI.Profile = "DEFAULT"
	}
	if cfg.Sweep.CallsPerSecond == 0 {
		cfg.Sweep.CallsPerSecond = 10
	}
	if cfg.Sweep.Burst == 0 {
		cfg.Sweep.Burst = 5
	}
	if cfg.Output.Sink == "" {
		cfg.Output.Sink = SinkPAR
	}
	if cfg.Output.S3.Region == "" {
		cfg.Output.S3.Region = "us-ashburn-1"
	}
	if cfg.Output.Retry.MaxAttempts == 0 {
		cfg.Output.Retry.MaxAttempts = 3
	}
	if cfg.Output.Retry.InitialIntervalStr == "" {
		cfg.Output.Retry.InitialIntervalStr = "500ms"
	}
	if cfg.Output.Retry.MaxIntervalStr == "" {
		cfg.Output.Retry.MaxIntervalStr = "10s"
	}
	if cfg.OTEL.ServiceName == "" {
		cfg.OTEL.ServiceName = "ocitally"
	}
	if cfg.Metrics.Job == "" {
		cfg.Metrics.Job = "ocitally"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

func parseDurations(cfg *Config) error {
	d, err := time.ParseDuration(cfg.Output.Retry.InitialIntervalStr)
	if err != nil {
		return fmt.Errorf("parse retry.initial_interval %q: %w", cfg.Output.Retry.InitialIntervalStr, err)
	}
	cfg.Output.Retry.InitialInterval = d

	d, err = time.ParseDuration(cfg.Output.Retry.MaxIntervalStr)
	if err != nil {
		return fmt.Errorf("parse retry.max_interval %q: %w", cfg.Output.Retry.MaxIntervalStr, err)
	}
	cfg.Output.Retry.MaxInterval = d
	return nil
}

// Destination returns the base prefix uploads are written under for the
// selected sink.
func (c *Config) Destination() string {
	switch c.Output.Sink {
	case SinkS3:
		return c.Output.S3.Prefix
	case SinkDir:
		return ""
	default:
		return c.Output.PARURL
	}
}

// Validate checks the configuration is valid.
func (c *Config) Validate() error {
	switch c.OCI.Auth {
	case AuthConfigFile, AuthInstancePrincipal:
	default:
		return fmt.Errorf("oci: auth must be %q or %q (got %q)", AuthConfigFile, AuthInstancePrincipal, c.OCI.Auth)
	}

	if c.Sweep.CallsPerSecond < 0 {
		return fmt.Errorf("sweep: calls_per_second must not be negative (got %v)", c.Sweep.CallsPerSecond)
	}
	if c.Sweep.Burst < 1 {
		return fmt.Errorf("sweep: burst must be at least 1 (got %d)", c.Sweep.Burst)
	}

	switch c.Output.Sink {
	case SinkPAR:
		if c.Output.PARURL == "" {
			return fmt.Errorf("output: par_url: %w", ErrNoDestination)
		}
	case SinkS3:
		if c.Output.S3.Bucket == "" {
			return fmt.Errorf("output: s3.bucket: %w", ErrNoDestination)
		}
	case SinkDir:
		if c.Output.Dir == "" {
			return fmt.Errorf("output: dir: %w", ErrNoDestination)
		}
	default:
		return fmt.Errorf("output: unknown sink %q", c.Output.Sink)
	}

	if c.Output.Retry.MaxAttempts < 1 {
		return fmt.Errorf("output: retry.max_attempts must be at least 1 (got %d)", c.Output.Retry.MaxAttempts)
	}
	if c.OTEL.Traces.SampleRate < 0.0 || c.OTEL.Traces.SampleRate > 1.0 {
		return fmt.Errorf("otel: traces.sample_rate must be between 0.0 and 1.0 (got %v)", c.OTEL.Traces.SampleRate)
	}
	switch c.Log.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("log: format must be console or json (got %q)", c.Log.Format)
	}
	return nil
}
