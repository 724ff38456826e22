package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

// envOverrides lists the settings that can be supplied through the
// environment. Zero values leave the file setting untouched.
type envOverrides struct {
	Auth           string   `env:"OCITALLY_AUTH"`
	ConfigFile     string   `env:"OCITALLY_OCI_CONFIG_FILE"`
	Profile        string   `env:"OCITALLY_OCI_PROFILE"`
	Tenancy        string   `env:"OCITALLY_TENANCY"`
	Regions        []string `env:"OCITALLY_REGIONS" envSeparator:","`
	CallsPerSecond float64  `env:"OCITALLY_CALLS_PER_SECOND"`
	Burst          int      `env:"OCITALLY_BURST"`
	Sink           string   `env:"OCITALLY_SINK"`
	PARURL         string   `env:"OCITALLY_PAR_URL"`
	Dir            string   `env:"OCITALLY_OUTPUT_DIR"`
	S3Endpoint     string   `env:"OCITALLY_S3_ENDPOINT"`
	S3Bucket       string   `env:"OCITALLY_S3_BUCKET"`
	S3AccessKey    string   `env:"OCITALLY_S3_ACCESS_KEY_ID"`
	S3SecretKey    string   `env:"OCITALLY_S3_SECRET_ACCESS_KEY"`
	MaxAttempts    int      `env:"OCITALLY_RETRY_MAX_ATTEMPTS"`
	OTELEndpoint   string   `env:"OCITALLY_OTEL_ENDPOINT"`
	Pushgateway    string   `env:"OCITALLY_PUSHGATEWAY"`
	LedgerPath     string   `env:"OCITALLY_LEDGER_PATH"`
	LogLevel       string   `env:"OCITALLY_LOG_LEVEL"`
	LogFormat      string   `env:"OCITALLY_LOG_FORMAT"`
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment.
// Variables already set win. With an empty path, ./.env is tried and a missing
// file is not an error.
func LoadDotEnv(path string) error {
	optional := path == ""
	if optional {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}

	setString(&cfg.OCI.Auth, o.Auth)
	setString(&cfg.OCI.ConfigFile, o.ConfigFile)
	setString(&cfg.OCI.Profile, o.Profile)
	setString(&cfg.OCI.Tenancy, o.Tenancy)
	if len(o.Regions) > 0 {
		cfg.OCI.Regions = o.Regions
	}
	if o.CallsPerSecond != 0 {
		cfg.Sweep.CallsPerSecond = o.CallsPerSecond
	}
	if o.Burst != 0 {
		cfg.Sweep.Burst = o.Burst
	}
	setString(&cfg.Output.Sink, o.Sink)
	setString(&cfg.Output.PARURL, o.PARURL)
	setString(&cfg.Output.Dir, o.Dir)
	setString(&cfg.Output.S3.Endpoint, o.S3Endpoint)
	setString(&cfg.Output.S3.Bucket, o.S3Bucket)
	setString(&cfg.Output.S3.AccessKeyID, o.S3AccessKey)
	setString(&cfg.Output.S3.SecretAccessKey, o.S3SecretKey)
	if o.MaxAttempts != 0 {
		cfg.Output.Retry.MaxAttempts = o.MaxAttempts
	}
	setString(&cfg.OTEL.Endpoint, o.OTELEndpoint)
	setString(&cfg.Metrics.Pushgateway, o.Pushgateway)
	setString(&cfg.Ledger.Path, o.LedgerPath)
	setString(&cfg.Log.Level, o.LogLevel)
	setString(&cfg.Log.Format, o.LogFormat)
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
