package main

import (
	"github.com/spf13/cobra"

	"github.com/yairfalse/ocitally/internal/config"
)

var (
	version = "0.1.0"

	configPath string
	envFile    string
	logLevel   string
	logFormat  string

	rootCmd = &cobra.Command{
		Use:   "ocitally",
		Short: "Oracle Cloud tenancy inventory exporter",
		Long: `ocitally - Oracle Cloud tenancy inventory exporter

ocitally sweeps every subscribed region and accessible compartment of an
OCI tenancy and uploads one CSV report per resource family: identity,
announcements, service limits, compute, block storage and databases.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.SetVersionTemplate(`ocitally {{.Version}}
`)

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "Config file (TOML, or YAML by extension)")
	pf.StringVar(&envFile, "env-file", "", "Dotenv file to load before reading the environment (default ./.env if present)")
	pf.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&logFormat, "log-format", "", "Log format: console or json")
}

// loadConfig reads the dotenv file, the config file and the environment,
// then applies the persistent flags.
func loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	return cfg, nil
}
