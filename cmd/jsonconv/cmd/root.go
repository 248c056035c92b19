package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/jsonconv/internal/config"
	"github.com/dbsmedya/jsonconv/internal/logger"
)

// Version information (set via ldflags at build time)
var (
	Version = "0.0.1-dev"
	Commit  = "unknown"
)

// CLI flags that override config file values
var (
	cfgFile   string
	logLevel  string
	logFormat string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "jsonconv",
	Short: "Convert JSON documents to CSV, SQL and XML",
	Long: `A CLI tool that converts JSON files, or directories of them, into
CSV tables, SQL insert scripts and XML documents.

Features:
  - Nested objects and arrays flattened into dotted column names
  - SQL column types inferred across all records of a document
  - XML output that keeps the original nesting
  - Optional loading of generated SQL into MySQL or SQLite`,
	Version: Version,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Config file flag
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"Path to configuration file (optional)")

	// Logging overrides
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Override log format (json, text)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Verbose output (progress messages)")
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// GetCLIOverrides returns the global flag override values
func GetCLIOverrides() config.Overrides {
	return config.Overrides{
		LogLevel:  logLevel,
		LogFormat: logFormat,
		Verbose:   verbose,
	}
}

// loadConfig loads the config file and applies the global flags plus the
// command-specific overrides in extra.
func loadConfig(extra config.Overrides) (*config.Config, error) {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	overrides := GetCLIOverrides()
	extra.LogLevel = overrides.LogLevel
	extra.LogFormat = overrides.LogFormat
	extra.Verbose = overrides.Verbose
	cfg.ApplyOverrides(extra)

	return cfg, nil
}

// setup loads and validates the configuration and builds the logger.
func setup(extra config.Overrides) (*config.Config, *logger.Logger, error) {
	cfg, err := loadConfig(extra)
	if err != nil {
		return nil, nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, log, nil
}
