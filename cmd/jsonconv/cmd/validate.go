package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/jsonconv/internal/config"
	"github.com/dbsmedya/jsonconv/internal/database"
	"github.com/dbsmedya/jsonconv/internal/logger"
)

var validateDatabase bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long: `Validate checks the configuration file and reports every problem found.

Checks performed:
  - Output format and directory settings
  - Flatten separator, CSV delimiter, SQL and XML settings
  - Logging settings
  - With --database: database settings and connectivity

Example:
  jsonconv validate --config jsonconv.yaml --database`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateDatabase, "database", false,
		"Also validate database settings and test the connection")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()

	cfg, err := loadConfig(config.Overrides{})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "=== Configuration Validation ===\n")
	if configFile == "" {
		fmt.Fprintf(out, "Config file: (defaults)\n")
	} else {
		fmt.Fprintf(out, "Config file: %s\n", configFile)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(out, "❌ %v\n", err)
		return fmt.Errorf("configuration is invalid")
	}
	fmt.Fprintf(out, "✅ Conversion settings valid (format: %s)\n", cfg.Output.Format)

	if !validateDatabase {
		return nil
	}

	if err := cfg.ValidateDatabase(); err != nil {
		fmt.Fprintf(out, "❌ %v\n", err)
		return fmt.Errorf("database configuration is invalid")
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log.Infow("Testing database connection", "driver", cfg.Database.Driver)

	dbManager := database.NewManager(&cfg.Database)
	ctx := context.Background()
	if err := dbManager.Connect(ctx); err != nil {
		fmt.Fprintf(out, "❌ %v\n", err)
		return fmt.Errorf("database connection failed")
	}
	defer dbManager.Close()

	fmt.Fprintf(out, "✅ Database connection OK (driver: %s)\n", cfg.Database.Driver)
	return nil
}
