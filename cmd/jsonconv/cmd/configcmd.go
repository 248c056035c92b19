package cmd

import (
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dbsmedya/jsonconv/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Config prints the configuration that commands would run with, after
defaults, the config file, environment substitution and flag overrides
have been applied. The database password is masked, including inside a
MySQL DSN.

Example:
  jsonconv config --config jsonconv.yaml > effective.yaml`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(config.Overrides{})
	if err != nil {
		return err
	}

	out, err := renderConfig(cfg)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

const passwordMask = "********"

// maskDSN hides the password in a MySQL DSN. SQLite DSNs are file paths and
// are returned unchanged, as is anything that does not parse.
func maskDSN(driver, dsn string) string {
	if driver != config.DriverMySQL || dsn == "" {
		return dsn
	}
	parsed, err := mysql.ParseDSN(dsn)
	if err != nil || parsed.Passwd == "" {
		return dsn
	}
	parsed.Passwd = passwordMask
	return parsed.FormatDSN()
}

// renderConfig marshals cfg as YAML with secrets masked.
func renderConfig(cfg *config.Config) ([]byte, error) {
	masked := *cfg
	if masked.Database.Password != "" {
		masked.Database.Password = passwordMask
	}
	masked.Database.DSN = maskDSN(masked.Database.Driver, masked.Database.DSN)

	out, err := yaml.Marshal(&masked)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return out, nil
}
