// Package config provides configuration structures and loading for jsonconv.
package config

// Supported output formats.
const (
	FormatCSV = "csv"
	FormatSQL = "sql"
	FormatXML = "xml"
)

// Supported database drivers for the load command.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Identifier quoting modes for generated SQL.
const (
	QuoteAlways = "always"
	QuoteAuto   = "auto"
)

// Config represents the complete application configuration.
type Config struct {
	Input    InputConfig    `yaml:"input" mapstructure:"input"`
	Output   OutputConfig   `yaml:"output" mapstructure:"output"`
	Flatten  FlattenConfig  `yaml:"flatten" mapstructure:"flatten"`
	CSV      CSVConfig      `yaml:"csv" mapstructure:"csv"`
	SQL      SQLConfig      `yaml:"sql" mapstructure:"sql"`
	XML      XMLConfig      `yaml:"xml" mapstructure:"xml"`
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`
	Logging  LoggingConfig  `yaml:"logging" mapstructure:"logging"`
	Verbose  bool           `yaml:"verbose" mapstructure:"verbose"`
}

// InputConfig controls file discovery.
type InputConfig struct {
	Recursive bool `yaml:"recursive" mapstructure:"recursive"`
}

// OutputConfig controls where artifacts go and which serializer runs.
type OutputConfig struct {
	Dir    string `yaml:"dir" mapstructure:"dir"`       // empty: next to each input file
	Format string `yaml:"format" mapstructure:"format"` // csv, sql or xml
}

// FlattenConfig controls how nested keys are joined.
type FlattenConfig struct {
	Separator string `yaml:"separator" mapstructure:"separator"`
}

// CSVConfig represents CSV serializer settings.
type CSVConfig struct {
	Delimiter        string `yaml:"delimiter" mapstructure:"delimiter"`
	SanitizeFormulas bool   `yaml:"sanitize_formulas" mapstructure:"sanitize_formulas"`
}

// SQLConfig represents SQL serializer settings.
type SQLConfig struct {
	VarcharLength    int    `yaml:"varchar_length" mapstructure:"varchar_length"`
	QuoteIdentifiers string `yaml:"quote_identifiers" mapstructure:"quote_identifiers"` // always or auto
}

// XMLConfig represents XML serializer settings.
type XMLConfig struct {
	Indent string `yaml:"indent" mapstructure:"indent"`
}

// DatabaseConfig represents the target database for the load command.
// For sqlite, DSN is the database file path. For mysql, DSN may be left
// empty and built from the connection fields.
type DatabaseConfig struct {
	Driver         string `yaml:"driver" mapstructure:"driver"`
	DSN            string `yaml:"dsn" mapstructure:"dsn"`
	Host           string `yaml:"host" mapstructure:"host"`
	Port           int    `yaml:"port" mapstructure:"port"`
	User           string `yaml:"user" mapstructure:"user"`
	Password       string `yaml:"password" mapstructure:"password"`
	Database       string `yaml:"database" mapstructure:"database"`
	TLS            string `yaml:"tls" mapstructure:"tls"` // disable, preferred, required
	MaxConnections int    `yaml:"max_connections" mapstructure:"max_connections"`
}

// LoggingConfig represents logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or text
	Output string `yaml:"output" mapstructure:"output"` // stdout, stderr, or file path
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Input: InputConfig{
			Recursive: false,
		},
		Output: OutputConfig{
			Format: FormatCSV,
		},
		Flatten: FlattenConfig{
			Separator: ".",
		},
		CSV: CSVConfig{
			Delimiter:        ",",
			SanitizeFormulas: false,
		},
		SQL: SQLConfig{
			VarcharLength:    255,
			QuoteIdentifiers: QuoteAlways,
		},
		XML: XMLConfig{
			Indent: "  ",
		},
		Database: DatabaseConfig{
			Driver:         DriverSQLite,
			Port:           3306,
			TLS:            "preferred",
			MaxConnections: 1,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
			Output: "stderr",
		},
	}
}

// Overrides contains CLI flag values that take precedence over the file.
// Zero values leave the configured value untouched.
type Overrides struct {
	LogLevel     string
	LogFormat    string
	Verbose      bool
	Recursive    bool
	OutputDir    string
	OutputFormat string
	Driver       string
	DSN          string
}

// ApplyOverrides applies CLI flag overrides to the configuration.
// Only non-zero/non-empty values are applied.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.LogLevel != "" {
		c.Logging.Level = o.LogLevel
	}
	if o.LogFormat != "" {
		c.Logging.Format = o.LogFormat
	}
	if o.Verbose {
		c.Verbose = true
	}
	if o.Recursive {
		c.Input.Recursive = true
	}
	if o.OutputDir != "" {
		c.Output.Dir = o.OutputDir
	}
	if o.OutputFormat != "" {
		c.Output.Format = o.OutputFormat
	}
	if o.Driver != "" {
		c.Database.Driver = o.Driver
	}
	if o.DSN != "" {
		c.Database.DSN = o.DSN
	}
	c.applyVerbose()
}

// applyVerbose lowers the log level to info so progress messages show up.
// An explicitly chosen debug level is kept.
func (c *Config) applyVerbose() {
	if !c.Verbose {
		return
	}
	switch c.Logging.Level {
	case "debug", "info":
	default:
		c.Logging.Level = "info"
	}
}
