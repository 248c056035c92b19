package config

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// Validate checks the conversion settings. Database settings are only
// checked by ValidateDatabase since most commands never open a connection.
func (c *Config) Validate() error {
	var errors ValidationErrors

	errors = append(errors, c.validateOutput()...)
	errors = append(errors, c.validateFlatten()...)
	errors = append(errors, c.validateCSV()...)
	errors = append(errors, c.validateSQL()...)
	errors = append(errors, c.validateXML()...)
	errors = append(errors, c.validateLogging()...)

	if len(errors) > 0 {
		return errors
	}
	return nil
}

// ValidateDatabase checks the settings the load command needs.
func (c *Config) ValidateDatabase() error {
	var errors ValidationErrors
	db := &c.Database

	switch db.Driver {
	case DriverSQLite:
		if db.DSN == "" {
			errors = append(errors, ValidationError{
				Field:   "database.dsn",
				Message: "dsn (database file path) is required for sqlite",
			})
		}
	case DriverMySQL:
		if db.DSN == "" {
			if db.Host == "" {
				errors = append(errors, ValidationError{
					Field:   "database.host",
					Message: "host is required when dsn is not set",
				})
			}
			if db.User == "" {
				errors = append(errors, ValidationError{
					Field:   "database.user",
					Message: "user is required when dsn is not set",
				})
			}
			if db.Database == "" {
				errors = append(errors, ValidationError{
					Field:   "database.database",
					Message: "database name is required when dsn is not set",
				})
			}
			if db.Port <= 0 || db.Port > 65535 {
				errors = append(errors, ValidationError{
					Field:   "database.port",
					Message: "port must be between 1 and 65535",
				})
			}
		}
		validTLS := map[string]bool{"disable": true, "preferred": true, "required": true, "": true}
		if !validTLS[db.TLS] {
			errors = append(errors, ValidationError{
				Field:   "database.tls",
				Message: "tls must be 'disable', 'preferred', or 'required'",
			})
		}
	default:
		errors = append(errors, ValidationError{
			Field:   "database.driver",
			Message: fmt.Sprintf("unsupported driver %q (must be 'mysql' or 'sqlite')", db.Driver),
		})
	}

	if db.MaxConnections < 0 {
		errors = append(errors, ValidationError{
			Field:   "database.max_connections",
			Message: "max_connections cannot be negative",
		})
	}

	if len(errors) > 0 {
		return errors
	}
	return nil
}

func (c *Config) validateOutput() ValidationErrors {
	var errors ValidationErrors

	switch c.Output.Format {
	case FormatCSV, FormatSQL, FormatXML:
	default:
		errors = append(errors, ValidationError{
			Field:   "output.format",
			Message: fmt.Sprintf("unsupported format %q (must be 'csv', 'sql', or 'xml')", c.Output.Format),
		})
	}

	return errors
}

func (c *Config) validateFlatten() ValidationErrors {
	var errors ValidationErrors

	if c.Flatten.Separator == "" {
		errors = append(errors, ValidationError{
			Field:   "flatten.separator",
			Message: "separator cannot be empty",
		})
	}

	return errors
}

func (c *Config) validateCSV() ValidationErrors {
	var errors ValidationErrors

	r, size := utf8.DecodeRuneInString(c.CSV.Delimiter)
	if size == 0 || size != len(c.CSV.Delimiter) || r == utf8.RuneError {
		errors = append(errors, ValidationError{
			Field:   "csv.delimiter",
			Message: "delimiter must be exactly one character",
		})
	} else if r == '"' || r == '\r' || r == '\n' {
		errors = append(errors, ValidationError{
			Field:   "csv.delimiter",
			Message: "delimiter cannot be a quote or line break",
		})
	}

	return errors
}

func (c *Config) validateSQL() ValidationErrors {
	var errors ValidationErrors

	if c.SQL.VarcharLength <= 0 {
		errors = append(errors, ValidationError{
			Field:   "sql.varchar_length",
			Message: "varchar_length must be positive",
		})
	}

	validQuoting := map[string]bool{QuoteAlways: true, QuoteAuto: true, "": true}
	if !validQuoting[c.SQL.QuoteIdentifiers] {
		errors = append(errors, ValidationError{
			Field:   "sql.quote_identifiers",
			Message: "quote_identifiers must be 'always' or 'auto'",
		})
	}

	return errors
}

func (c *Config) validateXML() ValidationErrors {
	var errors ValidationErrors

	if strings.Trim(c.XML.Indent, " \t") != "" {
		errors = append(errors, ValidationError{
			Field:   "xml.indent",
			Message: "indent may only contain spaces and tabs",
		})
	}

	return errors
}

func (c *Config) validateLogging() ValidationErrors {
	var errors ValidationErrors

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "": true}
	if !validLevels[c.Logging.Level] {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Message: "level must be 'debug', 'info', 'warn', or 'error'",
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "": true}
	if !validFormats[c.Logging.Format] {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Message: "format must be 'json' or 'text'",
		})
	}

	return errors
}
