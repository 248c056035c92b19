// Package sqlutil provides SQL quoting and literal formatting for generated scripts.
package sqlutil

import (
	"regexp"
	"strings"
)

// QuoteIdentifier quotes an identifier (table name, column name) with backticks.
// It escapes any existing backticks by doubling them. Backtick quoting is
// understood by both MySQL and SQLite.
// Example: "tags.0" -> "`tags.0`"
// Example: "my`table" -> "`my``table`"
func QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// plainIdentifierRegex matches identifiers that need no quoting.
var plainIdentifierRegex = regexp.MustCompile("^[a-zA-Z_][a-zA-Z0-9_]*$")

// IsPlainIdentifier reports whether name can be written unquoted: letters,
// digits and underscores, not starting with a digit.
func IsPlainIdentifier(name string) bool {
	return plainIdentifierRegex.MatchString(name)
}

// QuoteIdentifierIfNeeded leaves plain identifiers bare and quotes the rest.
func QuoteIdentifierIfNeeded(name string) string {
	if IsPlainIdentifier(name) {
		return name
	}
	return QuoteIdentifier(name)
}

// QuoteString returns s as a single-quoted SQL string literal with embedded
// single quotes doubled.
func QuoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
