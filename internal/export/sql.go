package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/dbsmedya/jsonconv/internal/flatten"
	"github.com/dbsmedya/jsonconv/internal/jsonvalue"
	"github.com/dbsmedya/jsonconv/internal/logger"
	"github.com/dbsmedya/jsonconv/internal/schema"
	"github.com/dbsmedya/jsonconv/internal/sqlutil"
	"github.com/dbsmedya/jsonconv/internal/types"
)

// SQLExporter writes a CREATE TABLE statement followed by one INSERT per record.
type SQLExporter struct {
	opts    Options
	inferer *schema.Inferer
	log     *logger.Logger
}

// Format returns "sql".
func (e *SQLExporter) Format() string { return FormatSQL }

// Extension returns ".sql".
func (e *SQLExporter) Extension() string { return ".sql" }

// Export flattens doc and writes its script to outputPath. The table is
// named after the artifact's base name.
func (e *SQLExporter) Export(doc jsonvalue.Value, outputPath string) error {
	records := flatten.FlattenWithOptions(doc, e.opts.Flatten)
	script, err := BuildScript(BaseName(outputPath), records, e.inferer, e.opts.QuoteAll)
	if err != nil {
		return fmt.Errorf("%s: %w", outputPath, err)
	}

	e.log.Infof("Exporting to %s", outputPath)
	return writeFile(outputPath, func(w io.Writer) error {
		_, err := io.WriteString(w, script.String())
		return err
	})
}

// Script is the generated SQL for one document.
type Script struct {
	Table   string
	Schema  *schema.Schema
	Create  string
	Inserts []string
}

// Statements returns CREATE followed by every INSERT.
func (s *Script) Statements() []string {
	stmts := make([]string, 0, len(s.Inserts)+1)
	stmts = append(stmts, s.Create)
	return append(stmts, s.Inserts...)
}

// String renders the script as written to disk.
func (s *Script) String() string {
	var b strings.Builder
	b.WriteString(s.Create)
	b.WriteString("\n\n")
	for _, stmt := range s.Inserts {
		b.WriteString(stmt)
		b.WriteByte('\n')
	}
	return b.String()
}

// BuildScript infers the column types of records and generates the
// statements. Columns are listed in first-seen order. Each INSERT names only
// the columns present on its own record, so rows may omit columns that
// other rows have; the database fills those with its column default.
//
// A document without records, or whose records have no keys at all, yields
// ErrNothingToExport since no table could be declared.
func BuildScript(table string, records []*types.Record, inferer *schema.Inferer, quoteAll bool) (*Script, error) {
	if len(records) == 0 {
		return nil, ErrNothingToExport
	}

	s := inferer.Infer(records)
	if s.Len() == 0 {
		return nil, ErrNothingToExport
	}

	quote := sqlutil.QuoteIdentifierIfNeeded
	if quoteAll {
		quote = sqlutil.QuoteIdentifier
	}
	tableIdent := quote(table)

	// CREATE TABLE
	defs := make([]string, 0, s.Len())
	for _, col := range s.Columns() {
		defs = append(defs, fmt.Sprintf("  %s %s", quote(col), s.SQLType(col)))
	}
	create := fmt.Sprintf("CREATE TABLE %s (\n%s\n);", tableIdent, strings.Join(defs, ",\n"))

	// INSERT per record
	inserts := make([]string, 0, len(records))
	for _, rec := range records {
		cols := make([]string, 0, rec.Len())
		vals := make([]string, 0, rec.Len())
		rec.Each(func(key string, v jsonvalue.Value) {
			cols = append(cols, quote(key))
			vals = append(vals, sqlutil.FormatLiteral(v))
		})
		inserts = append(inserts, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s);",
			tableIdent, strings.Join(cols, ", "), strings.Join(vals, ", ")))
	}

	return &Script{
		Table:   table,
		Schema:  s,
		Create:  create,
		Inserts: inserts,
	}, nil
}
