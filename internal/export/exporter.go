// Package export renders JSON documents as CSV, SQL or XML artifacts.
//
// CSV and SQL work on the flat records produced by the flatten package. XML
// walks the original tree instead, so nesting survives in the output.
//
// Example usage:
//
//	exp, err := export.New("csv", export.DefaultOptions(), log)
//	if err != nil {
//	    return err
//	}
//	if err := exp.Export(doc, "out/people.csv"); err != nil {
//	    return err
//	}
package export

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dbsmedya/jsonconv/internal/flatten"
	"github.com/dbsmedya/jsonconv/internal/jsonvalue"
	"github.com/dbsmedya/jsonconv/internal/logger"
	"github.com/dbsmedya/jsonconv/internal/schema"
)

// Format names.
const (
	FormatCSV = "csv"
	FormatSQL = "sql"
	FormatXML = "xml"
)

var (
	// ErrUnsupportedFormat is returned by New for an unknown format name.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrNothingToExport means the document produced no rows. No file is written.
	ErrNothingToExport = errors.New("nothing to export")
)

// Exporter writes one artifact per document.
type Exporter interface {
	// Format returns the format name, e.g. "csv".
	Format() string

	// Extension returns the artifact file extension including the dot.
	Extension() string

	// Export renders doc and writes it to outputPath.
	Export(doc jsonvalue.Value, outputPath string) error
}

// Options holds the settings of all serializers.
type Options struct {
	Flatten          flatten.Options
	CSVDelimiter     rune
	SanitizeFormulas bool
	VarcharLength    int
	QuoteAll         bool // backtick every identifier; otherwise only those that need it
	XMLIndent        string
}

// DefaultOptions returns the settings used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Flatten:       flatten.DefaultOptions(),
		CSVDelimiter:  ',',
		VarcharLength: schema.DefaultVarcharLength,
		QuoteAll:      true,
		XMLIndent:     "  ",
	}
}

// New returns the exporter for format.
func New(format string, opts Options, log *logger.Logger) (Exporter, error) {
	if log == nil {
		log = logger.NewNop()
	}
	switch format {
	case FormatCSV:
		return &CSVExporter{opts: opts, log: log}, nil
	case FormatSQL:
		return &SQLExporter{opts: opts, inferer: schema.NewInferer(opts.VarcharLength), log: log}, nil
	case FormatXML:
		return &XMLExporter{opts: opts, log: log}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// SupportedFormats lists the format names New accepts.
func SupportedFormats() []string {
	return []string{FormatCSV, FormatSQL, FormatXML}
}

// BaseName returns the file name of path without its extension. It names the
// SQL table and the XML root element.
func BaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// writeFile creates path and streams render into it through a buffer.
func writeFile(path string, render func(w io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	w := bufio.NewWriter(f)
	if err := render(w); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return nil
}
