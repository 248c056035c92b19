package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dbsmedya/jsonconv/internal/flatten"
	"github.com/dbsmedya/jsonconv/internal/jsonvalue"
	"github.com/dbsmedya/jsonconv/internal/logger"
	"github.com/dbsmedya/jsonconv/internal/types"
)

// CSVExporter writes flat records as CSV with a header row.
type CSVExporter struct {
	opts Options
	log  *logger.Logger
}

// Format returns "csv".
func (e *CSVExporter) Format() string { return FormatCSV }

// Extension returns ".csv".
func (e *CSVExporter) Extension() string { return ".csv" }

// Export flattens doc and writes it to outputPath.
// A document without records is reported as ErrNothingToExport.
func (e *CSVExporter) Export(doc jsonvalue.Value, outputPath string) error {
	records := flatten.FlattenWithOptions(doc, e.opts.Flatten)
	if len(records) == 0 {
		return fmt.Errorf("%s: %w", outputPath, ErrNothingToExport)
	}

	e.log.Infof("Exporting to %s", outputPath)
	return writeFile(outputPath, func(w io.Writer) error {
		return WriteCSV(w, records, e.opts)
	})
}

// WriteCSV writes records to w as RFC 4180 CSV with CRLF line endings. The
// header is the sorted union of all keys; a record lacking a column gets an
// empty field.
func WriteCSV(w io.Writer, records []*types.Record, opts Options) error {
	csvWriter := csv.NewWriter(w)
	csvWriter.UseCRLF = true
	if opts.CSVDelimiter != 0 {
		csvWriter.Comma = opts.CSVDelimiter
	}

	columns := types.UnionKeys(records)

	// Write header
	if err := csvWriter.Write(columns); err != nil {
		return err
	}

	// Write rows
	for _, rec := range records {
		row := make([]string, len(columns))
		for i, col := range columns {
			if v, ok := rec.Get(col); ok {
				row[i] = csvValue(v, opts.SanitizeFormulas)
			}
		}
		if err := csvWriter.Write(row); err != nil {
			return err
		}
	}

	// Flush and check for errors
	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV writer: %w", err)
	}
	return nil
}

// csvValue stringifies v. With sanitize set, strings that a spreadsheet
// would evaluate as a formula are prefixed with a single quote.
func csvValue(v jsonvalue.Value, sanitize bool) string {
	s := v.String()
	if !sanitize || v.Kind() != jsonvalue.String || s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '\n', '|':
		return "'" + strings.ReplaceAll(s, "'", "''")
	}
	return s
}
