package cmd

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/gookit/color"
	"github.com/mattn/go-runewidth"
	"github.com/olekukonko/tablewriter"

	"github.com/dbsmedya/jsonconv/internal/converter"
	"github.com/dbsmedya/jsonconv/internal/loader"
)

// maxPathWidth is the display width paths are cut to in summary tables.
const maxPathWidth = 60

func truncatePath(path string) string {
	return runewidth.Truncate(path, maxPathWidth, "...")
}

func statusLabel(status converter.Status) string {
	switch status {
	case converter.StatusExported:
		return color.Green.Sprint(string(status))
	case converter.StatusSkipped:
		return color.Yellow.Sprint(string(status))
	default:
		return string(status)
	}
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	return table
}

// printConvertSummary writes a per-file table for a conversion run.
func printConvertSummary(w io.Writer, result *converter.Result) {
	fmt.Fprintf(w, "\n=== Conversion Complete ===\n")
	fmt.Fprintf(w, "Run: %s\n", result.RunID)
	fmt.Fprintf(w, "Format: %s\n", result.Format)
	fmt.Fprintf(w, "Duration: %s\n", result.Duration)
	fmt.Fprintf(w, "Exported: %d, Skipped: %d\n\n", len(result.Exported()), len(result.Skipped()))

	if len(result.Files) == 0 {
		return
	}

	table := newTable(w, "Input", "Output", "Status")
	for _, f := range result.Files {
		output := f.Output
		if output == "" {
			output = "-"
		}
		table.Append([]string{truncatePath(f.Input), truncatePath(output), statusLabel(f.Status)})
	}
	table.Render()
}

// printLoadSummary writes a per-table row count table for a load run.
func printLoadSummary(w io.Writer, stats *loader.Stats) {
	fmt.Fprintf(w, "\n=== Load Complete ===\n")
	fmt.Fprintf(w, "Duration: %s\n", stats.Duration)
	fmt.Fprintf(w, "Tables Loaded: %d\n", stats.TablesLoaded)
	fmt.Fprintf(w, "Tables Skipped: %d\n", stats.TablesSkipped)
	fmt.Fprintf(w, "Rows Inserted: %d\n\n", stats.RowsInserted)

	if len(stats.RowsPerTable) == 0 {
		return
	}

	tables := make([]string, 0, len(stats.RowsPerTable))
	for name := range stats.RowsPerTable {
		tables = append(tables, name)
	}
	sort.Strings(tables)

	table := newTable(w, "Table", "Rows")
	for _, name := range tables {
		table.Append([]string{truncatePath(name), strconv.FormatInt(stats.RowsPerTable[name], 10)})
	}
	table.Render()
}
