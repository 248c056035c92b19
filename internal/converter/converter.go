// Package converter runs a conversion: discover the input documents, parse
// each one and hand it to the configured exporter.
package converter

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/dbsmedya/jsonconv/internal/config"
	"github.com/dbsmedya/jsonconv/internal/discovery"
	"github.com/dbsmedya/jsonconv/internal/export"
	"github.com/dbsmedya/jsonconv/internal/flatten"
	"github.com/dbsmedya/jsonconv/internal/jsonvalue"
	"github.com/dbsmedya/jsonconv/internal/logger"
)

// Status is the outcome for one input document.
type Status string

const (
	StatusExported Status = "exported"
	StatusSkipped  Status = "skipped"
)

// FileResult describes what happened to one input document.
type FileResult struct {
	Input    string
	Output   string // absolute artifact path, empty when skipped
	Status   Status
	Duration time.Duration
}

// Result contains the per-file outcomes of a run in processing order.
type Result struct {
	RunID       string
	Format      string
	StartedAt   time.Time
	CompletedAt time.Time
	Duration    time.Duration
	Files       []FileResult
}

// Exported returns the absolute paths of the artifacts written.
func (r *Result) Exported() []string {
	return r.paths(StatusExported, func(f FileResult) string { return f.Output })
}

// Skipped returns the inputs that produced no artifact.
func (r *Result) Skipped() []string {
	return r.paths(StatusSkipped, func(f FileResult) string { return f.Input })
}

func (r *Result) paths(status Status, pick func(FileResult) string) []string {
	out := []string{}
	for _, f := range r.Files {
		if f.Status == status {
			out = append(out, pick(f))
		}
	}
	return out
}

// Converter converts JSON documents into artifacts of one format.
type Converter struct {
	config   *config.Config
	exporter export.Exporter
	finder   *discovery.Finder
	logger   *logger.Logger
}

// New creates a Converter for cfg.Output.Format. An unknown format fails with
// export.ErrUnsupportedFormat.
func New(cfg *config.Config, log *logger.Logger) (*Converter, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if log == nil {
		log = logger.NewNop()
	}

	exp, err := export.New(cfg.Output.Format, ExportOptions(cfg), log)
	if err != nil {
		return nil, err
	}

	return &Converter{
		config:   cfg,
		exporter: exp,
		finder:   discovery.NewFinder(log),
		logger:   log,
	}, nil
}

// ExportOptions maps the serializer sections of cfg onto export.Options.
func ExportOptions(cfg *config.Config) export.Options {
	opts := export.DefaultOptions()
	opts.Flatten = flatten.Options{Separator: cfg.Flatten.Separator}
	if r, _ := utf8.DecodeRuneInString(cfg.CSV.Delimiter); r != utf8.RuneError {
		opts.CSVDelimiter = r
	}
	opts.SanitizeFormulas = cfg.CSV.SanitizeFormulas
	if cfg.SQL.VarcharLength > 0 {
		opts.VarcharLength = cfg.SQL.VarcharLength
	}
	opts.QuoteAll = cfg.SQL.QuoteIdentifiers != config.QuoteAuto
	if cfg.XML.Indent != "" {
		opts.XMLIndent = cfg.XML.Indent
	}
	return opts
}

// Convert discovers the documents under input and exports each of them.
//
// Invalid input paths, malformed JSON and write failures abort the run. An
// empty document is skipped with a warning. ctx is checked between documents;
// when it is cancelled the files finished so far are returned with ctx.Err().
func (c *Converter) Convert(ctx context.Context, input string) (*Result, error) {
	result := &Result{
		RunID:     uuid.NewString(),
		Format:    c.exporter.Format(),
		StartedAt: time.Now(),
		Files:     []FileResult{},
	}
	defer func() {
		result.CompletedAt = time.Now()
		result.Duration = result.CompletedAt.Sub(result.StartedAt)
	}()

	log := c.logger.WithRun(result.RunID)
	log.Infof("Starting conversion for: %s", input)

	files, err := c.finder.Find(input, c.config.Input.Recursive)
	if err != nil {
		return result, err
	}
	log.Infof("Found %d JSON files", len(files))

	if err := discovery.EnsureDir(c.config.Output.Dir); err != nil {
		return result, err
	}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			log.Warnf("Conversion interrupted after %d of %d files", len(result.Files), len(files))
			return result, err
		}

		fr, err := c.convertFile(log.WithFile(path), path)
		if err != nil {
			return result, err
		}
		result.Files = append(result.Files, fr)
	}

	log.Infof("Exported %d files to %s format", len(result.Exported()), strings.ToUpper(result.Format))
	log.Info("Conversion complete")
	return result, nil
}

// convertFile parses and exports a single document.
func (c *Converter) convertFile(log *logger.Logger, path string) (FileResult, error) {
	start := time.Now()
	fr := FileResult{Input: path}

	doc, err := jsonvalue.ParseFile(path)
	if err != nil {
		return fr, err
	}

	output := discovery.OutputPath(path, c.config.Output.Dir, c.exporter.Extension())
	if abs, err := filepath.Abs(output); err == nil {
		output = abs
	}

	err = c.exporter.Export(doc, output)
	fr.Duration = time.Since(start)
	switch {
	case errors.Is(err, export.ErrNothingToExport):
		log.Warnf("No data to export in %s, skipping", path)
		fr.Status = StatusSkipped
		return fr, nil
	case err != nil:
		return fr, err
	}

	fr.Output = output
	fr.Status = StatusExported
	return fr, nil
}
