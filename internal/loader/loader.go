// Package loader executes generated SQL scripts against a live database.
//
// Each document becomes one table. Its CREATE TABLE and INSERT statements run
// inside a single transaction with values bound as placeholders. On SQLite a
// failed document leaves nothing behind. MySQL commits DDL implicitly, so
// there the loader drops a table it created when a later statement fails; a
// table removed by DropExisting is not restored.
package loader

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dbsmedya/jsonconv/internal/config"
	"github.com/dbsmedya/jsonconv/internal/export"
	"github.com/dbsmedya/jsonconv/internal/flatten"
	"github.com/dbsmedya/jsonconv/internal/jsonvalue"
	"github.com/dbsmedya/jsonconv/internal/logger"
	"github.com/dbsmedya/jsonconv/internal/schema"
	"github.com/dbsmedya/jsonconv/internal/sqlutil"
	"github.com/dbsmedya/jsonconv/internal/types"
)

// Options controls script generation and table handling.
type Options struct {
	Export       export.Options
	Driver       string // config.DriverMySQL or config.DriverSQLite; empty means sqlite
	DropExisting bool // drop the target table before creating it
	Verify       bool // compare the table row count with the records inserted before commit
}

// Stats contains statistics about a load run.
type Stats struct {
	TablesLoaded  int
	TablesSkipped int
	RowsInserted  int64
	RowsPerTable  map[string]int64
	Duration      time.Duration
}

// Loader runs scripts against db.
type Loader struct {
	db      *sql.DB
	opts    Options
	inferer *schema.Inferer
	logger  *logger.Logger
}

// New creates a Loader.
func New(db *sql.DB, opts Options, log *logger.Logger) (*Loader, error) {
	if db == nil {
		return nil, fmt.Errorf("database is nil")
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Loader{
		db:      db,
		opts:    opts,
		inferer: schema.NewInferer(opts.Export.VarcharLength),
		logger:  log,
	}, nil
}

// Load parses each file and loads it into a table named after the file.
// Empty documents are skipped with a warning. Any other failure stops the run;
// tables committed before it stay in place.
func (l *Loader) Load(ctx context.Context, paths []string) (*Stats, error) {
	startTime := time.Now()
	stats := &Stats{RowsPerTable: make(map[string]int64)}
	defer func() { stats.Duration = time.Since(startTime) }()

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("load interrupted: %w", err)
		}

		doc, err := jsonvalue.ParseFile(path)
		if err != nil {
			return stats, err
		}

		table := export.BaseName(path)
		rows, err := l.LoadDocument(ctx, table, doc)
		if errors.Is(err, export.ErrNothingToExport) {
			l.logger.Warnf("No data to load in %s, skipping", path)
			stats.TablesSkipped++
			continue
		}
		if err != nil {
			return stats, fmt.Errorf("failed to load %s: %w", path, err)
		}

		stats.TablesLoaded++
		stats.RowsInserted += rows
		stats.RowsPerTable[table] = rows
	}

	l.logger.Infof("Load complete: %d tables, %d rows, duration: %s",
		stats.TablesLoaded,
		stats.RowsInserted,
		time.Since(startTime),
	)
	return stats, nil
}

// LoadDocument creates table from doc and inserts its records in one
// transaction. It returns the number of rows inserted.
func (l *Loader) LoadDocument(ctx context.Context, table string, doc jsonvalue.Value) (int64, error) {
	records := flatten.FlattenWithOptions(doc, l.opts.Export.Flatten)
	script, err := export.BuildScript(table, records, l.inferer, l.opts.Export.QuoteAll)
	if err != nil {
		return 0, err
	}

	l.logger.Debugf("Starting transaction for table %q", table)
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	created := false

	// Ensure rollback on error
	defer func() {
		if tx == nil {
			return
		}
		l.logger.Warnf("Rolling back transaction for table %q", table)
		if rbErr := tx.Rollback(); rbErr != nil {
			l.logger.Errorf("Failed to rollback transaction: %v", rbErr)
		}
		if created && l.opts.Driver == config.DriverMySQL {
			l.logger.Warnf("Dropping table %q created before the failure", table)
			if _, dropErr := l.db.ExecContext(context.WithoutCancel(ctx), l.dropStatement(table)); dropErr != nil {
				l.logger.Errorf("Failed to drop table %q: %v", table, dropErr)
			}
		}
	}()

	if l.opts.DropExisting {
		if _, err := tx.ExecContext(ctx, l.dropStatement(table)); err != nil {
			return 0, fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}

	if _, err := tx.ExecContext(ctx, script.Create); err != nil {
		return 0, fmt.Errorf("failed to create table %s: %w", table, err)
	}
	created = true

	var rows int64
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return rows, fmt.Errorf("load interrupted: %w", err)
		}
		query, args := l.insertStatement(table, rec)
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return rows, fmt.Errorf("failed to insert record %d: %w", i, err)
		}
		rows++
	}

	if l.opts.Verify {
		result, err := l.verifyCount(ctx, tx, table, rows)
		if err != nil {
			return rows, fmt.Errorf("failed to verify table %s: %w", table, err)
		}
		if !result.Match {
			return rows, fmt.Errorf("verification failed for table %s: %s", table, result.ErrorMessage)
		}
		l.logger.Debugf("Verified %d rows in %q", result.TableCount, table)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	// Mark transaction as committed (prevent defer rollback)
	tx = nil

	l.logger.Infof("Loaded %d rows into %q", rows, table)
	return rows, nil
}

// insertStatement builds a placeholder INSERT for rec's own columns. A record
// without keys inserts a row of column defaults, spelled per driver.
func (l *Loader) insertStatement(table string, rec *types.Record) (string, []interface{}) {
	if rec.Len() == 0 {
		if l.opts.Driver == config.DriverMySQL {
			return fmt.Sprintf("INSERT INTO %s () VALUES ()", l.quote(table)), nil
		}
		return fmt.Sprintf("INSERT INTO %s DEFAULT VALUES", l.quote(table)), nil
	}

	columns := make([]string, 0, rec.Len())
	placeholders := make([]string, 0, rec.Len())
	args := make([]interface{}, 0, rec.Len())
	rec.Each(func(key string, v jsonvalue.Value) {
		columns = append(columns, l.quote(key))
		placeholders = append(placeholders, "?")
		args = append(args, sqlutil.BindValue(v))
	})

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		l.quote(table),
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)
	return query, args
}

func (l *Loader) dropStatement(table string) string {
	return "DROP TABLE IF EXISTS " + l.quote(table)
}

// quote applies the same identifier quoting as the generated script.
func (l *Loader) quote(name string) string {
	if l.opts.Export.QuoteAll {
		return sqlutil.QuoteIdentifier(name)
	}
	return sqlutil.QuoteIdentifierIfNeeded(name)
}
