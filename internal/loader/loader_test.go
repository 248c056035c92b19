package loader

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/dbsmedya/jsonconv/internal/config"
	"github.com/dbsmedya/jsonconv/internal/export"
	"github.com/dbsmedya/jsonconv/internal/jsonvalue"
	"github.com/dbsmedya/jsonconv/internal/logger"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func defaultOptions() Options {
	return Options{Export: export.DefaultOptions()}
}

func parse(t *testing.T, doc string) jsonvalue.Value {
	t.Helper()
	v, err := jsonvalue.ParseBytes([]byte(doc))
	require.NoError(t, err)
	return v
}

func TestNew_Validation(t *testing.T) {
	db, _ := newMock(t)

	l, err := New(db, defaultOptions(), nil)
	assert.NoError(t, err)
	assert.NotNil(t, l)

	l, err = New(nil, defaultOptions(), logger.NewNop())
	assert.Error(t, err)
	assert.Nil(t, l)
	assert.Contains(t, err.Error(), "database is nil")
}

func TestLoadDocument_Commit(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE `items` (\n  `id` INTEGER,\n  `tags.0` VARCHAR(255)\n);").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO `items` (`id`, `tags.0`) VALUES (?, ?)").
		WithArgs(int64(1), "a").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO `items` (`id`) VALUES (?)").
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	l, err := New(db, defaultOptions(), logger.NewNop())
	require.NoError(t, err)

	rows, err := l.LoadDocument(context.Background(), "items", parse(t, `[{"id": 1, "tags": ["a"]}, {"id": 2}]`))
	require.NoError(t, err)
	assert.Equal(t, int64(2), rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadDocument_RollbackOnInsertError(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE `t` (\n  `a` INTEGER\n);").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO `t` (`a`) VALUES (?)").
		WithArgs(int64(1)).
		WillReturnError(errors.New("insert failed"))
	mock.ExpectRollback()

	l, err := New(db, defaultOptions(), logger.NewNop())
	require.NoError(t, err)

	_, err = l.LoadDocument(context.Background(), "t", parse(t, `{"a": 1}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert record 0")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadDocument_DropExisting(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("DROP TABLE IF EXISTS people").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE people (\n  name VARCHAR(255)\n);").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO people (name) VALUES (?)").WithArgs("Ann").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	opts := defaultOptions()
	opts.DropExisting = true
	opts.Export.QuoteAll = false

	l, err := New(db, opts, logger.NewNop())
	require.NoError(t, err)

	_, err = l.LoadDocument(context.Background(), "people", parse(t, `{"name": "Ann"}`))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadDocument_NothingToExport(t *testing.T) {
	db, mock := newMock(t)

	l, err := New(db, defaultOptions(), logger.NewNop())
	require.NoError(t, err)

	_, err = l.LoadDocument(context.Background(), "empty", parse(t, `[]`))
	assert.ErrorIs(t, err, export.ErrNothingToExport)
	// No transaction is opened
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoad_SQLite(t *testing.T) {
	dir := t.TempDir()
	orders := filepath.Join(dir, "orders.json")
	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(orders, []byte(`[
		{"id": 1, "customer": {"name": "Ann"}, "paid": true},
		{"id": 2, "total": 9.5, "note": null}
	]`), 0o644))
	require.NoError(t, os.WriteFile(empty, []byte(`[]`), 0o644))

	db, err := sql.Open("sqlite", filepath.Join(dir, "load.db"))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	db.SetMaxOpenConns(1)

	l, err := New(db, defaultOptions(), logger.NewNop())
	require.NoError(t, err)

	stats, err := l.Load(context.Background(), []string{empty, orders})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TablesLoaded)
	assert.Equal(t, 1, stats.TablesSkipped)
	assert.Equal(t, int64(2), stats.RowsInserted)
	assert.Equal(t, map[string]int64{"orders": 2}, stats.RowsPerTable)

	var name string
	require.NoError(t, db.QueryRow("SELECT `customer.name` FROM `orders` WHERE `id` = 1").Scan(&name))
	assert.Equal(t, "Ann", name)

	// A second load of the same table fails on CREATE TABLE and leaves the data intact
	_, err = l.Load(context.Background(), []string{orders})
	require.Error(t, err)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM `orders`").Scan(&count))
	assert.Equal(t, 2, count)

	// DropExisting replaces it
	opts := defaultOptions()
	opts.DropExisting = true
	l, err = New(db, opts, logger.NewNop())
	require.NoError(t, err)
	_, err = l.Load(context.Background(), []string{orders})
	require.NoError(t, err)
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM `orders`").Scan(&count))
	assert.Equal(t, 2, count)
}

func TestLoad_MalformedJSON(t *testing.T) {
	db, mock := newMock(t)
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a":`), 0o644))

	l, err := New(db, defaultOptions(), logger.NewNop())
	require.NoError(t, err)

	_, err = l.Load(context.Background(), []string{path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.json")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoad_CancelledContext(t *testing.T) {
	db, _ := newMock(t)
	l, err := New(db, defaultOptions(), logger.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := l.Load(ctx, []string{"unused.json"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, stats.TablesLoaded)
	assert.Greater(t, stats.Duration, time.Duration(0))
}

func TestLoadDocument_Verify(t *testing.T) {
	tests := []struct {
		name      string
		count     int64
		expectErr bool
	}{
		{name: "counts match", count: 2},
		{name: "count mismatch rolls back", count: 1, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMock(t)

			mock.ExpectBegin()
			mock.ExpectExec("CREATE TABLE `v` (\n  `a` INTEGER\n);").WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectExec("INSERT INTO `v` (`a`) VALUES (?)").WithArgs(int64(1)).WillReturnResult(sqlmock.NewResult(1, 1))
			mock.ExpectExec("INSERT INTO `v` (`a`) VALUES (?)").WithArgs(int64(2)).WillReturnResult(sqlmock.NewResult(2, 1))
			mock.ExpectQuery("SELECT COUNT(*) FROM `v`").
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(tt.count))
			if tt.expectErr {
				mock.ExpectRollback()
			} else {
				mock.ExpectCommit()
			}

			opts := defaultOptions()
			opts.Verify = true
			l, err := New(db, opts, logger.NewNop())
			require.NoError(t, err)

			_, err = l.LoadDocument(context.Background(), "v", parse(t, `[{"a": 1}, {"a": 2}]`))
			if tt.expectErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "count mismatch: records=2, table=1")
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestLoadDocument_BindsValuesVerbatim(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE `s` (\n  `path` VARCHAR(255),\n  `ok` BOOLEAN,\n  `n` TEXT,\n  `r` REAL,\n  `meta` TEXT\n);").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO `s` (`path`, `ok`, `n`, `r`, `meta`) VALUES (?, ?, ?, ?, ?)").
		WithArgs(`C:\dir\`, true, nil, 1.5, `{"q":"it's"}`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	l, err := New(db, defaultOptions(), logger.NewNop())
	require.NoError(t, err)

	_, err = l.LoadDocument(context.Background(), "s",
		parse(t, `{"path": "C:\\dir\\", "ok": true, "n": null, "r": 1.5, "meta": {"q": "it's"}}`))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadDocument_EmptyRecord(t *testing.T) {
	tests := []struct {
		name   string
		driver string
		insert string
	}{
		{name: "sqlite", driver: config.DriverSQLite, insert: "INSERT INTO `e` DEFAULT VALUES"},
		{name: "default driver", driver: "", insert: "INSERT INTO `e` DEFAULT VALUES"},
		{name: "mysql", driver: config.DriverMySQL, insert: "INSERT INTO `e` () VALUES ()"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMock(t)

			mock.ExpectBegin()
			mock.ExpectExec("CREATE TABLE `e` (\n  `a` INTEGER\n);").WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectExec("INSERT INTO `e` (`a`) VALUES (?)").WithArgs(int64(1)).WillReturnResult(sqlmock.NewResult(1, 1))
			mock.ExpectExec(tt.insert).WillReturnResult(sqlmock.NewResult(2, 1))
			mock.ExpectCommit()

			opts := defaultOptions()
			opts.Driver = tt.driver
			l, err := New(db, opts, logger.NewNop())
			require.NoError(t, err)

			rows, err := l.LoadDocument(context.Background(), "e", parse(t, `[{"a": 1}, {}]`))
			require.NoError(t, err)
			assert.Equal(t, int64(2), rows)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestLoadDocument_MySQLDropsCreatedTableOnFailure(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE `t` (\n  `a` INTEGER\n);").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO `t` (`a`) VALUES (?)").
		WithArgs(int64(1)).
		WillReturnError(errors.New("insert failed"))
	mock.ExpectRollback()
	mock.ExpectExec("DROP TABLE IF EXISTS `t`").WillReturnResult(sqlmock.NewResult(0, 0))

	opts := defaultOptions()
	opts.Driver = config.DriverMySQL
	l, err := New(db, opts, logger.NewNop())
	require.NoError(t, err)

	_, err = l.LoadDocument(context.Background(), "t", parse(t, `{"a": 1}`))
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadDocument_MySQLKeepsExistingTableWhenCreateFails(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE `t` (\n  `a` INTEGER\n);").WillReturnError(errors.New("table exists"))
	mock.ExpectRollback()

	opts := defaultOptions()
	opts.Driver = config.DriverMySQL
	l, err := New(db, opts, logger.NewNop())
	require.NoError(t, err)

	_, err = l.LoadDocument(context.Background(), "t", parse(t, `{"a": 1}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create table t")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoad_SQLiteEmptyRecordAndBackslashes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mixed.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"a": 1, "s": "x\\"}, {}]`), 0o644))

	db, err := sql.Open("sqlite", filepath.Join(dir, "mixed.db"))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	db.SetMaxOpenConns(1)

	opts := defaultOptions()
	opts.Driver = config.DriverSQLite
	opts.Verify = true
	l, err := New(db, opts, logger.NewNop())
	require.NoError(t, err)

	stats, err := l.Load(context.Background(), []string{path})
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.RowsInserted)

	var s string
	require.NoError(t, db.QueryRow("SELECT `s` FROM `mixed` WHERE `a` = 1").Scan(&s))
	assert.Equal(t, `x\`, s)

	var nulls int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM `mixed` WHERE `a` IS NULL AND `s` IS NULL").Scan(&nulls))
	assert.Equal(t, 1, nulls)
}
