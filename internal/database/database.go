// Package database manages the connection used to load generated SQL.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "modernc.org/sqlite"             // SQLite driver (pure Go)

	"github.com/dbsmedya/jsonconv/internal/config"
)

// driverNames maps configured drivers to database/sql driver names.
var driverNames = map[string]string{
	config.DriverMySQL:  "mysql",
	config.DriverSQLite: "sqlite",
}

// Manager handles the connection to the load target.
type Manager struct {
	DB      *sql.DB
	config  *config.DatabaseConfig
	retries int
	backoff time.Duration
}

// NewManager creates a new database manager from configuration.
func NewManager(cfg *config.DatabaseConfig) *Manager {
	return &Manager{
		config:  cfg,
		retries: 3,
		backoff: time.Second,
	}
}

// Connect opens and verifies the connection, retrying with exponential backoff.
func (m *Manager) Connect(ctx context.Context) error {
	db, err := m.connectWithRetry(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", m.config.Driver, err)
	}
	m.DB = db
	return nil
}

// connectWithRetry attempts to connect with exponential backoff.
func (m *Manager) connectWithRetry(ctx context.Context) (*sql.DB, error) {
	var db *sql.DB
	var err error

	backoff := m.backoff
	for i := 0; i < m.retries; i++ {
		db, err = m.connect()
		if err == nil {
			// Verify connection
			pingErr := db.PingContext(ctx)
			if pingErr == nil {
				return db, nil
			}
			_ = db.Close()
			err = pingErr
		}

		if i < m.retries-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
				backoff *= 2
			}
		}
	}

	return nil, fmt.Errorf("failed after %d retries: %w", m.retries, err)
}

// connect creates a database handle without verifying it.
func (m *Manager) connect() (*sql.DB, error) {
	driver, ok := driverNames[m.config.Driver]
	if !ok {
		return nil, fmt.Errorf("unsupported driver %q", m.config.Driver)
	}

	db, err := sql.Open(driver, DSN(m.config))
	if err != nil {
		return nil, err
	}

	// Configure connection pool
	if m.config.Driver == config.DriverSQLite {
		// One writer at a time; also keeps ":memory:" databases on a single connection
		db.SetMaxOpenConns(1)
	} else if m.config.MaxConnections > 0 {
		db.SetMaxOpenConns(m.config.MaxConnections)
	}
	db.SetConnMaxLifetime(10 * time.Minute)

	return db, nil
}

// DSN returns the configured DSN, or for MySQL one built from the
// connection fields when no DSN is set.
func DSN(cfg *config.DatabaseConfig) string {
	if cfg.DSN != "" || cfg.Driver != config.DriverMySQL {
		return cfg.DSN
	}
	return BuildDSN(cfg)
}

// BuildDSN constructs a MySQL DSN from configuration.
func BuildDSN(cfg *config.DatabaseConfig) string {
	// Format: user:password@tcp(host:port)/database?params
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
	)

	if cfg.Database != "" {
		dsn += cfg.Database
	}

	// Generated scripts are executed one statement at a time
	params := "?parseTime=true"
	switch cfg.TLS {
	case "disable":
		params += "&tls=false"
	case "required":
		params += "&tls=true"
	case "preferred", "":
		params += "&tls=preferred"
	}

	return dsn + params
}

// Close closes the connection if it was opened.
func (m *Manager) Close() error {
	if m.DB == nil {
		return nil
	}
	if err := m.DB.Close(); err != nil {
		return fmt.Errorf("%s close: %w", m.config.Driver, err)
	}
	return nil
}

// Ping verifies the connection is alive.
func (m *Manager) Ping(ctx context.Context) error {
	if m.DB == nil {
		return fmt.Errorf("not connected")
	}
	if err := m.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("%s ping failed: %w", m.config.Driver, err)
	}
	return nil
}
