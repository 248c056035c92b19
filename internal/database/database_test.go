package database

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dbsmedya/jsonconv/internal/config"
)

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *config.DatabaseConfig
		expected string
	}{
		{
			name: "basic DSN",
			cfg: &config.DatabaseConfig{
				Host:     "localhost",
				Port:     3306,
				User:     "root",
				Password: "secret",
				Database: "testdb",
				TLS:      "preferred",
			},
			expected: "root:secret@tcp(localhost:3306)/testdb?parseTime=true&tls=preferred",
		},
		{
			name: "DSN without database",
			cfg: &config.DatabaseConfig{
				Host:     "localhost",
				Port:     3306,
				User:     "root",
				Password: "secret",
				TLS:      "preferred",
			},
			expected: "root:secret@tcp(localhost:3306)/?parseTime=true&tls=preferred",
		},
		{
			name: "DSN with TLS disabled",
			cfg: &config.DatabaseConfig{
				Host:     "localhost",
				Port:     3306,
				User:     "root",
				Password: "secret",
				Database: "testdb",
				TLS:      "disable",
			},
			expected: "root:secret@tcp(localhost:3306)/testdb?parseTime=true&tls=false",
		},
		{
			name: "DSN with TLS required",
			cfg: &config.DatabaseConfig{
				Host:     "localhost",
				Port:     3306,
				User:     "root",
				Password: "secret",
				Database: "testdb",
				TLS:      "required",
			},
			expected: "root:secret@tcp(localhost:3306)/testdb?parseTime=true&tls=true",
		},
		{
			name: "Empty password",
			cfg: &config.DatabaseConfig{
				Host:     "localhost",
				Port:     3306,
				User:     "root",
				Database: "testdb",
			},
			expected: "root:@tcp(localhost:3306)/testdb?parseTime=true&tls=preferred",
		},
		{
			name: "Special characters in password",
			cfg: &config.DatabaseConfig{
				Host:     "remote-host",
				Port:     3307,
				User:     "admin",
				Password: "p@ss!w0rd#123",
				Database: "mydb",
				TLS:      "disable",
			},
			expected: "admin:p@ss!w0rd#123@tcp(remote-host:3307)/mydb?parseTime=true&tls=false",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := BuildDSN(tt.cfg)
			if result != tt.expected {
				t.Errorf("BuildDSN() = %q, expected %q", result, tt.expected)
			}
		})
	}
}

func TestBuildDSN_NoMultiStatements(t *testing.T) {
	dsn := BuildDSN(&config.DatabaseConfig{Host: "localhost", Port: 3306, User: "root"})
	if strings.Contains(dsn, "multiStatements") {
		t.Errorf("BuildDSN() = %q, should not enable multiStatements", dsn)
	}
}

func TestDSN(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *config.DatabaseConfig
		expected string
	}{
		{
			name:     "sqlite path",
			cfg:      &config.DatabaseConfig{Driver: config.DriverSQLite, DSN: "out.db"},
			expected: "out.db",
		},
		{
			name:     "mysql explicit DSN wins",
			cfg:      &config.DatabaseConfig{Driver: config.DriverMySQL, DSN: "u:p@tcp(h:1)/d", Host: "ignored"},
			expected: "u:p@tcp(h:1)/d",
		},
		{
			name:     "mysql built from fields",
			cfg:      &config.DatabaseConfig{Driver: config.DriverMySQL, Host: "db", Port: 3306, User: "app", Database: "json"},
			expected: "app:@tcp(db:3306)/json?parseTime=true&tls=preferred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DSN(tt.cfg); got != tt.expected {
				t.Errorf("DSN() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestManagerCloseWithoutConnect(t *testing.T) {
	manager := NewManager(&config.DatabaseConfig{Driver: config.DriverSQLite})
	if manager.DB != nil {
		t.Error("DB should be nil before Connect()")
	}

	// Should not panic when closing unconnected manager
	if err := manager.Close(); err != nil {
		t.Errorf("Close() returned error for unconnected manager: %v", err)
	}
	if err := manager.Ping(context.Background()); err == nil {
		t.Error("Ping() should fail before Connect()")
	}
}

func TestManager_ConnectSQLite(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Driver: config.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "load.db"),
	}
	manager := NewManager(cfg)

	if err := manager.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	defer manager.Close()

	if err := manager.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error: %v", err)
	}
	if _, err := manager.DB.Exec("CREATE TABLE `t` (`a` INTEGER)"); err != nil {
		t.Errorf("Exec() error: %v", err)
	}
}

func TestManager_UnsupportedDriver(t *testing.T) {
	manager := NewManager(&config.DatabaseConfig{Driver: "postgres"})
	manager.retries = 2
	manager.backoff = time.Millisecond

	err := manager.Connect(context.Background())
	if err == nil {
		t.Fatal("Connect() should fail for unsupported driver")
	}
	if !strings.Contains(err.Error(), "unsupported driver") {
		t.Errorf("unexpected error: %v", err)
	}
	if !strings.Contains(err.Error(), "failed after 2 retries") {
		t.Errorf("error should report retries: %v", err)
	}
}

func TestManager_ConnectRespectsContext(t *testing.T) {
	manager := NewManager(&config.DatabaseConfig{Driver: "postgres"})
	manager.backoff = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := manager.Connect(ctx)
	if err == nil || !strings.Contains(err.Error(), context.Canceled.Error()) {
		t.Errorf("Connect() should stop on cancelled context, got %v", err)
	}
}
