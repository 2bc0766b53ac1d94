package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Connection constants.
const (
	// dirPermissions is the permission mode for the SQLite database directory.
	dirPermissions = 0750

	// filePermissions is the permission mode for the SQLite database file.
	filePermissions = 0600

	// connectionTimeout is the timeout for verifying database connectivity.
	connectionTimeout = 5 * time.Second

	// connMaxIdleTime is how long idle connections are kept open.
	connMaxIdleTime = 30 * time.Minute
)

// DB wraps a sql.DB connection with the dialect it speaks.
// It is the connection handle every record repository executes on.
type DB struct {
	*sql.DB
	dialect Dialect
	driver  string
}

// Open creates a new database connection with the specified configuration.
//
// It performs the following setup:
//  1. Validates the configuration (driver present, required settings set)
//  2. Creates the SQLite directory when the driver is sqlite3
//  3. Opens the connection (pgx through its database/sql adapter)
//  4. Configures the connection pool
//  5. Verifies the connection with a ping
//
// Parameters:
//   - ctx: Context bounding the connectivity check
//   - cfg: Database configuration
//
// Returns:
//   - *DB: Connected database wrapper
//   - error: ErrDriverMissing, ErrConfigIncomplete or ErrConnectionFailed (wrapped)
func Open(ctx context.Context, cfg Config) (*DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	sqlDB, err := openSQL(cfg)
	if err != nil {
		return nil, err
	}

	configurePool(sqlDB, cfg)

	db := &DB{
		DB:      sqlDB,
		dialect: dialect,
		driver:  cfg.Driver,
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectionTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		sqlDB.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	if cfg.Driver == DriverSQLite && !cfg.inMemory() {
		_ = os.Chmod(cfg.Path, filePermissions) //nolint:errcheck // In-memory and URI paths have no file
	}

	return db, nil
}

// configurePool sizes the connection pool. An in-memory SQLite database
// lives only as long as its single connection, so that connection is never
// recycled.
func configurePool(sqlDB *sql.DB, cfg Config) {
	sqlDB.SetMaxIdleConns(1)
	if cfg.inMemory() {
		sqlDB.SetMaxOpenConns(1)
		return
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)
}

// openSQL opens the driver-specific *sql.DB without connecting.
func openSQL(cfg Config) (*sql.DB, error) {
	switch cfg.Driver {
	case DriverPostgres:
		pgCfg, err := pgx.ParseConfig(cfg.DSN())
		if err != nil {
			return nil, fmt.Errorf("%w: parsing postgres config: %w", ErrConfigIncomplete, err)
		}
		return stdlib.OpenDB(*pgCfg), nil

	case DriverSQLite:
		if cfg.inMemory() {
			break
		}
		if err := os.MkdirAll(filepath.Dir(cfg.Path), dirPermissions); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	sqlDB, err := sql.Open(sqlDriverNames[cfg.Driver], cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return sqlDB, nil
}

// Connect returns db itself, so an already open DB can be handed to a
// repository wherever a lazily opened Handle would be accepted.
func (db *DB) Connect(context.Context) (*DB, error) {
	if db == nil || db.DB == nil {
		return nil, ErrClosed
	}
	return db, nil
}

// Dialect returns the SQL dialect for this connection.
func (db *DB) Dialect() Dialect {
	return db.dialect
}

// Driver returns the canonical driver name (mysql, postgres, sqlite3).
func (db *DB) Driver() string {
	return db.driver
}

// Close closes the database connection gracefully.
func (db *DB) Close() error {
	if db.DB == nil {
		return nil
	}
	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}

// HealthCheck verifies the database is accessible and functioning.
// It performs a simple query to ensure the connection is alive.
func (db *DB) HealthCheck(ctx context.Context) error {
	var result int
	err := db.QueryRowContext(ctx, "SELECT 1").Scan(&result)
	if err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// Stats returns database connection pool statistics.
func (db *DB) Stats() sql.DBStats {
	return db.DB.Stats()
}

// ExecContext executes a query that doesn't return rows (INSERT, UPDATE).
//
// Returns:
//   - sql.Result: Contains LastInsertId and RowsAffected
//   - error: If execution fails
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	result, err := db.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}
	return result, nil
}

// QueryContext executes a query that returns rows.
// The caller must close the returned rows.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	rows, err := db.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying: %w", err)
	}
	return rows, nil
}

// QueryRowContext executes a query that returns at most one row.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.DB.QueryRowContext(ctx, query, args...)
}
