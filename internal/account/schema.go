package account

import (
	"context"
	"fmt"

	"github.com/nerrad567/opencrate/database"
)

// schemas holds the users DDL per driver. Only the identity column and the
// timestamp type differ between dialects.
var schemas = map[string]string{
	database.DriverSQLite: `CREATE TABLE IF NOT EXISTS users (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	ref        TEXT NOT NULL UNIQUE,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL UNIQUE,
	status     TEXT NOT NULL DEFAULT 'active',
	logins     INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME
)`,
	database.DriverMySQL: `CREATE TABLE IF NOT EXISTS users (
	id         BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
	ref        VARCHAR(32) NOT NULL UNIQUE,
	name       VARCHAR(100) NOT NULL,
	email      VARCHAR(254) NOT NULL UNIQUE,
	status     VARCHAR(16) NOT NULL DEFAULT 'active',
	logins     INT NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NULL
)`,
	database.DriverPostgres: `CREATE TABLE IF NOT EXISTS users (
	id         BIGSERIAL PRIMARY KEY,
	ref        VARCHAR(32) NOT NULL UNIQUE,
	name       VARCHAR(100) NOT NULL,
	email      VARCHAR(254) NOT NULL UNIQUE,
	status     VARCHAR(16) NOT NULL DEFAULT 'active',
	logins     INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ
)`,
}

// CreateTableSQL returns the users DDL for a driver.
func CreateTableSQL(driver string) (string, error) {
	d, err := database.DialectFor(driver)
	if err != nil {
		return "", err
	}
	return schemas[d.Name()], nil
}

// EnsureSchema creates the users table if it does not exist.
func EnsureSchema(ctx context.Context, db *database.DB) error {
	ddl, err := CreateTableSQL(db.Driver())
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}
	return nil
}
