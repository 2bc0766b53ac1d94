package audit

import (
	"context"
	"fmt"

	"github.com/nerrad567/opencrate/database"
)

var schemas = map[string]string{
	database.DriverSQLite: `CREATE TABLE IF NOT EXISTS audit_logs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	ref         TEXT NOT NULL,
	action      TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	entity_id   INTEGER NOT NULL DEFAULT 0,
	source      TEXT NOT NULL,
	details     TEXT,
	created_at  DATETIME NOT NULL
)`,
	database.DriverMySQL: `CREATE TABLE IF NOT EXISTS audit_logs (
	id          BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
	ref         VARCHAR(16) NOT NULL,
	action      VARCHAR(16) NOT NULL,
	entity_type VARCHAR(64) NOT NULL,
	entity_id   BIGINT NOT NULL DEFAULT 0,
	source      VARCHAR(64) NOT NULL,
	details     TEXT NULL,
	created_at  DATETIME NOT NULL,
	INDEX idx_audit_entity (entity_type)
)`,
	database.DriverPostgres: `CREATE TABLE IF NOT EXISTS audit_logs (
	id          BIGSERIAL PRIMARY KEY,
	ref         VARCHAR(16) NOT NULL,
	action      VARCHAR(16) NOT NULL,
	entity_type VARCHAR(64) NOT NULL,
	entity_id   BIGINT NOT NULL DEFAULT 0,
	source      VARCHAR(64) NOT NULL,
	details     TEXT,
	created_at  TIMESTAMPTZ NOT NULL
)`,
}

// CreateTableSQL returns the audit_logs DDL for a driver.
func CreateTableSQL(driver string) (string, error) {
	d, err := database.DialectFor(driver)
	if err != nil {
		return "", err
	}
	return schemas[d.Name()], nil
}

// EnsureSchema creates the audit_logs table if it does not exist.
func EnsureSchema(ctx context.Context, db *database.DB) error {
	ddl, err := CreateTableSQL(db.Driver())
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("creating audit_logs table: %w", err)
	}
	return nil
}
