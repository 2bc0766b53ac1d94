package audit

import (
	"encoding/json"
	"time"

	"github.com/nerrad567/opencrate/record"
)

// AuditLog represents a single audit trail entry.
type AuditLog struct { //nolint:revive // audit.AuditLog is clearer than audit.Log in calling code
	ID         int64           `db:"id" json:"id"`
	Ref        string          `db:"ref" json:"ref"`
	Action     string          `db:"action" json:"action"`
	EntityType string          `db:"entity_type" json:"entity_type"`
	EntityID   int64           `db:"entity_id" json:"entity_id,omitempty"`
	Source     string          `db:"source" json:"source"`
	Details    json.RawMessage `db:"details" json:"details,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// Logs maps AuditLog onto the audit_logs table.
var Logs = record.MustTable[AuditLog]("audit_logs", "id")

// Page size limits for List.
const (
	defaultListLimit = 50
	maxListLimit     = 200
)
