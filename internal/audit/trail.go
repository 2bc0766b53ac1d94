package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/nerrad567/opencrate/record"
)

// Trail records writes as audit log entries.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Trail struct {
	repo   *record.Repository[AuditLog]
	source string
	newRef func() string
}

// NewTrail returns a Trail storing entries through conn, tagged with source.
// opts configure the trail's own repository (logger, clock); observers
// passed here see the audit inserts themselves.
func NewTrail(conn record.Connector, source string, opts ...record.Option) *Trail {
	return &Trail{
		repo:   record.NewRepository(conn, Logs, opts...),
		source: source,
		newRef: func() string { return "aud-" + uuid.NewString()[:8] },
	}
}

// Observe implements record.Observer.
func (t *Trail) Observe(ctx context.Context, ev record.Event) error {
	if ev.Err != nil || ev.Table == Logs.Name() {
		return nil
	}
	if ev.Op != record.OpInsert && ev.Op != record.OpUpdate {
		return nil
	}

	details, err := json.Marshal(map[string]any{
		"rows":        ev.Rows,
		"duration_ms": float64(ev.Duration.Microseconds()) / 1000,
	})
	if err != nil {
		return fmt.Errorf("marshalling audit details: %w", err)
	}

	return t.Create(ctx, &AuditLog{
		Action:     string(ev.Op),
		EntityType: ev.Table,
		EntityID:   ev.ID,
		Details:    details,
	})
}

// Create inserts a new audit log entry. Ref and Source are filled in if empty.
func (t *Trail) Create(ctx context.Context, log *AuditLog) error {
	if log.Action == "" || log.EntityType == "" {
		return ErrInvalidEntry
	}
	if log.Ref == "" {
		log.Ref = t.newRef()
	}
	if log.Source == "" {
		log.Source = t.source
	}

	if _, err := t.repo.Save(ctx, log); err != nil {
		return fmt.Errorf("inserting audit log: %w", err)
	}
	return nil
}

// List returns the most recent entries for an entity type, newest first.
// limit defaults to 50 and is capped at 200.
func (t *Trail) List(ctx context.Context, entityType string, limit int) ([]*AuditLog, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	limit = min(limit, maxListLimit)

	logs, err := t.repo.Where(ctx, "entity_type", entityType, record.Options{
		OrderBy: "id DESC",
		Limit:   limit,
	})
	if err != nil {
		return nil, fmt.Errorf("querying audit logs: %w", err)
	}
	return logs, nil
}
