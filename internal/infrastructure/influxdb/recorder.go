package influxdb

import (
	"context"
	"time"

	"github.com/nerrad567/opencrate/record"
)

// StatementMeasurement is the measurement StatementRecorder writes to.
const StatementMeasurement = "record_statements"

// Statement outcome tag values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// PointWriter is the part of Client the recorder needs.
type PointWriter interface {
	WritePointWithTime(measurement string, tags map[string]string, fields map[string]any, timestamp time.Time)
}

// StatementRecorder is a record.Observer that writes one point per executed
// statement: tags table, op and status; fields duration_ms and rows.
type StatementRecorder struct {
	w   PointWriter
	now func() time.Time
}

// NewStatementRecorder returns a recorder writing through w.
func NewStatementRecorder(w PointWriter) *StatementRecorder {
	return &StatementRecorder{w: w, now: time.Now}
}

// Observe implements record.Observer. Writes are batched by the client, so
// Observe never blocks and never fails.
func (r *StatementRecorder) Observe(_ context.Context, ev record.Event) error {
	status := StatusOK
	if ev.Err != nil {
		status = StatusError
	}

	r.w.WritePointWithTime(StatementMeasurement,
		map[string]string{
			"table":  ev.Table,
			"op":     string(ev.Op),
			"status": status,
		},
		map[string]any{
			"duration_ms": float64(ev.Duration) / float64(time.Millisecond),
			"rows":        ev.Rows,
		},
		r.now(),
	)
	return nil
}
