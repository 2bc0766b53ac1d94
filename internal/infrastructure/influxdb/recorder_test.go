package influxdb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nerrad567/opencrate/record"
)

type point struct {
	measurement string
	tags        map[string]string
	fields      map[string]any
	ts          time.Time
}

type fakeWriter struct {
	points []point
}

func (w *fakeWriter) WritePointWithTime(measurement string, tags map[string]string, fields map[string]any, ts time.Time) {
	w.points = append(w.points, point{measurement, tags, fields, ts})
}

// Compile-time checks.
var (
	_ record.Observer = (*StatementRecorder)(nil)
	_ PointWriter     = (*Client)(nil)
)

func TestStatementRecorder(t *testing.T) {
	at := time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		ev         record.Event
		wantStatus string
		wantMS     float64
		wantRows   int64
	}{
		{
			name:       "successful insert",
			ev:         record.Event{Table: "users", Op: record.OpInsert, ID: 9, Rows: 1, Duration: 1500 * time.Microsecond},
			wantStatus: StatusOK,
			wantMS:     1.5,
			wantRows:   1,
		},
		{
			name:       "failed update",
			ev:         record.Event{Table: "users", Op: record.OpUpdate, ID: 9, Duration: 3 * time.Millisecond, Err: errors.New("locked")},
			wantStatus: StatusError,
			wantMS:     3,
			wantRows:   0,
		},
		{
			name:       "where",
			ev:         record.Event{Table: "posts", Op: record.OpWhere, Rows: 12},
			wantStatus: StatusOK,
			wantMS:     0,
			wantRows:   12,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &fakeWriter{}
			rec := NewStatementRecorder(w)
			rec.now = func() time.Time { return at }

			if err := rec.Observe(context.Background(), tt.ev); err != nil {
				t.Fatalf("Observe() error = %v", err)
			}
			if len(w.points) != 1 {
				t.Fatalf("wrote %d points, want 1", len(w.points))
			}

			p := w.points[0]
			if p.measurement != StatementMeasurement || !p.ts.Equal(at) {
				t.Errorf("point = %s at %v", p.measurement, p.ts)
			}
			if p.tags["table"] != tt.ev.Table || p.tags["op"] != string(tt.ev.Op) || p.tags["status"] != tt.wantStatus {
				t.Errorf("tags = %v", p.tags)
			}
			if p.fields["duration_ms"] != tt.wantMS {
				t.Errorf("duration_ms = %v, want %v", p.fields["duration_ms"], tt.wantMS)
			}
			if p.fields["rows"] != tt.wantRows {
				t.Errorf("rows = %v, want %v", p.fields["rows"], tt.wantRows)
			}
		})
	}
}
