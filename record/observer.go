package record

import (
	"context"
	"time"
)

// Op identifies the kind of statement a Repository executed.
type Op string

// Statement kinds reported to observers.
const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpFind   Op = "find"
	OpWhere  Op = "where"
)

// Event describes one executed statement.
type Event struct {
	Table    string
	Op       Op
	ID       int64 // primary key for insert/update/find, zero for where
	Rows     int64 // rows written or fetched
	Duration time.Duration
	Err      error
}

// Observer receives an Event after every statement a Repository executes.
//
// Observers run synchronously on the caller's goroutine and must not block
// for long. A returned error is logged by the repository and never changes
// the outcome of the operation.
type Observer interface {
	Observe(ctx context.Context, ev Event) error
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx context.Context, ev Event) error

// Observe calls f(ctx, ev).
func (f ObserverFunc) Observe(ctx context.Context, ev Event) error {
	return f(ctx, ev)
}

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Option configures a Repository.
type Option func(*settings)

type settings struct {
	logger    Logger
	observers []Observer
	now       func() time.Time
}

// WithLogger logs every statement at debug level and observer failures at warn.
func WithLogger(l Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithObserver registers observers, called in registration order.
func WithObserver(obs ...Observer) Option {
	return func(s *settings) {
		for _, o := range obs {
			if o != nil {
				s.observers = append(s.observers, o)
			}
		}
	}
}

// WithClock overrides the clock used for created_at/updated_at stamps.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}
