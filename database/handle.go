package database

import (
	"context"
	"sync"
)

// Handle lazily opens one DB from its configuration and hands the same DB to
// every caller afterwards.
//
// A failed open is not cached: the next Connect tries again. Once Close has
// been called, Connect returns ErrClosed.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Handle struct {
	cfg Config

	mu     sync.Mutex
	db     *DB
	closed bool
}

// NewHandle returns a Handle for cfg. No connection is made until Connect.
func NewHandle(cfg Config) *Handle {
	return &Handle{cfg: cfg}
}

// Connect returns the shared DB, opening it on first use.
func (h *Handle) Connect(ctx context.Context) (*DB, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrClosed
	}
	if h.db != nil {
		return h.db, nil
	}

	db, err := Open(ctx, h.cfg)
	if err != nil {
		return nil, err
	}
	h.db = db
	return db, nil
}

// Opened reports whether Connect has established the shared DB.
func (h *Handle) Opened() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.db != nil
}

// Close closes the shared DB if it was opened.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	if h.db == nil {
		return nil
	}
	err := h.db.Close()
	h.db = nil
	return err
}
