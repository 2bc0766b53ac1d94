package database

import "errors"

// Sentinel errors for connection handling.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, database.ErrDriverMissing) {
//	    // unsupported or unregistered driver
//	}
var (
	// ErrDriverMissing is returned when the configured driver is unknown or not registered.
	ErrDriverMissing = errors.New("database: driver not available")

	// ErrConfigIncomplete is returned when required connection settings are absent.
	ErrConfigIncomplete = errors.New("database: configuration incomplete")

	// ErrConnectionFailed is returned when the database cannot be reached.
	ErrConnectionFailed = errors.New("database: connection failed")

	// ErrClosed is returned by Handle.Connect after the handle was closed.
	ErrClosed = errors.New("database: handle closed")
)
