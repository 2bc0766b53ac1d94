package audit

import "errors"

var (
	// ErrInvalidEntry is returned when an entry lacks its action or entity type.
	ErrInvalidEntry = errors.New("audit: entry needs action and entity type")
)
