package record

import "errors"

// Domain errors for the record package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, record.ErrNotFound) {
//	    // zero or several rows matched
//	}
var (
	// ErrDatabaseUnavailable is returned when no connection can be established.
	ErrDatabaseUnavailable = errors.New("record: database unavailable")

	// ErrSaveFailed is returned when an INSERT or UPDATE fails or an INSERT
	// yields no generated identifier. It wraps the driver's error.
	ErrSaveFailed = errors.New("record: save failed")

	// ErrNotFound is returned by Find and First unless exactly one row matched.
	ErrNotFound = errors.New("record: not found")

	// ErrInvalidTable is returned when a Table definition is unusable.
	ErrInvalidTable = errors.New("record: invalid table definition")

	// ErrUnknownField is returned when a lookup names an undeclared column.
	ErrUnknownField = errors.New("record: unknown field")

	// ErrFieldType is returned when a value cannot be converted to the field's type.
	ErrFieldType = errors.New("record: field type mismatch")

	// ErrInvalidOrderBy is returned when an ORDER BY clause is malformed or
	// names an undeclared column.
	ErrInvalidOrderBy = errors.New("record: invalid order by")

	// ErrInvalidOptions is returned for out-of-range query options.
	ErrInvalidOptions = errors.New("record: invalid options")

	// ErrPrimaryKeyImmutable is returned when Update would change or clear
	// the primary key of a persisted record.
	ErrPrimaryKeyImmutable = errors.New("record: primary key is immutable")

	// ErrNilRecord is returned when a nil record pointer is passed in.
	ErrNilRecord = errors.New("record: nil record")
)
