package account

import "errors"

var (
	// ErrInvalidName is returned for an empty or overlong name.
	ErrInvalidName = errors.New("invalid name")

	// ErrInvalidEmail is returned for a malformed email address.
	ErrInvalidEmail = errors.New("invalid email")

	// ErrInvalidStatus is returned for a status outside the known set.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrReadOnlyField is returned when Set targets a column the service owns.
	ErrReadOnlyField = errors.New("field is read-only")

	// ErrEmailTaken is returned when registering an email that already exists.
	ErrEmailTaken = errors.New("email already registered")
)
