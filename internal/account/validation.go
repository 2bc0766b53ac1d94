package account

import (
	"fmt"
	"net/mail"
	"strings"
)

const (
	maxNameLength  = 100
	maxEmailLength = 254
)

// ValidateName checks if a user name is valid.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, maxNameLength)
	}
	return nil
}

// ValidateEmail checks that email is a bare address ("a@b.c", no display name).
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("%w: email cannot be empty", ErrInvalidEmail)
	}
	if len(email) > maxEmailLength {
		return fmt.Errorf("%w: email exceeds %d characters", ErrInvalidEmail, maxEmailLength)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}
	return nil
}

// ValidateStatus checks status against the known statuses.
func ValidateStatus(status string) error {
	switch status {
	case StatusActive, StatusSuspended, StatusDeleted:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
}

// Validate checks every user-editable field of u.
func Validate(u *User) error {
	if err := ValidateName(u.Name); err != nil {
		return err
	}
	if err := ValidateEmail(u.Email); err != nil {
		return err
	}
	return ValidateStatus(u.Status)
}
