package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nerrad567/opencrate/record"
)

const (
	// RefPrefix starts every public user reference.
	RefPrefix = "usr_"

	// refLength is the total length of a reference, prefix included.
	refLength = 16
)

// readOnly lists the columns Set refuses to change.
var readOnly = map[string]bool{
	"id":         true,
	"ref":        true,
	"created_at": true,
	"updated_at": true,
}

// Service manages users on top of a record repository.
type Service struct {
	repo *record.Repository[User]
}

// NewService returns a Service storing users through conn.
func NewService(conn record.Connector, opts ...record.Option) *Service {
	return &Service{repo: record.NewRepository(conn, Users, opts...)}
}

// Register validates and inserts a new active user with a fresh reference.
func (s *Service) Register(ctx context.Context, name, email string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := Users.New(map[string]any{
		"ref":   record.GenerateID(RefPrefix, refLength),
		"name":  strings.TrimSpace(name),
		"email": email,
	})
	if err != nil {
		return nil, err
	}
	if err := Validate(u); err != nil {
		return nil, err
	}

	existing, err := s.repo.Where(ctx, "email", email, record.Options{Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("checking email: %w", err)
	}
	if len(existing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmailTaken, email)
	}

	if _, err := s.repo.Save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Get returns the user with the given primary key.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.repo.Find(ctx, id)
}

// ByRef returns the user with the given public reference.
func (s *Service) ByRef(ctx context.Context, ref string) (*User, error) {
	return s.repo.First(ctx, "ref", ref, record.Options{})
}

// Set applies field changes to the user with the given id and saves it.
// Fields must be declared, writable columns; values are converted to the
// column's type the same way rows are.
func (s *Service) Set(ctx context.Context, id int64, fields map[string]any) (*User, error) {
	for k := range fields {
		if !Users.Has(k) {
			return nil, fmt.Errorf("%w: users.%s", record.ErrUnknownField, k)
		}
		if readOnly[k] {
			return nil, fmt.Errorf("%w: %s", ErrReadOnlyField, k)
		}
	}

	u, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := Users.Update(u, fields); err != nil {
		return nil, err
	}
	if email, ok := fields["email"]; ok && email != nil {
		u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	}
	if err := Validate(u); err != nil {
		return nil, err
	}

	if _, err := s.repo.Save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// RecordLogin increments the login counter.
func (s *Service) RecordLogin(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Status != StatusActive {
		return nil, fmt.Errorf("%w: user %d is %s", ErrInvalidStatus, id, u.Status)
	}
	u.Logins++
	if _, err := s.repo.Save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Where lists users whose field equals value.
func (s *Service) Where(ctx context.Context, field string, value any, opts record.Options) ([]*User, error) {
	return s.repo.Where(ctx, field, value, opts)
}

// First returns the only user whose field equals value.
func (s *Service) First(ctx context.Context, field string, value any, opts record.Options) (*User, error) {
	return s.repo.First(ctx, field, value, opts)
}

// IsNotFound reports whether err means no (single) user matched.
func IsNotFound(err error) bool {
	return errors.Is(err, record.ErrNotFound)
}
