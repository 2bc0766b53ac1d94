package account

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/opencrate/database"
	"github.com/nerrad567/opencrate/record"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, database.Config{
		Driver: database.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "account.db"),
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	if err := EnsureSchema(ctx, db); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}

	now := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	return NewService(db, record.WithClock(func() time.Time { return now }))
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	u, err := svc.Register(ctx, "  Ada Lovelace ", " Ada@Example.com ")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if u.ID == 0 {
		t.Error("Register() did not set ID")
	}
	if u.Name != "Ada Lovelace" || u.Email != "ada@example.com" {
		t.Errorf("Register() = %q <%s>, want trimmed and lower-cased", u.Name, u.Email)
	}
	if u.Status != StatusActive || u.Logins != 0 {
		t.Errorf("Register() status=%q logins=%d, want active/0", u.Status, u.Logins)
	}
	if !strings.HasPrefix(u.Ref, RefPrefix) || len(u.Ref) != refLength {
		t.Errorf("Register() Ref = %q, want %s prefix and length %d", u.Ref, RefPrefix, refLength)
	}
	if u.CreatedAt.IsZero() {
		t.Error("Register() did not stamp CreatedAt")
	}
	if u.UpdatedAt != nil {
		t.Errorf("Register() UpdatedAt = %v, want nil", u.UpdatedAt)
	}

	got, err := svc.Get(ctx, u.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Ref != u.Ref || got.Email != u.Email {
		t.Errorf("Get() = %+v, want %+v", got, u)
	}
}

func TestService_RegisterRejects(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	if _, err := svc.Register(ctx, "Ada", "ada@example.com"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	tests := []struct {
		name  string
		uname string
		email string
		want  error
	}{
		{"duplicate email", "Other Ada", "ADA@example.com", ErrEmailTaken},
		{"empty name", "", "b@example.com", ErrInvalidName},
		{"bad email", "Bob", "bob", ErrInvalidEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.uname, tt.email)
			if !errors.Is(err, tt.want) {
				t.Errorf("Register() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestService_ByRef(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	u, err := svc.Register(ctx, "Ada", "ada@example.com")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	got, err := svc.ByRef(ctx, u.Ref)
	if err != nil {
		t.Fatalf("ByRef() error = %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("ByRef() ID = %d, want %d", got.ID, u.ID)
	}

	if _, err := svc.ByRef(ctx, "usr_missing"); !IsNotFound(err) {
		t.Errorf("ByRef(missing) error = %v, want not found", err)
	}
}

func TestService_Set(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	u, err := svc.Register(ctx, "Ada", "ada@example.com")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	got, err := svc.Set(ctx, u.ID, map[string]any{
		"name":   "Countess Ada",
		"status": StatusSuspended,
		"logins": "7",
	})
	if err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got.Name != "Countess Ada" || got.Status != StatusSuspended || got.Logins != 7 {
		t.Errorf("Set() = %+v, want updated name, status and logins", got)
	}
	if got.UpdatedAt == nil {
		t.Error("Set() did not stamp UpdatedAt")
	}

	reloaded, err := svc.Get(ctx, u.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if reloaded.Name != "Countess Ada" || reloaded.Logins != 7 || reloaded.Ref != u.Ref {
		t.Errorf("Get() after Set = %+v", reloaded)
	}
}

func TestService_SetRejects(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	u, err := svc.Register(ctx, "Ada", "ada@example.com")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	tests := []struct {
		name   string
		id     int64
		fields map[string]any
		want   error
	}{
		{"read-only ref", u.ID, map[string]any{"ref": "usr_x"}, ErrReadOnlyField},
		{"read-only id", u.ID, map[string]any{"id": 9}, ErrReadOnlyField},
		{"unknown field", u.ID, map[string]any{"nickname": "ada"}, record.ErrUnknownField},
		{"invalid status", u.ID, map[string]any{"status": "gone"}, ErrInvalidStatus},
		{"bad type", u.ID, map[string]any{"logins": "many"}, record.ErrFieldType},
		{"missing user", u.ID + 100, map[string]any{"name": "x"}, record.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Set(ctx, tt.id, tt.fields)
			if !errors.Is(err, tt.want) {
				t.Errorf("Set() error = %v, want %v", err, tt.want)
			}
		})
	}

	got, err := svc.Get(ctx, u.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Status != StatusActive || got.Logins != 0 {
		t.Errorf("rejected Set changed the stored row: %+v", got)
	}
}

func TestService_RecordLogin(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	u, err := svc.Register(ctx, "Ada", "ada@example.com")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	for range 3 {
		if _, err := svc.RecordLogin(ctx, u.ID); err != nil {
			t.Fatalf("RecordLogin() error = %v", err)
		}
	}
	got, err := svc.Get(ctx, u.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Logins != 3 {
		t.Errorf("Logins = %d, want 3", got.Logins)
	}

	if _, err := svc.Set(ctx, u.ID, map[string]any{"status": StatusSuspended}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, err := svc.RecordLogin(ctx, u.ID); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("RecordLogin(suspended) error = %v, want ErrInvalidStatus", err)
	}
}

func TestService_WhereAndFirst(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	for _, email := range []string{"c@example.com", "a@example.com", "b@example.com"} {
		if _, err := svc.Register(ctx, "Member", email); err != nil {
			t.Fatalf("Register(%s) error = %v", email, err)
		}
	}

	got, err := svc.Where(ctx, "name", "Member", record.Options{OrderBy: "email DESC", Limit: 2})
	if err != nil {
		t.Fatalf("Where() error = %v", err)
	}
	if len(got) != 2 || got[0].Email != "c@example.com" || got[1].Email != "b@example.com" {
		t.Errorf("Where() = %v, want c then b", emails(got))
	}

	if _, err := svc.First(ctx, "name", "Member", record.Options{}); !IsNotFound(err) {
		t.Errorf("First(ambiguous) error = %v, want not found", err)
	}

	one, err := svc.First(ctx, "email", "a@example.com", record.Options{})
	if err != nil {
		t.Fatalf("First() error = %v", err)
	}
	if one.Email != "a@example.com" {
		t.Errorf("First() = %s, want a@example.com", one.Email)
	}
}

func emails(us []*User) []string {
	out := make([]string, len(us))
	for i, u := range us {
		out[i] = u.Email
	}
	return out
}
