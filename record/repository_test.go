package record

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/opencrate/database"
)

const usersSchema = `CREATE TABLE users (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL DEFAULT '',
	email      TEXT NOT NULL DEFAULT '',
	status     TEXT NOT NULL DEFAULT '',
	logins     INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME,
	updated_at DATETIME
)`

// recorder collects observed events.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Observe(_ context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Op, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Op
	}
	return out
}

func (r *recorder) last() Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

// testLogger captures warnings.
type testLogger struct {
	mu    sync.Mutex
	warns []string
}

func (l *testLogger) Debug(string, ...any) {}

func (l *testLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

// openUsersDB opens a temp-file SQLite database with the users table.
func openUsersDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Open(context.Background(), database.Config{
		Driver: "sqlite3",
		Path:   filepath.Join(t.TempDir(), "record.db"),
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	if _, err := db.ExecContext(context.Background(), usersSchema); err != nil {
		t.Fatalf("creating schema: %v", err)
	}
	return db
}

var fixedNow = time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)

func newUsersRepo(t *testing.T, opts ...Option) (*Repository[user], *recorder) {
	t.Helper()
	rec := &recorder{}
	opts = append([]Option{WithObserver(rec), WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewRepository(openUsersDB(t), users, opts...), rec
}

func seedUsers(t *testing.T, repo *Repository[user], n int, status string) {
	t.Helper()
	for i := range n {
		u, err := users.New(map[string]any{
			"name":   fmt.Sprintf("user-%d", i),
			"email":  fmt.Sprintf("user-%d@example.com", i),
			"status": status,
		})
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if _, err := repo.Save(context.Background(), u); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}
}

func TestRepository_SaveInsert(t *testing.T) {
	repo, rec := newUsersRepo(t)
	ctx := context.Background()

	u, _ := users.New(map[string]any{"name": "Ada", "email": "ada@example.com"})
	id, err := repo.Save(ctx, u)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if id <= 0 || u.ID != id {
		t.Errorf("Save() id = %d, record ID = %d, want matching positive key", id, u.ID)
	}
	if !u.CreatedAt.Equal(fixedNow) {
		t.Errorf("CreatedAt = %v, want %v", u.CreatedAt, fixedNow)
	}
	if !u.UpdatedAt.IsZero() {
		t.Errorf("UpdatedAt = %v, want zero on insert", u.UpdatedAt)
	}

	if ops := rec.ops(); len(ops) != 1 || ops[0] != OpInsert {
		t.Fatalf("observed %v, want exactly one insert", ops)
	}
	if ev := rec.last(); ev.ID != id || ev.Rows != 1 || ev.Err != nil || ev.Table != "users" {
		t.Errorf("insert event = %+v", ev)
	}

	got, err := repo.Find(ctx, id)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if got.Name != "Ada" || got.Status != "active" || !got.CreatedAt.Equal(fixedNow) {
		t.Errorf("Find() = %+v, want saved values", got)
	}
}

func TestRepository_SaveUpdate(t *testing.T) {
	repo, rec := newUsersRepo(t)
	ctx := context.Background()

	u, _ := users.New(map[string]any{"name": "Ada"})
	id, err := repo.Save(ctx, u)
	if err != nil {
		t.Fatalf("Save() insert error = %v", err)
	}

	if _, err := users.Update(u, map[string]any{"email": "ada@lovelace.dev", "logins": 4}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	got, err := repo.Save(ctx, u)
	if err != nil {
		t.Fatalf("Save() update error = %v", err)
	}
	if got != id {
		t.Errorf("Save() update returned %d, want %d", got, id)
	}
	if !u.UpdatedAt.Equal(fixedNow) {
		t.Errorf("UpdatedAt = %v, want %v", u.UpdatedAt, fixedNow)
	}

	ops := rec.ops()
	if len(ops) != 2 || ops[1] != OpUpdate {
		t.Fatalf("observed %v, want insert then one update", ops)
	}
	if ev := rec.last(); ev.Rows > 1 || ev.ID != id {
		t.Errorf("update event = %+v, want at most one row for id %d", ev, id)
	}

	reloaded, err := repo.Find(ctx, id)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if reloaded.Email != "ada@lovelace.dev" || reloaded.Logins != 4 || reloaded.Name != "Ada" {
		t.Errorf("Find() = %+v, want updated values", reloaded)
	}
}

func TestRepository_SaveFailure(t *testing.T) {
	db := openUsersDB(t)
	rec := &recorder{}
	repo := NewRepository(db, MustTable[entry]("entries", "id"), WithObserver(rec))

	e := &entry{Kind: "x"}
	_, err := repo.Save(context.Background(), e)
	if !errors.Is(err, ErrSaveFailed) {
		t.Fatalf("Save() error = %v, want ErrSaveFailed", err)
	}
	if e.CreatedAt != 0 || e.ID != 0 {
		t.Errorf("failed Save() left %+v, want created_at restored and no key", e)
	}
	if ev := rec.last(); ev.Op != OpInsert || !errors.Is(ev.Err, ErrSaveFailed) {
		t.Errorf("failure event = %+v", ev)
	}

	if _, err := repo.Save(context.Background(), nil); !errors.Is(err, ErrNilRecord) {
		t.Errorf("Save(nil) error = %v, want ErrNilRecord", err)
	}
}

func TestRepository_SaveMissingRow(t *testing.T) {
	repo, rec := newUsersRepo(t)

	u, _ := users.New(map[string]any{"id": 42, "name": "ghost"})
	id, err := repo.Save(context.Background(), u)
	if !errors.Is(err, ErrSaveFailed) || !errors.Is(err, ErrNotFound) {
		t.Fatalf("Save() = %d, %v; want ErrSaveFailed wrapping ErrNotFound", id, err)
	}
	if !u.UpdatedAt.IsZero() {
		t.Errorf("UpdatedAt = %v, want the stamp restored", u.UpdatedAt)
	}
	if ev := rec.last(); ev.Op != OpUpdate || ev.Rows != 0 || !errors.Is(ev.Err, ErrNotFound) {
		t.Errorf("update event = %+v", ev)
	}
}

func TestRepository_SaveKeepsPrimaryKey(t *testing.T) {
	repo, rec := newUsersRepo(t)
	ctx := context.Background()
	seedUsers(t, repo, 2, "active")

	u, err := repo.Find(ctx, 1)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}

	for _, fields := range []map[string]any{
		{"id": 2, "name": "clobbered"},
		{"id": nil},
	} {
		if _, err := users.Update(u, fields); !errors.Is(err, ErrPrimaryKeyImmutable) {
			t.Errorf("Update(%v) error = %v, want ErrPrimaryKeyImmutable", fields, err)
		}
	}

	if _, err := repo.Save(ctx, u); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if ev := rec.last(); ev.Op != OpUpdate || ev.ID != 1 {
		t.Errorf("Save() ran %s on id %d, want update of 1", ev.Op, ev.ID)
	}

	other, err := repo.Find(ctx, 2)
	if err != nil {
		t.Fatalf("Find(2) error = %v", err)
	}
	if other.Name != "user-1" {
		t.Errorf("row 2 name = %q, want it untouched", other.Name)
	}
	all, err := repo.Where(ctx, "status", "active", Options{})
	if err != nil {
		t.Fatalf("Where() error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("table holds %d rows, want 2", len(all))
	}
}

func TestRepository_Find(t *testing.T) {
	repo, _ := newUsersRepo(t)
	ctx := context.Background()
	seedUsers(t, repo, 2, "active")

	u, err := repo.Find(ctx, 2)
	if err != nil {
		t.Fatalf("Find(2) error = %v", err)
	}
	if u.ID != 2 || u.Name != "user-1" {
		t.Errorf("Find(2) = %+v", u)
	}

	if _, err := repo.Find(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("Find(999) error = %v, want ErrNotFound", err)
	}
}

func TestRepository_Where(t *testing.T) {
	repo, rec := newUsersRepo(t)
	ctx := context.Background()
	seedUsers(t, repo, 5, "active")
	seedUsers(t, repo, 1, "banned")

	t.Run("limit caps the result", func(t *testing.T) {
		got, err := repo.Where(ctx, "status", "active", Options{Limit: 3})
		if err != nil {
			t.Fatalf("Where() error = %v", err)
		}
		if len(got) != 3 {
			t.Errorf("Where() returned %d rows, want 3", len(got))
		}
		if ev := rec.last(); ev.Op != OpWhere || ev.Rows != 3 {
			t.Errorf("where event = %+v", ev)
		}
	})

	t.Run("no limit returns every match", func(t *testing.T) {
		got, err := repo.Where(ctx, "status", "active", Options{})
		if err != nil {
			t.Fatalf("Where() error = %v", err)
		}
		if len(got) != 5 {
			t.Errorf("Where() returned %d rows, want 5", len(got))
		}
	})

	t.Run("order by", func(t *testing.T) {
		got, err := repo.Where(ctx, "status", "active", Options{OrderBy: "id desc", Limit: 2})
		if err != nil {
			t.Fatalf("Where() error = %v", err)
		}
		if len(got) != 2 || got[0].ID != 5 || got[1].ID != 4 {
			t.Errorf("Where() ids = %v, want [5 4]", ids(got))
		}
	})

	t.Run("no match is empty not nil", func(t *testing.T) {
		got, err := repo.Where(ctx, "status", "deleted", Options{})
		if err != nil {
			t.Fatalf("Where() error = %v", err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("Where() = %#v, want empty slice", got)
		}
	})

	errTests := []struct {
		name  string
		field string
		opts  Options
		want  error
	}{
		{"unknown field", "password", Options{}, ErrUnknownField},
		{"injected field", "status = status OR 1", Options{}, ErrUnknownField},
		{"negative limit", "status", Options{Limit: -1}, ErrInvalidOptions},
		{"bad order by", "status", Options{OrderBy: "id; DROP TABLE users"}, ErrInvalidOrderBy},
	}
	for _, tt := range errTests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := repo.Where(ctx, tt.field, "x", tt.opts); !errors.Is(err, tt.want) {
				t.Errorf("Where() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRepository_First(t *testing.T) {
	repo, _ := newUsersRepo(t)
	ctx := context.Background()
	seedUsers(t, repo, 3, "active")
	seedUsers(t, repo, 1, "banned")

	u, err := repo.First(ctx, "status", "banned", Options{})
	if err != nil {
		t.Fatalf("First() error = %v", err)
	}
	if u.ID != 4 {
		t.Errorf("First() = %+v, want id 4", u)
	}

	if _, err := repo.First(ctx, "status", "active", Options{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("First() with several matches error = %v, want ErrNotFound", err)
	}

	u, err = repo.First(ctx, "status", "active", Options{Limit: 1, OrderBy: "id DESC"})
	if err != nil {
		t.Fatalf("First() with explicit limit error = %v", err)
	}
	if u.ID != 3 {
		t.Errorf("First() = %+v, want id 3", u)
	}

	if _, err := repo.First(ctx, "status", "deleted", Options{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("First() with no match error = %v, want ErrNotFound", err)
	}
}

func TestRepository_DatabaseUnavailable(t *testing.T) {
	ctx := context.Background()

	t.Run("nil connector", func(t *testing.T) {
		repo := NewRepository[user](nil, users)
		u, _ := users.New(nil)
		if _, err := repo.Save(ctx, u); !errors.Is(err, ErrDatabaseUnavailable) {
			t.Errorf("Save() error = %v, want ErrDatabaseUnavailable", err)
		}
		if _, err := repo.Find(ctx, 1); !errors.Is(err, ErrDatabaseUnavailable) {
			t.Errorf("Find() error = %v, want ErrDatabaseUnavailable", err)
		}
	})

	t.Run("handle that cannot open", func(t *testing.T) {
		repo := NewRepository(database.NewHandle(database.Config{Driver: "informix"}), users)
		_, err := repo.Where(ctx, "status", "active", Options{})
		if !errors.Is(err, ErrDatabaseUnavailable) || !errors.Is(err, database.ErrDriverMissing) {
			t.Errorf("Where() error = %v, want ErrDatabaseUnavailable wrapping ErrDriverMissing", err)
		}
	})

	t.Run("closed handle", func(t *testing.T) {
		h := database.NewHandle(database.Config{Driver: "sqlite3", Path: filepath.Join(t.TempDir(), "x.db")})
		h.Close() //nolint:errcheck // Test setup
		repo := NewRepository(h, users)
		if _, err := repo.Find(ctx, 1); !errors.Is(err, database.ErrClosed) {
			t.Errorf("Find() error = %v, want ErrClosed", err)
		}
	})
}

func TestRepository_ObserverErrorIsLogged(t *testing.T) {
	log := &testLogger{}
	failing := ObserverFunc(func(context.Context, Event) error { return errors.New("broker down") })
	repo, _ := newUsersRepo(t, WithObserver(failing), WithLogger(log))

	u, _ := users.New(map[string]any{"name": "Ada"})
	if _, err := repo.Save(context.Background(), u); err != nil {
		t.Fatalf("Save() error = %v, observer failures must not fail the save", err)
	}
	if len(log.warns) != 1 {
		t.Errorf("logged %d warnings, want 1", len(log.warns))
	}
}

// epochUser stores timestamps as Unix seconds and a nullable time.
type epochUser struct {
	ID        int64      `db:"id"`
	Name      string     `db:"name"`
	CreatedAt int64      `db:"created_at"`
	UpdatedAt *time.Time `db:"updated_at"`
}

func TestRepository_TimestampShapes(t *testing.T) {
	db := openUsersDB(t)
	ctx := context.Background()
	repo := NewRepository(db, MustTable[epochUser]("users", "id"),
		WithClock(func() time.Time { return fixedNow }))

	u := &epochUser{Name: "Grace"}
	id, err := repo.Save(ctx, u)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if u.CreatedAt != fixedNow.Unix() || u.UpdatedAt != nil {
		t.Errorf("after insert = %+v, want created_at stamped and updated_at nil", u)
	}

	u.Name = "Grace Hopper"
	if _, err := repo.Save(ctx, u); err != nil {
		t.Fatalf("Save() update error = %v", err)
	}
	if u.UpdatedAt == nil || !u.UpdatedAt.Equal(fixedNow) {
		t.Errorf("UpdatedAt = %v, want %v", u.UpdatedAt, fixedNow)
	}

	got, err := repo.Find(ctx, id)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if got.Name != "Grace Hopper" || got.UpdatedAt == nil {
		t.Errorf("Find() = %+v", got)
	}
}

func ids(recs []*user) []int64 {
	out := make([]int64, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}
