// Package record provides a minimal Active Record layer over database/sql.
//
// A record type is a plain struct whose columns are declared with `db` tags.
// A Table binds the struct to its table name and integer primary key; the
// tagged columns form the allow-list used whenever a mapping crosses into the
// struct (construction from caller values, hydration from a row). Unknown keys
// are ignored at that boundary.
//
// A Repository executes the generated statements on a Connector, which is
// either an open *database.DB or a lazily opened *database.Handle:
//
//	type User struct {
//	    ID        int64     `db:"id"`
//	    Email     string    `db:"email"`
//	    Status    string    `db:"status"`
//	    CreatedAt time.Time `db:"created_at"`
//	    UpdatedAt time.Time `db:"updated_at"`
//	}
//
//	func (User) Defaults() map[string]any { return map[string]any{"status": "active"} }
//
//	var Users = record.MustTable[User]("users", "id")
//
//	repo := record.NewRepository(handle, Users)
//	u, _ := Users.New(map[string]any{"email": "ada@example.com"})
//	id, err := repo.Save(ctx, u)           // INSERT, assigns u.ID
//	u2, err := repo.Find(ctx, id)          // SELECT ... LIMIT 1
//	list, err := repo.Where(ctx, "status", "active", record.Options{Limit: 3})
//
// Identifiers (table, primary key, columns, ORDER BY terms) only ever come
// from the struct definition; values are always bound as parameters.
//
// # Thread Safety
//
// Table and Repository are immutable after construction and safe for
// concurrent use. Records themselves are plain values owned by the caller.
package record
