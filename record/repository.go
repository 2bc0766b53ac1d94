package record

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/opencrate/database"
)

// errNoGeneratedID is wrapped in ErrSaveFailed when an INSERT reports no key.
var errNoGeneratedID = errors.New("insert returned no generated identifier")

// fetchLimit is the row cap used when exactly one match is required: a
// second row proves the lookup ambiguous.
const fetchLimit = 2

// Connector yields the connection a Repository executes on.
// Both *database.DB and *database.Handle implement it.
type Connector interface {
	Connect(ctx context.Context) (*database.DB, error)
}

// Repository executes save and lookup statements for record type T.
type Repository[T any] struct {
	conn  Connector
	table *Table[T]
	settings
}

// NewRepository binds table to conn.
func NewRepository[T any](conn Connector, table *Table[T], opts ...Option) *Repository[T] {
	r := &Repository[T]{
		conn:  conn,
		table: table,
		settings: settings{
			now: func() time.Time { return time.Now().UTC() },
		},
	}
	for _, opt := range opts {
		opt(&r.settings)
	}
	return r
}

// Table returns the table definition the repository works on.
func (r *Repository[T]) Table() *Table[T] {
	return r.table
}

// Save writes rec to the database.
//
// A record without a primary key is INSERTed: created_at is stamped when
// declared, every non-key column is written, and the generated identifier
// is stored on rec and returned. A record with a primary key is UPDATEd:
// updated_at is stamped when declared and every non-key column is written to
// the matching row. The primary key is returned.
//
// An UPDATE that matches no row fails with ErrSaveFailed wrapping ErrNotFound
// (MySQL connections report matched rather than changed rows, so an
// unchanged row still counts). When Save fails the timestamp it stamped is
// restored on rec.
//
// Returns:
//   - int64: The record's primary key
//   - error: ErrDatabaseUnavailable or ErrSaveFailed (wrapped)
func (r *Repository[T]) Save(ctx context.Context, rec *T) (int64, error) {
	if rec == nil {
		return 0, ErrNilRecord
	}
	db, err := r.db(ctx)
	if err != nil {
		return 0, err
	}

	save, column := r.update, UpdatedAtColumn
	if !r.table.Persisted(rec) {
		save, column = r.insert, CreatedAtColumn
	}

	restore := r.table.stamp(rec, column, r.now())
	id, err := save(ctx, db, rec)
	if err != nil {
		restore()
		return 0, err
	}
	return id, nil
}

func (r *Repository[T]) insert(ctx context.Context, db *database.DB, rec *T) (int64, error) {
	stmt, err := r.table.SaveStatement(db.Dialect(), rec)
	if err != nil {
		return 0, err
	}

	start := time.Now()
	var id int64
	if stmt.ReturnsKey {
		err = db.QueryRowContext(ctx, stmt.Query, stmt.Args...).Scan(&id)
	} else {
		res, execErr := db.ExecContext(ctx, stmt.Query, stmt.Args...)
		if execErr == nil {
			id, err = res.LastInsertId()
		} else {
			err = execErr
		}
	}
	if err == nil && id == 0 {
		err = errNoGeneratedID
	}

	ev := Event{Table: r.table.name, Op: OpInsert, Duration: time.Since(start)}
	if err != nil {
		ev.Err = fmt.Errorf("%w: %s: %w", ErrSaveFailed, r.table.name, err)
		r.observe(ctx, stmt.Query, ev)
		return 0, ev.Err
	}

	r.table.setID(rec, id)
	ev.ID, ev.Rows = id, 1
	r.observe(ctx, stmt.Query, ev)
	return id, nil
}

func (r *Repository[T]) update(ctx context.Context, db *database.DB, rec *T) (int64, error) {
	id := r.table.ID(rec)
	stmt, err := r.table.SaveStatement(db.Dialect(), rec)
	if err != nil {
		return 0, err
	}
	if stmt.Query == "" {
		return id, nil // nothing but the key to write
	}

	start := time.Now()
	res, err := db.ExecContext(ctx, stmt.Query, stmt.Args...)
	ev := Event{Table: r.table.name, Op: OpUpdate, ID: id, Duration: time.Since(start)}
	if err != nil {
		ev.Err = fmt.Errorf("%w: %s %d: %w", ErrSaveFailed, r.table.name, id, err)
		r.observe(ctx, stmt.Query, ev)
		return 0, ev.Err
	}
	if n, rowsErr := res.RowsAffected(); rowsErr == nil {
		ev.Rows = n
		if n == 0 {
			ev.Err = fmt.Errorf("%w: %s %d: %w", ErrSaveFailed, r.table.name, id, ErrNotFound)
			r.observe(ctx, stmt.Query, ev)
			return 0, ev.Err
		}
	}
	r.observe(ctx, stmt.Query, ev)
	return id, nil
}

// Find returns the record whose primary key equals id.
//
// Returns:
//   - *T: The hydrated record
//   - error: ErrNotFound unless exactly one row matched, ErrDatabaseUnavailable,
//     or a wrapped query error
func (r *Repository[T]) Find(ctx context.Context, id any) (*T, error) {
	recs, err := r.fetch(ctx, OpFind, r.table.pk, id, "", fetchLimit)
	if err != nil {
		return nil, err
	}
	if len(recs) != 1 {
		return nil, fmt.Errorf("%w: %s %s = %v", ErrNotFound, r.table.name, r.table.pk, id)
	}
	return recs[0], nil
}

// Where returns the records whose field equals value, in database order
// unless opts.OrderBy is set. The result is empty, never nil, when nothing
// matches.
func (r *Repository[T]) Where(ctx context.Context, field string, value any, opts Options) ([]*T, error) {
	orderBy, err := r.validate(field, opts)
	if err != nil {
		return nil, err
	}
	return r.fetch(ctx, OpWhere, field, value, orderBy, opts.Limit)
}

// First is the single-record form of Where. ErrNotFound is returned unless
// exactly one row came back. Without an explicit limit First fetches up to
// two rows, so several matching rows also yield ErrNotFound.
func (r *Repository[T]) First(ctx context.Context, field string, value any, opts Options) (*T, error) {
	orderBy, err := r.validate(field, opts)
	if err != nil {
		return nil, err
	}
	limit := opts.Limit
	if limit == 0 {
		limit = fetchLimit
	}

	recs, err := r.fetch(ctx, OpWhere, field, value, orderBy, limit)
	if err != nil {
		return nil, err
	}
	if len(recs) != 1 {
		return nil, fmt.Errorf("%w: %s %s = %v (%d rows)", ErrNotFound, r.table.name, field, value, len(recs))
	}
	return recs[0], nil
}

// validate checks a lookup field and options against the table.
func (r *Repository[T]) validate(field string, opts Options) (string, error) {
	if !r.table.Has(field) {
		return "", fmt.Errorf("%w: %s.%s", ErrUnknownField, r.table.name, field)
	}
	if opts.Limit < 0 {
		return "", fmt.Errorf("%w: limit %d", ErrInvalidOptions, opts.Limit)
	}
	return r.table.orderBy(opts.OrderBy)
}

// fetch runs SELECT * filtered on column and hydrates every row.
func (r *Repository[T]) fetch(ctx context.Context, op Op, column string, value any, orderBy string, limit int) ([]*T, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Dialect().Select(r.table.name, column, orderBy, limit)
	start := time.Now()
	recs, err := r.query(ctx, db, query, value)

	ev := Event{Table: r.table.name, Op: op, Rows: int64(len(recs)), Duration: time.Since(start), Err: err}
	if op == OpFind && len(recs) == 1 {
		ev.ID = r.table.ID(recs[0])
	}
	r.observe(ctx, query, ev)

	if err != nil {
		return nil, err
	}
	return recs, nil
}

// query executes a SELECT and hydrates the rows through Table.New.
func (r *Repository[T]) query(ctx context.Context, db *database.DB, query string, args ...any) ([]*T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", r.table.name, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading %s columns: %w", r.table.name, err)
	}

	recs := make([]*T, 0)
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", r.table.name, err)
		}

		row := make(map[string]any, len(cols))
		for i, c := range cols {
			row[c] = vals[i]
		}
		rec, err := r.table.New(row)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s rows: %w", r.table.name, err)
	}
	return recs, nil
}

// db resolves the connection for one operation.
func (r *Repository[T]) db(ctx context.Context) (*database.DB, error) {
	if r.conn == nil {
		return nil, ErrDatabaseUnavailable
	}
	db, err := r.conn.Connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatabaseUnavailable, err)
	}
	return db, nil
}

// observe logs the statement and notifies observers.
func (r *Repository[T]) observe(ctx context.Context, query string, ev Event) {
	if r.logger != nil {
		r.logger.Debug("record statement",
			"table", ev.Table,
			"op", string(ev.Op),
			"query", query,
			"rows", ev.Rows,
			"duration", ev.Duration,
			"error", ev.Err,
		)
	}
	for _, o := range r.observers {
		if err := o.Observe(ctx, ev); err != nil && r.logger != nil {
			r.logger.Warn("record observer failed",
				"table", ev.Table,
				"op", string(ev.Op),
				"error", err,
			)
		}
	}
}
