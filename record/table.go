package record

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/nerrad567/opencrate/database"
)

// Timestamp columns stamped by Repository.Save when a record declares them.
const (
	CreatedAtColumn = "created_at"
	UpdatedAtColumn = "updated_at"
)

// identPattern restricts table and column identifiers.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Defaulter is implemented by record types that supply default field values.
// Defaults are applied before caller values, so caller values win.
type Defaulter interface {
	Defaults() map[string]any
}

// column is one declared field of a record type.
type column struct {
	name  string
	index []int
	typ   reflect.Type
}

// Table describes how record type T maps onto a database table.
type Table[T any] struct {
	name    string
	pk      string
	columns []column
	byName  map[string]int
}

// Statement is a rendered SQL statement with its bound arguments.
type Statement struct {
	Query string
	Args  []any

	// ReturnsKey is set when the statement yields the generated key as a
	// result row (PostgreSQL RETURNING).
	ReturnsKey bool
}

// NewTable builds the table definition for T.
//
// Columns are the exported fields of T, named by their `db` tag (falling back
// to the lower-cased field name); `db:"-"` excludes a field. Embedded structs
// without a tag contribute their own fields.
//
// Parameters:
//   - name: Table name
//   - pk: Primary-key column; must be declared on T with an integer type
//
// Returns:
//   - *Table[T]: Immutable table definition
//   - error: ErrInvalidTable (wrapped) describing the problem
func NewTable[T any](name, pk string) (*Table[T], error) {
	rt := reflect.TypeFor[T]()
	if rt.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s is not a struct", ErrInvalidTable, rt)
	}
	if !identPattern.MatchString(name) {
		return nil, fmt.Errorf("%w: table name %q", ErrInvalidTable, name)
	}

	t := &Table[T]{
		name:   name,
		pk:     pk,
		byName: make(map[string]int),
	}
	if err := t.collect(rt, nil); err != nil {
		return nil, err
	}

	i, ok := t.byName[pk]
	if !ok {
		return nil, fmt.Errorf("%w: primary key %q is not a column of %s", ErrInvalidTable, pk, rt)
	}
	if !isInteger(t.columns[i].typ.Kind()) {
		return nil, fmt.Errorf("%w: primary key %q must be an integer, got %s", ErrInvalidTable, pk, t.columns[i].typ)
	}
	return t, nil
}

// MustTable is like NewTable but panics on error.
// Intended for package-level table declarations.
func MustTable[T any](name, pk string) *Table[T] {
	t, err := NewTable[T](name, pk)
	if err != nil {
		panic(err)
	}
	return t
}

// collect walks the struct fields of rt and registers columns.
func (t *Table[T]) collect(rt reflect.Type, prefix []int) error {
	for i := range rt.NumField() {
		f := rt.Field(i)
		index := append(append([]int(nil), prefix...), i)
		tag := strings.TrimSpace(strings.Split(f.Tag.Get("db"), ",")[0])

		if f.Anonymous && tag == "" && f.Type.Kind() == reflect.Struct && f.Type != timeType {
			if err := t.collect(f.Type, index); err != nil {
				return err
			}
			continue
		}
		if !f.IsExported() || tag == "-" {
			continue
		}

		name := tag
		if name == "" {
			name = strings.ToLower(f.Name)
		}
		if !identPattern.MatchString(name) {
			return fmt.Errorf("%w: column name %q", ErrInvalidTable, name)
		}
		if _, dup := t.byName[name]; dup {
			return fmt.Errorf("%w: duplicate column %q", ErrInvalidTable, name)
		}

		t.byName[name] = len(t.columns)
		t.columns = append(t.columns, column{name: name, index: index, typ: f.Type})
	}
	return nil
}

// Name returns the table name.
func (t *Table[T]) Name() string { return t.name }

// PrimaryKey returns the primary-key column name.
func (t *Table[T]) PrimaryKey() string { return t.pk }

// Columns returns the declared column names in struct order.
func (t *Table[T]) Columns() []string {
	out := make([]string, len(t.columns))
	for i, c := range t.columns {
		out[i] = c.name
	}
	return out
}

// Has reports whether name is a declared column.
func (t *Table[T]) Has(name string) bool {
	_, ok := t.byName[name]
	return ok
}

// New constructs a record from the type's defaults merged with initial.
// Keys that are not declared columns are ignored. No I/O is performed.
func (t *Table[T]) New(initial map[string]any) (*T, error) {
	rec := new(T)
	if d, ok := any(rec).(Defaulter); ok {
		if err := t.assign(rec, d.Defaults()); err != nil {
			return nil, err
		}
	}
	if err := t.assign(rec, initial); err != nil {
		return nil, err
	}
	return rec, nil
}

// Update merges fields into rec in place and returns rec for chaining.
// Empty input is a no-op; unknown keys are ignored. Either every field is
// applied or, on error, rec is left unchanged. Once rec is persisted its
// primary key may not be changed or cleared (ErrPrimaryKeyImmutable).
func (t *Table[T]) Update(rec *T, fields map[string]any) (*T, error) {
	if rec == nil {
		return nil, ErrNilRecord
	}
	if v, ok := fields[t.pk]; ok && t.Persisted(rec) {
		if err := t.checkKey(rec, v); err != nil {
			return rec, err
		}
	}
	if err := t.assign(rec, fields); err != nil {
		return rec, err
	}
	return rec, nil
}

// checkKey accepts v for the primary key of the persisted rec only when it
// converts to the key rec already has.
func (t *Table[T]) checkKey(rec *T, v any) error {
	current := t.ID(rec)
	f := reflect.New(t.pkColumn().typ).Elem()
	if err := setField(f, v); err != nil {
		return fmt.Errorf("%w: %s.%s: %w", ErrFieldType, t.name, t.pk, err)
	}

	var next int64
	if isUnsigned(f.Kind()) {
		next = int64(f.Uint()) //nolint:gosec // ids beyond MaxInt64 are not generated by any supported driver
	} else {
		next = f.Int()
	}
	if next != current {
		return fmt.Errorf("%w: %s.%s is %d", ErrPrimaryKeyImmutable, t.name, t.pk, current)
	}
	return nil
}

// Values returns the record's column values keyed by column name.
func (t *Table[T]) Values(rec *T) map[string]any {
	if rec == nil {
		return nil
	}
	rv := reflect.ValueOf(rec).Elem()
	out := make(map[string]any, len(t.columns))
	for _, c := range t.columns {
		out[c.name] = fieldValue(rv.FieldByIndex(c.index))
	}
	return out
}

// ID returns the primary key of rec; zero means the record was never saved.
func (t *Table[T]) ID(rec *T) int64 {
	if rec == nil {
		return 0
	}
	f := reflect.ValueOf(rec).Elem().FieldByIndex(t.pkColumn().index)
	if isUnsigned(f.Kind()) {
		return int64(f.Uint()) //nolint:gosec // ids beyond MaxInt64 are not generated by any supported driver
	}
	return f.Int()
}

// Persisted reports whether rec has a primary key.
func (t *Table[T]) Persisted(rec *T) bool {
	return t.ID(rec) != 0
}

// SaveStatement renders the statement Save would execute for rec: an INSERT
// when rec has no primary key, an UPDATE otherwise. It performs no I/O and
// does not stamp timestamp columns.
func (t *Table[T]) SaveStatement(d database.Dialect, rec *T) (Statement, error) {
	if rec == nil {
		return Statement{}, ErrNilRecord
	}

	rv := reflect.ValueOf(rec).Elem()
	cols := make([]string, 0, len(t.columns)-1)
	args := make([]any, 0, len(t.columns))
	for _, c := range t.columns {
		if c.name == t.pk {
			continue
		}
		cols = append(cols, c.name)
		args = append(args, fieldValue(rv.FieldByIndex(c.index)))
	}

	if !t.Persisted(rec) {
		query, returning := d.Insert(t.name, t.pk, cols)
		return Statement{Query: query, Args: args, ReturnsKey: returning}, nil
	}

	if len(cols) == 0 {
		return Statement{}, nil
	}
	args = append(args, t.ID(rec))
	return Statement{Query: d.Update(t.name, t.pk, cols), Args: args}, nil
}

// assign copies known keys of fields into rec, in column order. Values are
// converted on a copy of rec, which replaces rec only if all succeed.
func (t *Table[T]) assign(rec *T, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	scratch := *rec
	rv := reflect.ValueOf(&scratch).Elem()
	for _, c := range t.columns {
		val, ok := fields[c.name]
		if !ok {
			continue
		}
		if err := setField(rv.FieldByIndex(c.index), val); err != nil {
			return fmt.Errorf("%w: %s.%s: %w", ErrFieldType, t.name, c.name, err)
		}
	}
	*rec = scratch
	return nil
}

// setID stores a generated primary key on rec.
func (t *Table[T]) setID(rec *T, id int64) {
	f := reflect.ValueOf(rec).Elem().FieldByIndex(t.pkColumn().index)
	if isUnsigned(f.Kind()) {
		f.SetUint(uint64(id)) //nolint:gosec // generated ids are positive
		return
	}
	f.SetInt(id)
}

// stamp sets a timestamp column to now if rec declares it and returns a
// func that restores the previous value.
func (t *Table[T]) stamp(rec *T, name string, now time.Time) (restore func()) {
	i, ok := t.byName[name]
	if !ok {
		return func() {}
	}
	f := reflect.ValueOf(rec).Elem().FieldByIndex(t.columns[i].index)
	prev := reflect.New(f.Type()).Elem()
	prev.Set(f)
	restore = func() { f.Set(prev) }

	switch {
	case f.Type() == timeType:
		f.Set(reflect.ValueOf(now))
	case f.Kind() == reflect.Pointer && f.Type().Elem() == timeType:
		f.Set(reflect.ValueOf(&now))
	case isInteger(f.Kind()):
		_ = setField(f, now.Unix()) //nolint:errcheck // integer kinds always accept int64
	case f.Kind() == reflect.String:
		f.SetString(now.Format(time.DateTime))
	}
	return restore
}

func (t *Table[T]) pkColumn() column {
	return t.columns[t.byName[t.pk]]
}

// fieldValue returns a field's value as a statement argument.
// Nil pointers become NULL.
func fieldValue(f reflect.Value) any {
	if f.Kind() == reflect.Pointer && f.IsNil() {
		return nil
	}
	return f.Interface()
}
