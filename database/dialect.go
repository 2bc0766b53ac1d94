package database

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect renders the handful of statements the record layer needs.
//
// Table and column names are written into the SQL text verbatim, so callers
// must only pass identifiers from a fixed allow-list. Values are always bound
// through placeholders.
type Dialect interface {
	// Name returns the canonical driver name (mysql, postgres, sqlite3).
	Name() string

	// Placeholder returns the bind marker for the n-th argument (1-based).
	Placeholder(n int) string

	// Insert renders an INSERT of columns. When returning is true the
	// statement yields the generated key as a row instead of via
	// sql.Result.LastInsertId.
	Insert(table, pk string, columns []string) (query string, returning bool)

	// Update renders an UPDATE of columns for the row whose pk matches the
	// final argument.
	Update(table, pk string, columns []string) string

	// Select renders SELECT * filtered by equality on column. An empty
	// orderBy and a zero limit are omitted.
	Select(table, column, orderBy string, limit int) string
}

// Dialects for the supported drivers.
var (
	MySQL    Dialect = mysqlDialect{}
	Postgres Dialect = postgresDialect{}
	SQLite   Dialect = sqliteDialect{}
)

// DialectFor returns the dialect for a driver name or alias.
func DialectFor(driver string) (Dialect, error) {
	switch driverAliases[strings.ToLower(driver)] {
	case DriverMySQL:
		return MySQL, nil
	case DriverPostgres:
		return Postgres, nil
	case DriverSQLite:
		return SQLite, nil
	default:
		return nil, fmt.Errorf("%w: unknown driver %q", ErrDriverMissing, driver)
	}
}

type mysqlDialect struct{}

func (mysqlDialect) Name() string { return DriverMySQL }

func (mysqlDialect) Placeholder(int) string { return "?" }

func (d mysqlDialect) Insert(table, _ string, columns []string) (string, bool) {
	if len(columns) == 0 {
		return fmt.Sprintf("INSERT INTO %s () VALUES ()", table), false
	}
	return fmt.Sprintf("INSERT INTO %s SET %s", table, assignments(d, columns)), false
}

func (d mysqlDialect) Update(table, pk string, columns []string) string {
	return fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s LIMIT 1",
		table, assignments(d, columns), pk, d.Placeholder(len(columns)+1))
}

func (d mysqlDialect) Select(table, column, orderBy string, limit int) string {
	return selectQuery(d, table, column, orderBy, limit)
}

type sqliteDialect struct{}

func (sqliteDialect) Name() string { return DriverSQLite }

func (sqliteDialect) Placeholder(int) string { return "?" }

func (d sqliteDialect) Insert(table, _ string, columns []string) (string, bool) {
	return columnInsert(d, table, columns), false
}

// Update omits LIMIT: SQLite only accepts it when built with
// SQLITE_ENABLE_UPDATE_DELETE_LIMIT, and the pk match is unique anyway.
func (d sqliteDialect) Update(table, pk string, columns []string) string {
	return fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s",
		table, assignments(d, columns), pk, d.Placeholder(len(columns)+1))
}

func (d sqliteDialect) Select(table, column, orderBy string, limit int) string {
	return selectQuery(d, table, column, orderBy, limit)
}

type postgresDialect struct{}

func (postgresDialect) Name() string { return DriverPostgres }

func (postgresDialect) Placeholder(n int) string { return "$" + strconv.Itoa(n) }

// Insert uses RETURNING because pgx does not implement LastInsertId.
func (d postgresDialect) Insert(table, pk string, columns []string) (string, bool) {
	return columnInsert(d, table, columns) + " RETURNING " + pk, true
}

func (d postgresDialect) Update(table, pk string, columns []string) string {
	return fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s",
		table, assignments(d, columns), pk, d.Placeholder(len(columns)+1))
}

func (d postgresDialect) Select(table, column, orderBy string, limit int) string {
	return selectQuery(d, table, column, orderBy, limit)
}

// assignments renders "a = ?, b = ?" for columns.
func assignments(d Dialect, columns []string) string {
	set := make([]string, len(columns))
	for i, col := range columns {
		set[i] = fmt.Sprintf("%s = %s", col, d.Placeholder(i+1))
	}
	return strings.Join(set, ", ")
}

// columnInsert renders "INSERT INTO t (a, b) VALUES (?, ?)".
func columnInsert(d Dialect, table string, columns []string) string {
	if len(columns) == 0 {
		return fmt.Sprintf("INSERT INTO %s DEFAULT VALUES", table)
	}
	marks := make([]string, len(columns))
	for i := range columns {
		marks[i] = d.Placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), strings.Join(marks, ", "))
}

func selectQuery(d Dialect, table, column, orderBy string, limit int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT * FROM %s WHERE %s = %s", table, column, d.Placeholder(1))
	if orderBy != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(orderBy)
	}
	if limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", limit)
	}
	return b.String()
}
