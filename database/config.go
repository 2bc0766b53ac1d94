package database

import (
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// Driver names understood by Config.Driver.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Connection defaults applied by withDefaults.
const (
	defaultDriver  = DriverMySQL
	defaultHost    = "localhost"
	defaultCharset = "utf8"

	defaultMySQLPort    = 3306
	defaultPostgresPort = 5432

	// msPerSecond converts seconds to milliseconds.
	msPerSecond = 1000
)

// driverAliases maps accepted driver spellings to a canonical driver name.
var driverAliases = map[string]string{
	"mysql":      DriverMySQL,
	"mariadb":    DriverMySQL,
	"postgres":   DriverPostgres,
	"postgresql": DriverPostgres,
	"pgsql":      DriverPostgres,
	"pgx":        DriverPostgres,
	"sqlite":     DriverSQLite,
	"sqlite3":    DriverSQLite,
}

// sqlDriverNames maps canonical driver names to database/sql registrations.
var sqlDriverNames = map[string]string{
	DriverMySQL:    "mysql",
	DriverPostgres: "pgx",
	DriverSQLite:   "sqlite3",
}

// Config contains database connection settings.
// These map to the database section of config.yaml.
type Config struct {
	// Driver selects the database type: mysql, postgres or sqlite3.
	// Default: "mysql"
	Driver string

	// Host is the database server host. Default: "localhost"
	Host string

	// Port is the database server port. Zero selects the driver default.
	Port int

	// Name is the database (schema) name. Required for network drivers.
	Name string

	// Charset is the connection character set. Default: "utf8"
	Charset string

	// User and Password are the connection credentials.
	// User is required for network drivers; Password may be empty.
	User     string
	Password string

	// Path is the SQLite database file. Required for sqlite3.
	Path string

	// BusyTimeout is the SQLite lock wait time in seconds.
	BusyTimeout int

	// WALMode enables SQLite Write-Ahead Logging.
	WALMode bool

	// MaxOpenConns caps the pool. Zero selects 1 for SQLite and 10 otherwise.
	MaxOpenConns int
}

// withDefaults returns a copy of c with empty settings filled in.
func (c Config) withDefaults() Config {
	if c.Driver == "" {
		c.Driver = defaultDriver
	}
	if canonical, ok := driverAliases[strings.ToLower(c.Driver)]; ok {
		c.Driver = canonical
	}
	if c.Host == "" {
		c.Host = defaultHost
	}
	if c.Charset == "" {
		c.Charset = defaultCharset
	}
	if c.Port == 0 {
		switch c.Driver {
		case DriverMySQL:
			c.Port = defaultMySQLPort
		case DriverPostgres:
			c.Port = defaultPostgresPort
		}
	}
	if c.MaxOpenConns == 0 {
		if c.Driver == DriverSQLite {
			c.MaxOpenConns = 1
		} else {
			c.MaxOpenConns = 10
		}
	}
	return c
}

// Validate checks that the driver is available and that the settings it
// needs are present.
//
// Returns:
//   - error: wraps ErrDriverMissing or ErrConfigIncomplete, or nil if valid
func (c Config) Validate() error {
	c = c.withDefaults()

	sqlName, ok := sqlDriverNames[c.Driver]
	if !ok {
		return fmt.Errorf("%w: unknown driver %q", ErrDriverMissing, c.Driver)
	}
	if !slices.Contains(sql.Drivers(), sqlName) {
		return fmt.Errorf("%w: %s is not registered", ErrDriverMissing, sqlName)
	}

	var missing []string
	if c.Driver == DriverSQLite {
		if c.Path == "" {
			missing = append(missing, "path")
		}
	} else {
		if c.Name == "" {
			missing = append(missing, "name")
		}
		if c.User == "" {
			missing = append(missing, "user")
		}
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port must be between 1 and 65535", ErrConfigIncomplete)
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s required for %s", ErrConfigIncomplete, strings.Join(missing, ", "), c.Driver)
	}
	return nil
}

// inMemory reports whether cfg names an in-memory SQLite database.
func (c Config) inMemory() bool {
	if c.withDefaults().Driver != DriverSQLite {
		return false
	}
	return c.Path == ":memory:" || strings.Contains(c.Path, "mode=memory")
}

// DSN returns the driver-specific connection string.
// Call Validate first; DSN does not report missing settings.
func (c Config) DSN() string {
	c = c.withDefaults()

	switch c.Driver {
	case DriverSQLite:
		// See: https://github.com/mattn/go-sqlite3#connection-string
		dsn := fmt.Sprintf("file:%s?_busy_timeout=%d&_foreign_keys=on",
			c.Path,
			c.BusyTimeout*msPerSecond,
		)
		if c.WALMode {
			dsn += "&_journal_mode=WAL&_synchronous=NORMAL"
		}
		return dsn

	case DriverPostgres:
		q := url.Values{}
		q.Set("client_encoding", postgresEncoding(c.Charset))
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(c.User, c.Password),
			Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
			Path:     "/" + c.Name,
			RawQuery: q.Encode(),
		}
		return u.String()

	default:
		mc := mysql.NewConfig()
		mc.User = c.User
		mc.Passwd = c.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
		mc.DBName = c.Name
		mc.ParseTime = true
		// Report matched rather than changed rows so an UPDATE that leaves
		// a row unchanged is not mistaken for a missing row.
		mc.ClientFoundRows = true
		mc.Params = map[string]string{"charset": c.Charset}
		return mc.FormatDSN()
	}
}

// postgresEncoding translates MySQL-style charset names to PostgreSQL ones.
func postgresEncoding(charset string) string {
	switch strings.ToLower(charset) {
	case "utf8", "utf8mb4", "utf-8":
		return "UTF8"
	default:
		return strings.ToUpper(charset)
	}
}
