// Package database provides the connection handle used by OpenCrate records.
//
// This package manages:
//   - Connection configuration and DSN building for MySQL, PostgreSQL and SQLite
//   - SQL dialect differences (placeholders, INSERT form, generated keys)
//   - A lazily opened handle shared by every repository that holds it
//   - Health checks and lifecycle management
//
// Security Considerations:
//   - All values are bound as statement parameters (no SQL injection)
//   - Identifiers handed to a Dialect must come from a fixed allow-list
//   - SQLite database file permissions are set to 0600 (owner read/write only)
//
// Usage:
//
//	h := database.NewHandle(database.Config{
//	    Driver:   "mysql",
//	    Host:     "localhost",
//	    Name:     "app",
//	    User:     "app",
//	    Password: os.Getenv("OPENCRATE_DB_PASS"),
//	})
//	defer h.Close()
//
//	db, err := h.Connect(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(db.Dialect().Name())
package database
