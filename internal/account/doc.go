// Package account is the example record model shipped with OpenCrate.
//
// A User is a plain struct whose `db` tags declare the columns of the users
// table. Users (a record.Table) maps it; Service adds validation and public
// reference generation on top of record.Repository.
//
// # Thread Safety
//
// Service is safe for concurrent use from multiple goroutines.
package account
