// Package audit keeps a trail of record writes in the audit_logs table.
//
// Trail is a record.Observer: registered on a repository it stores one
// AuditLog per successful insert or update, itself persisted through the
// record package. Reads, failed statements and writes to audit_logs are
// not recorded.
//
// Usage:
//
//	trail := audit.NewTrail(handle, "cli")
//	users := record.NewRepository(handle, account.Users, record.WithObserver(trail))
//
//	logs, err := trail.List(ctx, "users", 20)
package audit
