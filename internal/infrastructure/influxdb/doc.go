// Package influxdb provides InfluxDB connectivity for OpenCrate.
//
// It wraps the official influxdb-client-go v2 library for connection
// management, batched point writes and health monitoring, and provides
// StatementRecorder, a record.Observer that turns every executed statement
// into a point.
//
// # Measurement
//
//	record_statements,table=users,op=insert,status=ok duration_ms=1.2,rows=1i
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil && !errors.Is(err, influxdb.ErrDisabled) {
//	    return err
//	}
//	defer client.Close()
//
//	users := record.NewRepository(handle, account.Users,
//	    record.WithObserver(influxdb.NewStatementRecorder(client)))
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write failures are delivered asynchronously through SetOnError.
// Connection and health check errors are returned directly.
package influxdb
