// Package dialect provides database dialect abstraction for the exocore runtime.
//
// It defines the interfaces and name constants used for database-specific
// operations, allowing the runtime to target multiple Postgres-compatible and
// non-Postgres backends through the same abstract SQL lowering contract.
package dialect

import "context"

// Supported dialect names.
const (
	Postgres = "postgres"
	MySQL    = "mysql"
	SQLite   = "sqlite3"
)

// Driver is the interface every dialect-specific connection must implement.
type Driver interface {
	// Exec executes a query that doesn't return records, e.g. insert, update, delete.
	Exec(ctx context.Context, query string, args, v any) error
	// Query executes a query that returns records, e.g. select.
	Query(ctx context.Context, query string, args, v any) error
	// Tx starts a new transaction from the driver's current session.
	Tx(ctx context.Context) (Tx, error)
	// Close closes the underlying connection.
	Close() error
	// Dialect returns the name of the dialect this driver is configured for.
	Dialect() string
}

// Tx is the interface that wraps a transaction. It augments Driver with commit
// and rollback operations and is scoped to a single underlying connection.
type Tx interface {
	Driver
	// Commit commits the transaction.
	Commit() error
	// Rollback rolls back the transaction.
	Rollback() error
}

// ExecQuerier wraps the methods shared by Driver and Tx that don't deal with
// transaction lifecycle.
type ExecQuerier interface {
	Exec(ctx context.Context, query string, args, v any) error
	Query(ctx context.Context, query string, args, v any) error
}
