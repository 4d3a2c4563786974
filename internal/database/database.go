package database

import (
	"context"
	"errors"
)

// Sentinel errors for store operations; check with errors.Is.
var (
	ErrNotFound   = errors.New("record not found")
	ErrDuplicate  = errors.New("duplicate record")
	ErrConnection = errors.New("database connection error")
	ErrQuery      = errors.New("query error")
)

// Database is the store surface the repositories are written against.
//
// Query returns the raw statement frames; QueryOne unwraps a single row and
// maps an empty result to ErrNotFound; Execute discards any rows.
//
// The queue's claim path relies on single-statement conditional updates
// (UPDATE ... WHERE status = 'pending' ... RETURN AFTER): SurrealDB runs
// each statement atomically, which is the compare-and-set the claim needs.
// Multi-statement atomicity goes through AtomicBatch in transaction.go.
type Database interface {
	Connect(ctx context.Context) error
	Close() error
	Ping(ctx context.Context) error

	Query(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error)
	QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error)
	Execute(ctx context.Context, query string, vars map[string]interface{}) error
}

// Config holds the SurrealDB connection parameters
type Config struct {
	Host      string
	Port      string
	User      string
	Password  string
	Namespace string
	Database  string
}
