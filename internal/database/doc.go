// Package database wraps the SurrealDB client behind a small Database
// interface so repositories and tests can swap the backing store.
//
// Query returns the raw statement frames of a multi-statement query,
// QueryOne unwraps a single row (or ErrNotFound), and Execute runs a
// statement for its side effects. Sentinel errors classify failures:
// ErrNotFound, ErrDuplicate, ErrConnection and ErrQuery.
//
//	db := database.NewSurrealDB(database.Config{Host: "localhost", Port: "8000"})
//	if err := db.Connect(ctx); err != nil { ... }
//	defer db.Close()
package database
