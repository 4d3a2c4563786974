package database

// Atomic batch execution for Beacon.
//
// AtomicBatch accumulates statements and executes them wrapped in
// BEGIN TRANSACTION / COMMIT TRANSACTION, so they succeed or fail together.
// The dedup pass uses this to delete a duplicate group in one shot.
//
// Variables are namespaced per statement ($id -> $1_id) so statements from
// different call sites cannot collide.
//
// IMPORTANT: execution is BATCH-BASED. Statements accumulate and run together
// at Execute() time; there is no isolation between Add() calls.

import (
	"context"
	"fmt"
	"strings"
)

// AtomicBatch builds a set of statements executed atomically.
type AtomicBatch struct {
	statements []string
	vars       map[string]interface{}
	counter    int
}

// NewAtomicBatch creates an empty batch
func NewAtomicBatch() *AtomicBatch {
	return &AtomicBatch{
		statements: make([]string, 0),
		vars:       make(map[string]interface{}),
	}
}

// Add appends a statement to the batch, namespacing its variables to avoid
// collisions with variables from statements added earlier.
func (b *AtomicBatch) Add(query string, vars map[string]interface{}) {
	b.counter++
	rewritten := query
	for name, value := range vars {
		namespaced := fmt.Sprintf("%d_%s", b.counter, name)
		rewritten = strings.ReplaceAll(rewritten, "$"+name, "$"+namespaced)
		b.vars[namespaced] = value
	}
	b.statements = append(b.statements, rewritten)
}

// Len returns the number of statements accumulated so far
func (b *AtomicBatch) Len() int {
	return len(b.statements)
}

// Build assembles the transaction query and its merged variables
func (b *AtomicBatch) Build() (string, map[string]interface{}) {
	if len(b.statements) == 0 {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString("BEGIN TRANSACTION;\n")
	for _, stmt := range b.statements {
		sb.WriteString(stmt)
		if !strings.HasSuffix(strings.TrimSpace(stmt), ";") {
			sb.WriteString(";")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("COMMIT TRANSACTION;")

	return sb.String(), b.vars
}

// Execute runs the batch atomically. An empty batch is a no-op.
func (b *AtomicBatch) Execute(ctx context.Context, db Database) error {
	query, vars := b.Build()
	if query == "" {
		return nil
	}
	return db.Execute(ctx, query, vars)
}
