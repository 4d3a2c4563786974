// Package repository provides data access for the Beacon API.
//
// Each repository wraps the database.Database interface with typed methods
// for one entity. Queries are written in SurrealQL with $variable bindings;
// row parsing goes through the shared helpers in helpers.go.
//
// # Ownership
//
//   - JobRepository exclusively owns the job lifecycle
//   - AlertRepository is written only by the alert formation service
//   - EngagementRepository is read-only (ingestion owns engagements)
//
// # Atomicity
//
// State transitions that must be exclusive (job claims, campaign completion,
// auth state consumption) are expressed as single conditional statements
// (UPDATE ... WHERE, DELETE ... WHERE ... RETURN BEFORE) so the store
// arbitrates races, not the process.
package repository
