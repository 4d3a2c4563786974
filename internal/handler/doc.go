// Package handler implements the HTTP request handlers for the Beacon API.
//
// The surface is operational rather than CRUD: trigger endpoints run one
// pipeline cycle synchronously and report its stats, so an external scheduler
// (cron, Cloud Scheduler) can drive the pipeline with plain POSTs.
//
// Handlers follow a consistent pattern:
//
//   - Decode and validate input (DecodeJSON rejects unknown fields)
//   - Call the service layer
//   - Map service errors to RFC 9457 problem details (MapServiceError)
//   - Write the response (WriteData / WriteError)
//
// A cycle that ran but had per-item failures still returns 200 with the
// failure counters embedded; error statuses are reserved for cycles that
// could not run at all.
package handler
