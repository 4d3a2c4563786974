// Package service implements business logic for the Beacon API.
//
// Services sit between HTTP handlers (and the background runners) and the
// repository layer. Each service takes its dependencies through a Config
// struct of interfaces, which keeps the wiring explicit and the tests cheap.
//
// # Pipeline Services
//
//   - QueueService: validates and enqueues jobs, fans campaigns out
//   - Orchestrator: claims due jobs and drains them under a concurrency cap
//   - AlertService: alert formation, deduplication, and rate-limited dispatch
//   - CompletionService: closes campaigns past their monitor window
//   - AuthStateService: store-backed OAuth handshake state
//
// # Collaborator Interfaces
//
// External systems are consumed through interfaces defined here:
//
//   - Scorer: opaque importance scoring
//   - Deliverer: outbound notification transport
//   - PlatformClient: social platform metrics and engagement ingestion
//   - Copywriter: optional alert copy generation
//
// # Error Handling
//
// All service errors are defined in errors.go. Batch operations isolate
// per-item failures: they count them in the returned stats instead of
// aborting, so one bad campaign or job never blocks the rest.
package service
