// Package jobs implements the periodic runners for the Beacon pipeline.
//
// The pipeline's canonical entry points are the HTTP trigger endpoints,
// usually hit by an external scheduler. These runners cover single-binary
// deployments: each wraps one pipeline stage in a ticker loop.
//
// # Runners
//
//   - PipelineTrigger: completion check, then per-campaign job fan-out
//   - JobWorker: orchestrator runs draining the queue
//   - AlertDispatcher: rate-limited alert sending
//
// # Lifecycle
//
// All runners share the same shape:
//
//	trigger := jobs.NewPipelineTrigger(queueSvc, completionSvc, authStateSvc, interval)
//	trigger.Start()
//	defer trigger.Stop()
//
// Errors inside a tick are logged and never crash the process; each tick is
// independent of the last.
package jobs
