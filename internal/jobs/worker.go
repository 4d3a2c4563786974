package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/beaconlabs/beacon/internal/service"
)

// JobWorker drains the job queue on an interval by running orchestrator
// cycles. Multiple workers may run against the same store; the claim step
// keeps them from processing the same job twice.
type JobWorker struct {
	orchestrator *service.Orchestrator
	interval     time.Duration
	maxJobs      int
	stopCh       chan struct{}
	wg           sync.WaitGroup
	running      bool
	mu           sync.Mutex
}

// NewJobWorker creates a new job worker runner
func NewJobWorker(orchestrator *service.Orchestrator, interval time.Duration, maxJobs int) *JobWorker {
	if interval == 0 {
		interval = time.Minute
	}
	if maxJobs <= 0 {
		maxJobs = 25
	}
	return &JobWorker{
		orchestrator: orchestrator,
		interval:     interval,
		maxJobs:      maxJobs,
		stopCh:       make(chan struct{}),
	}
}

// Start begins the worker runner
func (w *JobWorker) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	w.wg.Add(1)
	go w.run()
	slog.Info("job worker started",
		slog.Duration("interval", w.interval),
		slog.Int("max_jobs", w.maxJobs),
	)
}

// Stop gracefully stops the worker runner
func (w *JobWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	w.wg.Wait()
	slog.Info("job worker stopped")
}

// run is the main loop
func (w *JobWorker) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.process()
		case <-w.stopCh:
			return
		}
	}
}

// process runs one orchestrator cycle with a bounded timeout
func (w *JobWorker) process() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := w.RunOnce(ctx); err != nil {
		slog.Error("worker cycle failed", slog.String("error", err.Error()))
	}
}

// RunOnce runs one orchestrator cycle (for manual trigger or testing)
func (w *JobWorker) RunOnce(ctx context.Context) error {
	result, err := w.orchestrator.ProcessJobs(ctx, w.maxJobs)
	if err != nil {
		return err
	}
	if result.Processed > 0 || result.Reclaimed > 0 {
		slog.Info("worker cycle finished",
			slog.Int("processed", result.Processed),
			slog.Int("succeeded", result.Succeeded),
			slog.Int("retried", result.Retried),
			slog.Int("failed", result.Failed),
			slog.Int("reclaimed", result.Reclaimed),
			slog.Int("snapshots", result.Snapshots),
		)
	}
	return nil
}

// IsRunning returns whether the runner is active
func (w *JobWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
