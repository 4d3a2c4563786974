package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/beaconlabs/beacon/internal/service"
)

// PipelineTrigger runs the scheduled trigger cycle: complete expired
// campaigns first, then fan out jobs for the campaigns still active. The
// ordering guarantees a campaign that just expired never receives a fresh
// batch in the same cycle.
type PipelineTrigger struct {
	queue      *service.QueueService
	completion *service.CompletionService
	authState  *service.AuthStateService
	interval   time.Duration
	stopCh     chan struct{}
	wg         sync.WaitGroup
	running    bool
	mu         sync.Mutex
}

// NewPipelineTrigger creates a new pipeline trigger runner
func NewPipelineTrigger(queue *service.QueueService, completion *service.CompletionService, authState *service.AuthStateService, interval time.Duration) *PipelineTrigger {
	if interval == 0 {
		interval = 5 * time.Minute
	}
	return &PipelineTrigger{
		queue:      queue,
		completion: completion,
		authState:  authState,
		interval:   interval,
		stopCh:     make(chan struct{}),
	}
}

// Start begins the trigger runner
func (t *PipelineTrigger) Start() {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return
	}
	t.running = true
	t.mu.Unlock()

	t.wg.Add(1)
	go t.run()
	slog.Info("pipeline trigger started", slog.Duration("interval", t.interval))
}

// Stop gracefully stops the trigger runner
func (t *PipelineTrigger) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	t.mu.Unlock()

	close(t.stopCh)
	t.wg.Wait()
	slog.Info("pipeline trigger stopped")
}

// run is the main loop
func (t *PipelineTrigger) run() {
	defer t.wg.Done()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.trigger()
		case <-t.stopCh:
			return
		}
	}
}

// trigger runs one cycle with a bounded timeout
func (t *PipelineTrigger) trigger() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := t.RunOnce(ctx); err != nil {
		slog.Error("pipeline trigger cycle failed", slog.String("error", err.Error()))
	}
}

// RunOnce runs one trigger cycle (for manual trigger or testing)
func (t *PipelineTrigger) RunOnce(ctx context.Context) error {
	completion, err := t.completion.CheckAndCompleteCampaigns(ctx)
	if err != nil {
		return err
	}
	if completion.Completed > 0 || completion.Errors > 0 {
		slog.Info("completion sweep finished",
			slog.Int("completed", completion.Completed),
			slog.Int("errors", completion.Errors),
		)
	}

	// Opportunistic housekeeping; failure is not worth failing the cycle
	if t.authState != nil {
		if err := t.authState.PurgeExpired(ctx); err != nil {
			slog.Warn("auth state purge failed", slog.String("error", err.Error()))
		}
	}

	enqueued, errored := t.queue.FanOutActive(ctx)
	if enqueued > 0 || errored > 0 {
		slog.Info("campaign fan-out finished",
			slog.Int("jobs_enqueued", enqueued),
			slog.Int("campaign_errors", errored),
		)
	}
	return nil
}

// IsRunning returns whether the runner is active
func (t *PipelineTrigger) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}
