package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/beaconlabs/beacon/internal/service"
)

// AlertDispatcher sends pending alerts on an interval. The per-cycle send
// limit and per-campaign spacing live in the alert service; the dispatcher
// only supplies the cadence.
type AlertDispatcher struct {
	alerts    *service.AlertService
	interval  time.Duration
	sendLimit int
	stopCh    chan struct{}
	wg        sync.WaitGroup
	running   bool
	mu        sync.Mutex
}

// NewAlertDispatcher creates a new alert dispatcher runner
func NewAlertDispatcher(alerts *service.AlertService, interval time.Duration, sendLimit int) *AlertDispatcher {
	if interval == 0 {
		interval = time.Minute
	}
	if sendLimit <= 0 {
		sendLimit = 20
	}
	return &AlertDispatcher{
		alerts:    alerts,
		interval:  interval,
		sendLimit: sendLimit,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the dispatcher runner
func (d *AlertDispatcher) Start() {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return
	}
	d.running = true
	d.mu.Unlock()

	d.wg.Add(1)
	go d.run()
	slog.Info("alert dispatcher started",
		slog.Duration("interval", d.interval),
		slog.Int("send_limit", d.sendLimit),
	)
}

// Stop gracefully stops the dispatcher runner
func (d *AlertDispatcher) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	d.mu.Unlock()

	close(d.stopCh)
	d.wg.Wait()
	slog.Info("alert dispatcher stopped")
}

// run is the main loop
func (d *AlertDispatcher) run() {
	defer d.wg.Done()

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.dispatch()
		case <-d.stopCh:
			return
		}
	}
}

// dispatch runs one send cycle with a bounded timeout
func (d *AlertDispatcher) dispatch() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := d.RunOnce(ctx); err != nil {
		slog.Error("dispatch cycle failed", slog.String("error", err.Error()))
	}
}

// RunOnce runs one send cycle (for manual trigger or testing)
func (d *AlertDispatcher) RunOnce(ctx context.Context) error {
	result, err := d.alerts.SendAlerts(ctx, d.sendLimit)
	if err != nil {
		return err
	}
	if result.Sent > 0 || result.Skipped > 0 || result.Errors > 0 {
		slog.Info("dispatch cycle finished",
			slog.Int("sent", result.Sent),
			slog.Int("skipped", result.Skipped),
			slog.Int("errors", result.Errors),
		)
	}
	return nil
}

// IsRunning returns whether the runner is active
func (d *AlertDispatcher) IsRunning() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}
