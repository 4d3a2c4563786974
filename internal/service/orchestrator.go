package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/beaconlabs/beacon/internal/database"
	"github.com/beaconlabs/beacon/internal/model"
)

// Orchestrator drains the job queue in bounded batches. One invocation
// reclaims stale claims, claims up to maxJobs due jobs, runs them through a
// worker pool capped at Concurrency handlers, and records every outcome back
// to the job store. The store's conditional claim is the only arbiter of job
// ownership; nothing in memory survives between invocations.
type Orchestrator struct {
	jobRepo      JobStore
	postRepo     PostStore
	snapshotRepo SnapshotStore
	platform     PlatformClient
	alerts       *AlertService

	concurrency       int
	staleClaimTimeout time.Duration
	softDeadline      time.Duration
	now               func() time.Time
}

// OrchestratorConfig holds configuration for the orchestrator
type OrchestratorConfig struct {
	JobRepo      JobStore
	PostRepo     PostStore
	SnapshotRepo SnapshotStore
	Platform     PlatformClient
	Alerts       *AlertService

	Concurrency       int           // Simultaneous handlers (default 5)
	StaleClaimTimeout time.Duration // Requeue processing jobs older than this (default 10m)
	SoftDeadline      time.Duration // Stop claiming new jobs this long after start (default 55s)
	Now               func() time.Time
}

// NewOrchestrator creates a new worker orchestrator
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 5
	}
	staleClaimTimeout := cfg.StaleClaimTimeout
	if staleClaimTimeout == 0 {
		staleClaimTimeout = 10 * time.Minute
	}
	softDeadline := cfg.SoftDeadline
	if softDeadline == 0 {
		softDeadline = 55 * time.Second
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Orchestrator{
		jobRepo:           cfg.JobRepo,
		postRepo:          cfg.PostRepo,
		snapshotRepo:      cfg.SnapshotRepo,
		platform:          cfg.Platform,
		alerts:            cfg.Alerts,
		concurrency:       concurrency,
		staleClaimTimeout: staleClaimTimeout,
		softDeadline:      softDeadline,
		now:               now,
	}
}

// ProcessResult reports one orchestrator run
type ProcessResult struct {
	Processed int `json:"processed"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Retried   int `json:"retried"`
	Reclaimed int `json:"reclaimed"`
	Snapshots int `json:"snapshots"`
}

// metricsBatch tracks in-flight metrics-refresh jobs per campaign so the run
// can tell when a campaign's whole metrics batch completed
type metricsBatch struct {
	total     int
	succeeded int
}

// ProcessJobs claims and resolves up to maxJobs due jobs. Individual handler
// failures feed the retry transition and never abort the batch; the run stops
// claiming as it approaches its soft deadline and returns partial stats.
func (o *Orchestrator) ProcessJobs(ctx context.Context, maxJobs int) (*ProcessResult, error) {
	if maxJobs <= 0 {
		return nil, ErrMaxJobsRequired
	}

	result := &ProcessResult{}
	started := o.now()
	deadline := started.Add(o.softDeadline)

	// Crash recovery: processing jobs nobody touched past the liveness
	// timeout lost their worker and go back to pending.
	reclaimed, err := o.jobRepo.ReclaimStale(ctx, started.Add(-o.staleClaimTimeout))
	if err != nil {
		slog.Error("stale claim reclaim failed", slog.String("error", err.Error()))
	} else if reclaimed > 0 {
		slog.Warn("reclaimed stale jobs", slog.Int("count", reclaimed))
		result.Reclaimed = reclaimed
	}

	claimed, err := o.claimBatch(ctx, maxJobs, deadline)
	if err != nil {
		return nil, err
	}
	if len(claimed) == 0 {
		return result, nil
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		sem     = make(chan struct{}, o.concurrency)
		metrics = make(map[string]*metricsBatch)
	)

	for _, job := range claimed {
		if job.Kind == model.JobKindMetricsRefresh {
			batch := metrics[job.CampaignID]
			if batch == nil {
				batch = &metricsBatch{}
				metrics[job.CampaignID] = batch
			}
			batch.total++
		}
	}

	for _, job := range claimed {
		wg.Add(1)
		sem <- struct{}{}
		go func(job *model.Job) {
			defer wg.Done()
			defer func() { <-sem }()

			handlerErr := o.runHandler(ctx, job)

			mu.Lock()
			defer mu.Unlock()
			result.Processed++

			if handlerErr == nil {
				if err := o.jobRepo.MarkCompleted(ctx, job.ID); err != nil {
					slog.Error("failed to mark job completed",
						slog.String("job_id", job.ID),
						slog.String("error", err.Error()),
					)
					result.Failed++
					return
				}
				result.Succeeded++
				if job.Kind == model.JobKindMetricsRefresh {
					metrics[job.CampaignID].succeeded++
				}
				return
			}

			o.resolveFailure(ctx, job, handlerErr, result)
		}(job)
	}
	wg.Wait()

	// Cross-job coordination point: once every metrics-refresh job claimed
	// for a campaign in this cycle completed, roll the campaign up into an
	// hourly snapshot (unless this hour already has one).
	for campaignID, batch := range metrics {
		if batch.total == 0 || batch.succeeded != batch.total {
			continue
		}
		created, err := o.createSnapshot(ctx, campaignID)
		if err != nil {
			slog.Error("snapshot creation failed",
				slog.String("campaign_id", campaignID),
				slog.String("error", err.Error()),
			)
			continue
		}
		if created {
			result.Snapshots++
		}
	}

	slog.Info("orchestrator run finished",
		slog.Int("processed", result.Processed),
		slog.Int("succeeded", result.Succeeded),
		slog.Int("failed", result.Failed),
		slog.Int("retried", result.Retried),
		slog.Duration("elapsed", o.now().Sub(started)),
	)
	return result, nil
}

// claimBatch claims due jobs one at a time, oldest first, until maxJobs are
// held, the queue is exhausted, or the soft deadline approaches. A claim
// lost to a concurrent worker is skipped, not an error.
func (o *Orchestrator) claimBatch(ctx context.Context, maxJobs int, deadline time.Time) ([]*model.Job, error) {
	claimed := make([]*model.Job, 0, maxJobs)

	for len(claimed) < maxJobs {
		if ctx.Err() != nil || o.now().After(deadline) {
			slog.Warn("stopping claim phase at soft deadline", slog.Int("claimed", len(claimed)))
			break
		}

		due, err := o.jobRepo.FindDue(ctx, maxJobs-len(claimed))
		if err != nil {
			return nil, err
		}
		if len(due) == 0 {
			break
		}

		progress := false
		for _, candidate := range due {
			if len(claimed) >= maxJobs {
				break
			}
			job, err := o.claimOne(ctx, candidate.ID)
			if err != nil {
				if errors.Is(err, ErrClaimLost) {
					continue
				}
				return nil, err
			}
			claimed = append(claimed, job)
			progress = true
		}
		if !progress {
			break
		}
	}

	return claimed, nil
}

// claimOne attempts an exclusive claim. A candidate that vanished between
// FindDue and Claim went to a concurrent worker; that comes back as
// ErrClaimLost so callers can skip it without treating it as a store failure.
func (o *Orchestrator) claimOne(ctx context.Context, id string) (*model.Job, error) {
	job, err := o.jobRepo.Claim(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrClaimLost
		}
		return nil, err
	}
	return job, nil
}

// runHandler dispatches a claimed job to its kind's handler. Panics are
// contained per job and surface as handler errors.
func (o *Orchestrator) runHandler(ctx context.Context, job *model.Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()

	switch job.Kind {
	case model.JobKindMetricsRefresh:
		return o.handleMetricsRefresh(ctx, job)
	case model.JobKindEngagerDiscovery:
		return o.handleEngagerDiscovery(ctx, job)
	case model.JobKindAlertFormation:
		return o.handleAlertFormation(ctx, job)
	case model.JobKindSnapshot:
		_, err := o.createSnapshot(ctx, job.CampaignID)
		return err
	default:
		return fmt.Errorf("%w: %q", ErrInvalidJobKind, job.Kind)
	}
}

func (o *Orchestrator) handleMetricsRefresh(ctx context.Context, job *model.Job) error {
	post, err := o.postRepo.GetByID(ctx, job.Payload.PostID)
	if err != nil {
		return err
	}
	if post == nil {
		return fmt.Errorf("tracked post %s no longer exists", job.Payload.PostID)
	}

	metrics, err := o.platform.FetchMetrics(ctx, post)
	if err != nil {
		return fmt.Errorf("fetch metrics for %s: %w", post.RemoteID, err)
	}
	return o.postRepo.UpdateMetrics(ctx, post.ID, metrics)
}

func (o *Orchestrator) handleEngagerDiscovery(ctx context.Context, job *model.Job) error {
	post, err := o.postRepo.GetByID(ctx, job.Payload.PostID)
	if err != nil {
		return err
	}
	if post == nil {
		return fmt.Errorf("tracked post %s no longer exists", job.Payload.PostID)
	}

	pulled, err := o.platform.PullEngagements(ctx, post)
	if err != nil {
		return fmt.Errorf("pull engagements for %s: %w", post.RemoteID, err)
	}
	if pulled > 0 {
		slog.Debug("engagements discovered",
			slog.String("post_id", post.ID),
			slog.Int("count", pulled),
		)
	}
	return nil
}

func (o *Orchestrator) handleAlertFormation(ctx context.Context, job *model.Job) error {
	if _, err := o.alerts.FormAlerts(ctx, job.CampaignID); err != nil {
		return err
	}
	_, err := o.alerts.Dedup(ctx, job.CampaignID)
	return err
}

// createSnapshot rolls the campaign's tracked posts up into an hourly
// snapshot. The (campaign, hour) existence check makes repeated calls within
// the same clock hour produce exactly one stored snapshot.
func (o *Orchestrator) createSnapshot(ctx context.Context, campaignID string) (bool, error) {
	hour := model.SnapshotHour(o.now())
	exists, err := o.snapshotRepo.ExistsForHour(ctx, campaignID, hour)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	posts, err := o.postRepo.ListByCampaign(ctx, campaignID)
	if err != nil {
		return false, err
	}

	snap := &model.MetricSnapshot{
		CampaignID: campaignID,
		HourBucket: hour,
	}
	for _, post := range posts {
		snap.TotalReplies += post.Replies
		snap.TotalReposts += post.Reposts
		snap.TotalQuotes += post.Quotes
		snap.TotalLikes += post.Likes
	}
	snap.TotalEngagements = snap.TotalReplies + snap.TotalReposts + snap.TotalQuotes

	if err := o.snapshotRepo.Create(ctx, snap); err != nil {
		return false, err
	}
	return true, nil
}

// resolveFailure feeds a handler failure into the retry state machine:
// transient failures back off exponentially, exhausted budgets go terminal.
// Callers hold the stats mutex.
func (o *Orchestrator) resolveFailure(ctx context.Context, job *model.Job, handlerErr error, result *ProcessResult) {
	if job.RetryCount < job.MaxRetries {
		nextCount := job.RetryCount + 1
		retryAfter := o.now().Add(model.BackoffDelay(nextCount))
		if err := o.jobRepo.MarkRetrying(ctx, job.ID, nextCount, retryAfter, handlerErr.Error()); err != nil {
			slog.Error("failed to mark job retrying",
				slog.String("job_id", job.ID),
				slog.String("error", err.Error()),
			)
			result.Failed++
			return
		}
		slog.Warn("job scheduled for retry",
			slog.String("job_id", job.ID),
			slog.String("kind", string(job.Kind)),
			slog.Int("retry_count", nextCount),
			slog.Time("retry_after", retryAfter),
			slog.String("error", handlerErr.Error()),
		)
		result.Retried++
		return
	}

	if err := o.jobRepo.MarkFailed(ctx, job.ID, handlerErr.Error()); err != nil {
		slog.Error("failed to mark job failed",
			slog.String("job_id", job.ID),
			slog.String("error", err.Error()),
		)
	}
	slog.Error("job failed permanently",
		slog.String("job_id", job.ID),
		slog.String("kind", string(job.Kind)),
		slog.Int("retry_count", job.RetryCount),
		slog.String("error", handlerErr.Error()),
	)
	result.Failed++
}
