package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/beaconlabs/beacon/internal/model"
)

// QueueService is the enqueue-side API of the job pipeline. It validates
// payloads against the kind's contract, fans campaign work out into per-post
// jobs, and exposes aggregate queue stats.
type QueueService struct {
	jobRepo      JobStore
	campaignRepo CampaignStore
	postRepo     PostStore
}

// QueueServiceConfig holds configuration for the queue service
type QueueServiceConfig struct {
	JobRepo      JobStore
	CampaignRepo CampaignStore
	PostRepo     PostStore
}

// NewQueueService creates a new queue service
func NewQueueService(cfg QueueServiceConfig) *QueueService {
	return &QueueService{
		jobRepo:      cfg.JobRepo,
		campaignRepo: cfg.CampaignRepo,
		postRepo:     cfg.PostRepo,
	}
}

// Enqueue creates one pending job. The payload must match the kind's shape;
// malformed input is rejected synchronously with no partial state written.
// Enqueue carries no content dedupe: callers needing idempotency use the
// HTTP Idempotency-Key handle or enqueue through EnqueueCampaignJobs.
func (s *QueueService) Enqueue(ctx context.Context, campaignID string, kind model.JobKind, payload model.JobPayload) (*model.Job, error) {
	if campaignID == "" {
		return nil, ErrCampaignIDRequired
	}
	if !model.ValidKind(kind) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidJobKind, kind)
	}
	if err := payload.Validate(kind); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
	}

	campaign, err := s.campaignRepo.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, ErrCampaignNotFound
	}

	job := &model.Job{
		CampaignID: campaignID,
		Kind:       kind,
		Payload:    payload,
		MaxRetries: model.DefaultMaxRetries,
	}
	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// EnqueueCampaignJobs fans one campaign's cycle out into jobs: a metrics
// refresh and an engager discovery per tracked post, plus one alert
// formation job for the campaign. Returns the number enqueued. Campaigns
// outside active status get nothing.
func (s *QueueService) EnqueueCampaignJobs(ctx context.Context, campaignID string) (int, error) {
	if campaignID == "" {
		return 0, ErrCampaignIDRequired
	}

	campaign, err := s.campaignRepo.GetByID(ctx, campaignID)
	if err != nil {
		return 0, err
	}
	if campaign == nil {
		return 0, ErrCampaignNotFound
	}
	if campaign.Status != model.CampaignStatusActive {
		return 0, ErrCampaignNotActive
	}

	posts, err := s.postRepo.ListByCampaign(ctx, campaignID)
	if err != nil {
		return 0, err
	}
	if len(posts) == 0 {
		return 0, ErrNoMonitorableUnits
	}

	enqueued := 0
	for _, post := range posts {
		payload := model.JobPayload{PostID: post.ID}
		for _, kind := range []model.JobKind{model.JobKindMetricsRefresh, model.JobKindEngagerDiscovery} {
			job := &model.Job{
				CampaignID: campaignID,
				Kind:       kind,
				Payload:    payload,
				MaxRetries: model.DefaultMaxRetries,
			}
			if err := s.jobRepo.Create(ctx, job); err != nil {
				return enqueued, err
			}
			enqueued++
		}
	}

	formation := &model.Job{
		CampaignID: campaignID,
		Kind:       model.JobKindAlertFormation,
		MaxRetries: model.DefaultMaxRetries,
	}
	if err := s.jobRepo.Create(ctx, formation); err != nil {
		return enqueued, err
	}
	enqueued++

	slog.Debug("campaign jobs enqueued",
		slog.String("campaign_id", campaignID),
		slog.Int("count", enqueued),
	)
	return enqueued, nil
}

// FanOutActive enqueues a cycle of jobs for every active campaign. Errors
// are isolated per campaign so one broken campaign cannot starve the rest;
// campaigns with nothing to monitor are skipped silently. Returns the total
// enqueued and the number of campaigns that errored.
func (s *QueueService) FanOutActive(ctx context.Context) (enqueued, errored int) {
	campaigns, err := s.campaignRepo.ListActive(ctx)
	if err != nil {
		slog.Error("failed to list active campaigns", slog.String("error", err.Error()))
		return 0, 1
	}

	for _, campaign := range campaigns {
		n, err := s.EnqueueCampaignJobs(ctx, campaign.ID)
		enqueued += n
		if err != nil {
			if errors.Is(err, ErrNoMonitorableUnits) {
				continue
			}
			errored++
			slog.Error("campaign fan-out failed",
				slog.String("campaign_id", campaign.ID),
				slog.String("error", err.Error()),
			)
		}
	}
	return enqueued, errored
}

// Stats returns job counts grouped by status
func (s *QueueService) Stats(ctx context.Context) (*model.JobStats, error) {
	return s.jobRepo.CountsByStatus(ctx)
}
