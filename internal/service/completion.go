package service

import (
	"context"
	"log/slog"
	"time"
)

// CompletionService closes out campaigns whose monitor window has elapsed.
// It runs before fan-out in a trigger cycle so a just-expired campaign never
// receives a fresh batch of jobs.
type CompletionService struct {
	campaignRepo CampaignStore
	now          func() time.Time
}

// CompletionServiceConfig holds configuration for the completion service
type CompletionServiceConfig struct {
	CampaignRepo CampaignStore
	Now          func() time.Time // Defaults to time.Now; injectable for tests
}

// NewCompletionService creates a new completion service
func NewCompletionService(cfg CompletionServiceConfig) *CompletionService {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &CompletionService{
		campaignRepo: cfg.CampaignRepo,
		now:          now,
	}
}

// CompletionResult reports one completion sweep
type CompletionResult struct {
	Completed int `json:"completed"`
	Errors    int `json:"errors"`
}

// CheckAndCompleteCampaigns sweeps active campaigns and completes those past
// their end date. Per-campaign failures are counted, never fatal: one bad
// campaign cannot block the rest of the batch.
func (s *CompletionService) CheckAndCompleteCampaigns(ctx context.Context) (*CompletionResult, error) {
	campaigns, err := s.campaignRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	result := &CompletionResult{}
	now := s.now()

	for _, campaign := range campaigns {
		if !campaign.Expired(now) {
			continue
		}

		completed, err := s.campaignRepo.CompleteExpired(ctx, campaign.ID)
		if err != nil {
			slog.Error("failed to complete campaign",
				slog.String("campaign_id", campaign.ID),
				slog.String("error", err.Error()),
			)
			result.Errors++
			continue
		}
		if completed {
			slog.Info("campaign completed",
				slog.String("campaign_id", campaign.ID),
				slog.Time("end_date", campaign.EndDate),
			)
			result.Completed++
		}
	}

	return result, nil
}
