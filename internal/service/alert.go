package service

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/beaconlabs/beacon/internal/model"
)

// AlertService turns scored engagements into deduplicated, rate-limited
// outbound notifications. It is the only writer of alert records.
type AlertService struct {
	alertRepo      AlertStore
	engagementRepo EngagementStore
	campaignRepo   CampaignStore
	scorer         Scorer
	copywriter     Copywriter // Optional; nil skips copy generation
	deliverer      Deliverer
	spacing        time.Duration
	now            func() time.Time
}

// AlertServiceConfig holds configuration for the alert service
type AlertServiceConfig struct {
	AlertRepo      AlertStore
	EngagementRepo EngagementStore
	CampaignRepo   CampaignStore
	Scorer         Scorer
	Copywriter     Copywriter
	Deliverer      Deliverer
	// Spacing is the minimum interval between sent alerts per campaign,
	// normally 80% of the pipeline trigger interval (default 4m)
	Spacing time.Duration
	Now     func() time.Time
}

// NewAlertService creates a new alert service
func NewAlertService(cfg AlertServiceConfig) *AlertService {
	spacing := cfg.Spacing
	if spacing == 0 {
		spacing = 4 * time.Minute
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &AlertService{
		alertRepo:      cfg.AlertRepo,
		engagementRepo: cfg.EngagementRepo,
		campaignRepo:   cfg.CampaignRepo,
		scorer:         cfg.Scorer,
		copywriter:     cfg.Copywriter,
		deliverer:      cfg.Deliverer,
		spacing:        spacing,
		now:            now,
	}
}

// FormAlerts creates a pending alert for every campaign engagement scored at
// or above the campaign's importance threshold. Formation may produce
// duplicates across runs; Dedup collapses them afterwards. Copy generation
// failures degrade to a copyless alert rather than losing the notification.
func (s *AlertService) FormAlerts(ctx context.Context, campaignID string) (int, error) {
	campaign, err := s.campaignRepo.GetByID(ctx, campaignID)
	if err != nil {
		return 0, err
	}
	if campaign == nil {
		return 0, ErrCampaignNotFound
	}

	engagements, err := s.engagementRepo.ListByCampaign(ctx, campaignID, campaign.StartDate)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, engagement := range engagements {
		score := s.scorer.Score(engagement)
		if score < campaign.ImportanceThreshold {
			continue
		}

		alert := &model.Alert{
			CampaignID:      campaignID,
			EngagementID:    engagement.ID,
			ImportanceScore: score,
		}

		if s.copywriter != nil {
			copyText, err := s.copywriter.GenerateCopy(ctx, campaign, engagement)
			if err != nil {
				slog.Warn("copy generation failed, queuing alert without copy",
					slog.String("engagement_id", engagement.ID),
					slog.String("error", err.Error()),
				)
			} else if copyText != "" {
				alert.Copy = &copyText
			}
		}

		if err := s.alertRepo.Create(ctx, alert); err != nil {
			return created, err
		}
		created++
	}

	return created, nil
}

// Dedup collapses duplicate alerts per (campaign, engagement), keeping the
// first element under the model.MoreValuable total order (copy beats no
// copy, then newest wins) and hard-deleting the rest. Safe to re-run: a
// deduplicated set yields zero further deletions.
func (s *AlertService) Dedup(ctx context.Context, campaignID string) (int, error) {
	alerts, err := s.alertRepo.ListByCampaign(ctx, campaignID)
	if err != nil {
		return 0, err
	}

	groups := make(map[string][]*model.Alert)
	for _, alert := range alerts {
		groups[alert.EngagementID] = append(groups[alert.EngagementID], alert)
	}

	var doomed []string
	for _, group := range groups {
		if len(group) < 2 {
			continue
		}
		sort.Slice(group, func(i, j int) bool {
			return model.MoreValuable(group[i], group[j])
		})
		for _, dup := range group[1:] {
			doomed = append(doomed, dup.ID)
		}
	}

	if len(doomed) == 0 {
		return 0, nil
	}
	if err := s.alertRepo.DeleteByIDs(ctx, doomed); err != nil {
		return 0, err
	}

	slog.Info("duplicate alerts removed",
		slog.String("campaign_id", campaignID),
		slog.Int("deleted", len(doomed)),
	)
	return len(doomed), nil
}

// SendResult reports one dispatch cycle
type SendResult struct {
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}

// SendAlerts dispatches up to limit pending alerts, most important first.
// Campaign spacing defers an alert by leaving it pending for the next cycle
// (counted as skipped in the result); only a campaign with notifications
// disabled marks its alerts skipped permanently. Delivery errors leave the
// alert pending and are counted, never raised.
func (s *AlertService) SendAlerts(ctx context.Context, limit int) (*SendResult, error) {
	if limit <= 0 {
		return nil, ErrSendLimitRequired
	}

	pending, err := s.alertRepo.ListPending(ctx, limit)
	if err != nil {
		return nil, err
	}

	result := &SendResult{}
	campaigns := make(map[string]*model.Campaign)
	lastSent := make(map[string]time.Time)

	for _, alert := range pending {
		campaign, ok := campaigns[alert.CampaignID]
		if !ok {
			campaign, err = s.campaignRepo.GetByID(ctx, alert.CampaignID)
			if err != nil {
				slog.Error("failed to load campaign for alert",
					slog.String("alert_id", alert.ID),
					slog.String("error", err.Error()),
				)
				result.Errors++
				continue
			}
			campaigns[alert.CampaignID] = campaign
		}

		// Campaign gone or opted out: permanent rejection
		if campaign == nil || !campaign.NotificationsEnabled {
			if err := s.alertRepo.MarkSkipped(ctx, alert.ID); err != nil {
				result.Errors++
				continue
			}
			result.Skipped++
			continue
		}

		if s.deferredBySpacing(ctx, alert.CampaignID, lastSent) {
			// Stays pending for the next cycle
			result.Skipped++
			continue
		}

		if err := s.deliverer.Deliver(ctx, alert); err != nil {
			slog.Error("alert delivery failed",
				slog.String("alert_id", alert.ID),
				slog.String("error", err.Error()),
			)
			result.Errors++
			continue
		}

		if err := s.alertRepo.MarkSent(ctx, alert.ID); err != nil {
			slog.Error("failed to mark alert sent",
				slog.String("alert_id", alert.ID),
				slog.String("error", err.Error()),
			)
			result.Errors++
			continue
		}
		lastSent[alert.CampaignID] = s.now()
		result.Sent++
	}

	return result, nil
}

// deferredBySpacing checks the campaign's minimum alert spacing against the
// most recent send, whether from this cycle or a previous one.
func (s *AlertService) deferredBySpacing(ctx context.Context, campaignID string, cycleSent map[string]time.Time) bool {
	now := s.now()

	if last, ok := cycleSent[campaignID]; ok {
		if now.Sub(last) < s.spacing {
			return true
		}
	}

	last, err := s.alertRepo.LastSentOn(ctx, campaignID)
	if err != nil {
		slog.Error("failed to read last send time",
			slog.String("campaign_id", campaignID),
			slog.String("error", err.Error()),
		)
		// Fail open: a spacing read error should not wedge the queue
		return false
	}
	return last != nil && now.Sub(*last) < s.spacing
}
