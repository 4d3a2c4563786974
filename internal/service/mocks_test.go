package service

import (
	"context"
	"time"

	"github.com/beaconlabs/beacon/internal/model"
)

// ============================================================================
// Mock Stores
//
// Function-field mocks shared by the service tests. A nil field means the
// call succeeds with a zero result.
// ============================================================================

type mockJobStore struct {
	createFunc         func(ctx context.Context, job *model.Job) error
	findDueFunc        func(ctx context.Context, limit int) ([]*model.Job, error)
	claimFunc          func(ctx context.Context, id string) (*model.Job, error)
	markCompletedFunc  func(ctx context.Context, id string) error
	markRetryingFunc   func(ctx context.Context, id string, retryCount int, retryAfter time.Time, errMsg string) error
	markFailedFunc     func(ctx context.Context, id string, errMsg string) error
	reclaimStaleFunc   func(ctx context.Context, cutoff time.Time) (int, error)
	countsByStatusFunc func(ctx context.Context) (*model.JobStats, error)
}

func (m *mockJobStore) Create(ctx context.Context, job *model.Job) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, job)
	}
	return nil
}

func (m *mockJobStore) FindDue(ctx context.Context, limit int) ([]*model.Job, error) {
	if m.findDueFunc != nil {
		return m.findDueFunc(ctx, limit)
	}
	return nil, nil
}

func (m *mockJobStore) Claim(ctx context.Context, id string) (*model.Job, error) {
	if m.claimFunc != nil {
		return m.claimFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockJobStore) MarkCompleted(ctx context.Context, id string) error {
	if m.markCompletedFunc != nil {
		return m.markCompletedFunc(ctx, id)
	}
	return nil
}

func (m *mockJobStore) MarkRetrying(ctx context.Context, id string, retryCount int, retryAfter time.Time, errMsg string) error {
	if m.markRetryingFunc != nil {
		return m.markRetryingFunc(ctx, id, retryCount, retryAfter, errMsg)
	}
	return nil
}

func (m *mockJobStore) MarkFailed(ctx context.Context, id string, errMsg string) error {
	if m.markFailedFunc != nil {
		return m.markFailedFunc(ctx, id, errMsg)
	}
	return nil
}

func (m *mockJobStore) ReclaimStale(ctx context.Context, cutoff time.Time) (int, error) {
	if m.reclaimStaleFunc != nil {
		return m.reclaimStaleFunc(ctx, cutoff)
	}
	return 0, nil
}

func (m *mockJobStore) CountsByStatus(ctx context.Context) (*model.JobStats, error) {
	if m.countsByStatusFunc != nil {
		return m.countsByStatusFunc(ctx)
	}
	return &model.JobStats{}, nil
}

type mockCampaignStore struct {
	getByIDFunc         func(ctx context.Context, id string) (*model.Campaign, error)
	listActiveFunc      func(ctx context.Context) ([]*model.Campaign, error)
	completeExpiredFunc func(ctx context.Context, id string) (bool, error)
}

func (m *mockCampaignStore) GetByID(ctx context.Context, id string) (*model.Campaign, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockCampaignStore) ListActive(ctx context.Context) ([]*model.Campaign, error) {
	if m.listActiveFunc != nil {
		return m.listActiveFunc(ctx)
	}
	return nil, nil
}

func (m *mockCampaignStore) CompleteExpired(ctx context.Context, id string) (bool, error) {
	if m.completeExpiredFunc != nil {
		return m.completeExpiredFunc(ctx, id)
	}
	return false, nil
}

type mockPostStore struct {
	getByIDFunc        func(ctx context.Context, id string) (*model.TrackedPost, error)
	listByCampaignFunc func(ctx context.Context, campaignID string) ([]*model.TrackedPost, error)
	updateMetricsFunc  func(ctx context.Context, id string, metrics model.PostMetrics) error
}

func (m *mockPostStore) GetByID(ctx context.Context, id string) (*model.TrackedPost, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockPostStore) ListByCampaign(ctx context.Context, campaignID string) ([]*model.TrackedPost, error) {
	if m.listByCampaignFunc != nil {
		return m.listByCampaignFunc(ctx, campaignID)
	}
	return nil, nil
}

func (m *mockPostStore) UpdateMetrics(ctx context.Context, id string, metrics model.PostMetrics) error {
	if m.updateMetricsFunc != nil {
		return m.updateMetricsFunc(ctx, id, metrics)
	}
	return nil
}

type mockEngagementStore struct {
	getByIDFunc        func(ctx context.Context, id string) (*model.Engagement, error)
	listByCampaignFunc func(ctx context.Context, campaignID string, since time.Time) ([]*model.Engagement, error)
}

func (m *mockEngagementStore) GetByID(ctx context.Context, id string) (*model.Engagement, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockEngagementStore) ListByCampaign(ctx context.Context, campaignID string, since time.Time) ([]*model.Engagement, error) {
	if m.listByCampaignFunc != nil {
		return m.listByCampaignFunc(ctx, campaignID, since)
	}
	return nil, nil
}

type mockAlertStore struct {
	createFunc         func(ctx context.Context, alert *model.Alert) error
	listByCampaignFunc func(ctx context.Context, campaignID string) ([]*model.Alert, error)
	listPendingFunc    func(ctx context.Context, limit int) ([]*model.Alert, error)
	deleteByIDsFunc    func(ctx context.Context, ids []string) error
	markSentFunc       func(ctx context.Context, id string) error
	markSkippedFunc    func(ctx context.Context, id string) error
	lastSentOnFunc     func(ctx context.Context, campaignID string) (*time.Time, error)
}

func (m *mockAlertStore) Create(ctx context.Context, alert *model.Alert) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, alert)
	}
	return nil
}

func (m *mockAlertStore) ListByCampaign(ctx context.Context, campaignID string) ([]*model.Alert, error) {
	if m.listByCampaignFunc != nil {
		return m.listByCampaignFunc(ctx, campaignID)
	}
	return nil, nil
}

func (m *mockAlertStore) ListPending(ctx context.Context, limit int) ([]*model.Alert, error) {
	if m.listPendingFunc != nil {
		return m.listPendingFunc(ctx, limit)
	}
	return nil, nil
}

func (m *mockAlertStore) DeleteByIDs(ctx context.Context, ids []string) error {
	if m.deleteByIDsFunc != nil {
		return m.deleteByIDsFunc(ctx, ids)
	}
	return nil
}

func (m *mockAlertStore) MarkSent(ctx context.Context, id string) error {
	if m.markSentFunc != nil {
		return m.markSentFunc(ctx, id)
	}
	return nil
}

func (m *mockAlertStore) MarkSkipped(ctx context.Context, id string) error {
	if m.markSkippedFunc != nil {
		return m.markSkippedFunc(ctx, id)
	}
	return nil
}

func (m *mockAlertStore) LastSentOn(ctx context.Context, campaignID string) (*time.Time, error) {
	if m.lastSentOnFunc != nil {
		return m.lastSentOnFunc(ctx, campaignID)
	}
	return nil, nil
}

type mockSnapshotStore struct {
	existsForHourFunc func(ctx context.Context, campaignID string, hour time.Time) (bool, error)
	createFunc        func(ctx context.Context, snap *model.MetricSnapshot) error
}

func (m *mockSnapshotStore) ExistsForHour(ctx context.Context, campaignID string, hour time.Time) (bool, error) {
	if m.existsForHourFunc != nil {
		return m.existsForHourFunc(ctx, campaignID, hour)
	}
	return false, nil
}

func (m *mockSnapshotStore) Create(ctx context.Context, snap *model.MetricSnapshot) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, snap)
	}
	return nil
}

type mockAuthStateStore struct {
	createFunc       func(ctx context.Context, state *model.AuthState) error
	consumeFunc      func(ctx context.Context, token string) (*model.AuthState, error)
	purgeExpiredFunc func(ctx context.Context) error
}

func (m *mockAuthStateStore) Create(ctx context.Context, state *model.AuthState) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, state)
	}
	return nil
}

func (m *mockAuthStateStore) Consume(ctx context.Context, token string) (*model.AuthState, error) {
	if m.consumeFunc != nil {
		return m.consumeFunc(ctx, token)
	}
	return nil, nil
}

func (m *mockAuthStateStore) PurgeExpired(ctx context.Context) error {
	if m.purgeExpiredFunc != nil {
		return m.purgeExpiredFunc(ctx)
	}
	return nil
}

// ============================================================================
// Mock Collaborators
// ============================================================================

type mockPlatform struct {
	fetchMetricsFunc    func(ctx context.Context, post *model.TrackedPost) (model.PostMetrics, error)
	pullEngagementsFunc func(ctx context.Context, post *model.TrackedPost) (int, error)
}

func (m *mockPlatform) FetchMetrics(ctx context.Context, post *model.TrackedPost) (model.PostMetrics, error) {
	if m.fetchMetricsFunc != nil {
		return m.fetchMetricsFunc(ctx, post)
	}
	return model.PostMetrics{}, nil
}

func (m *mockPlatform) PullEngagements(ctx context.Context, post *model.TrackedPost) (int, error) {
	if m.pullEngagementsFunc != nil {
		return m.pullEngagementsFunc(ctx, post)
	}
	return 0, nil
}

type mockDeliverer struct {
	deliverFunc func(ctx context.Context, alert *model.Alert) error
}

func (m *mockDeliverer) Deliver(ctx context.Context, alert *model.Alert) error {
	if m.deliverFunc != nil {
		return m.deliverFunc(ctx, alert)
	}
	return nil
}

type mockCopywriter struct {
	generateCopyFunc func(ctx context.Context, campaign *model.Campaign, engagement *model.Engagement) (string, error)
}

func (m *mockCopywriter) GenerateCopy(ctx context.Context, campaign *model.Campaign, engagement *model.Engagement) (string, error) {
	if m.generateCopyFunc != nil {
		return m.generateCopyFunc(ctx, campaign, engagement)
	}
	return "", nil
}

// staticScorer scores every engagement with a fixed value
type staticScorer float64

func (s staticScorer) Score(_ *model.Engagement) float64 {
	return float64(s)
}
