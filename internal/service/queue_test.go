package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/beaconlabs/beacon/internal/model"
)

func activeCampaign(id string) *model.Campaign {
	return &model.Campaign{
		ID:                   id,
		Name:                 "Launch",
		Status:               model.CampaignStatusActive,
		StartDate:            time.Now().Add(-time.Hour),
		EndDate:              time.Now().Add(time.Hour),
		ImportanceThreshold:  100,
		NotificationsEnabled: true,
	}
}

func newTestQueueService(jobs *mockJobStore, campaigns *mockCampaignStore, posts *mockPostStore) *QueueService {
	if jobs == nil {
		jobs = &mockJobStore{}
	}
	if campaigns == nil {
		campaigns = &mockCampaignStore{}
	}
	if posts == nil {
		posts = &mockPostStore{}
	}
	return NewQueueService(QueueServiceConfig{
		JobRepo:      jobs,
		CampaignRepo: campaigns,
		PostRepo:     posts,
	})
}

// ============================================================================
// Enqueue Tests
// ============================================================================

func TestEnqueue_ValidPostScopedJob_Creates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var created *model.Job
	jobs := &mockJobStore{
		createFunc: func(ctx context.Context, job *model.Job) error {
			created = job
			return nil
		},
	}
	campaigns := &mockCampaignStore{
		getByIDFunc: func(ctx context.Context, id string) (*model.Campaign, error) {
			return activeCampaign(id), nil
		},
	}
	svc := newTestQueueService(jobs, campaigns, nil)

	job, err := svc.Enqueue(ctx, "campaign:1", model.JobKindMetricsRefresh, model.JobPayload{PostID: "post:1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created == nil {
		t.Fatal("expected job to be created")
	}
	if job.Kind != model.JobKindMetricsRefresh {
		t.Errorf("expected kind metrics_refresh, got %s", job.Kind)
	}
	if job.MaxRetries != model.DefaultMaxRetries {
		t.Errorf("expected max retries %d, got %d", model.DefaultMaxRetries, job.MaxRetries)
	}
}

func TestEnqueue_UnknownKind_Rejected(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newTestQueueService(nil, nil, nil)

	_, err := svc.Enqueue(ctx, "campaign:1", "sweep_floors", model.JobPayload{})
	if !errors.Is(err, ErrInvalidJobKind) {
		t.Errorf("expected ErrInvalidJobKind, got %v", err)
	}
}

func TestEnqueue_PostScopedKindWithoutPostID_Rejected(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newTestQueueService(nil, nil, nil)

	_, err := svc.Enqueue(ctx, "campaign:1", model.JobKindMetricsRefresh, model.JobPayload{})
	if !errors.Is(err, ErrInvalidJobPayload) {
		t.Errorf("expected ErrInvalidJobPayload, got %v", err)
	}
}

func TestEnqueue_CampaignScopedKindWithPostID_Rejected(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newTestQueueService(nil, nil, nil)

	_, err := svc.Enqueue(ctx, "campaign:1", model.JobKindAlertFormation, model.JobPayload{PostID: "post:1"})
	if !errors.Is(err, ErrInvalidJobPayload) {
		t.Errorf("expected ErrInvalidJobPayload, got %v", err)
	}
}

func TestEnqueue_MissingCampaignID_Rejected(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newTestQueueService(nil, nil, nil)

	_, err := svc.Enqueue(ctx, "", model.JobKindSnapshot, model.JobPayload{})
	if !errors.Is(err, ErrCampaignIDRequired) {
		t.Errorf("expected ErrCampaignIDRequired, got %v", err)
	}
}

func TestEnqueue_UnknownCampaign_Rejected(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	campaigns := &mockCampaignStore{
		getByIDFunc: func(ctx context.Context, id string) (*model.Campaign, error) {
			return nil, nil
		},
	}
	svc := newTestQueueService(nil, campaigns, nil)

	_, err := svc.Enqueue(ctx, "campaign:missing", model.JobKindSnapshot, model.JobPayload{})
	if !errors.Is(err, ErrCampaignNotFound) {
		t.Errorf("expected ErrCampaignNotFound, got %v", err)
	}
}

func TestEnqueue_InvalidPayload_NothingWritten(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	createCalls := 0
	jobs := &mockJobStore{
		createFunc: func(ctx context.Context, job *model.Job) error {
			createCalls++
			return nil
		},
	}
	svc := newTestQueueService(jobs, nil, nil)

	_, _ = svc.Enqueue(ctx, "campaign:1", model.JobKindMetricsRefresh, model.JobPayload{})
	if createCalls != 0 {
		t.Errorf("expected no writes for invalid payload, got %d", createCalls)
	}
}

// ============================================================================
// EnqueueCampaignJobs Tests
// ============================================================================

func TestEnqueueCampaignJobs_FansOutPerPost(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var created []*model.Job
	jobs := &mockJobStore{
		createFunc: func(ctx context.Context, job *model.Job) error {
			created = append(created, job)
			return nil
		},
	}
	campaigns := &mockCampaignStore{
		getByIDFunc: func(ctx context.Context, id string) (*model.Campaign, error) {
			return activeCampaign(id), nil
		},
	}
	posts := &mockPostStore{
		listByCampaignFunc: func(ctx context.Context, campaignID string) ([]*model.TrackedPost, error) {
			return []*model.TrackedPost{
				{ID: "post:1", CampaignID: campaignID},
				{ID: "post:2", CampaignID: campaignID},
			}, nil
		},
	}
	svc := newTestQueueService(jobs, campaigns, posts)

	count, err := svc.EnqueueCampaignJobs(ctx, "campaign:1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 2 posts x (metrics_refresh + engager_discovery) + 1 alert_formation
	if count != 5 {
		t.Errorf("expected 5 jobs, got %d", count)
	}
	if len(created) != 5 {
		t.Fatalf("expected 5 created jobs, got %d", len(created))
	}

	kinds := make(map[model.JobKind]int)
	for _, job := range created {
		kinds[job.Kind]++
		if job.Kind.PostScoped() && job.Payload.PostID == "" {
			t.Errorf("%s job missing post_id", job.Kind)
		}
	}
	if kinds[model.JobKindMetricsRefresh] != 2 {
		t.Errorf("expected 2 metrics_refresh jobs, got %d", kinds[model.JobKindMetricsRefresh])
	}
	if kinds[model.JobKindEngagerDiscovery] != 2 {
		t.Errorf("expected 2 engager_discovery jobs, got %d", kinds[model.JobKindEngagerDiscovery])
	}
	if kinds[model.JobKindAlertFormation] != 1 {
		t.Errorf("expected 1 alert_formation job, got %d", kinds[model.JobKindAlertFormation])
	}
}

func TestEnqueueCampaignJobs_CompletedCampaign_Rejected(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	campaigns := &mockCampaignStore{
		getByIDFunc: func(ctx context.Context, id string) (*model.Campaign, error) {
			c := activeCampaign(id)
			c.Status = model.CampaignStatusCompleted
			return c, nil
		},
	}
	svc := newTestQueueService(nil, campaigns, nil)

	_, err := svc.EnqueueCampaignJobs(ctx, "campaign:1")
	if !errors.Is(err, ErrCampaignNotActive) {
		t.Errorf("expected ErrCampaignNotActive, got %v", err)
	}
}

func TestEnqueueCampaignJobs_NoPosts_Rejected(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	campaigns := &mockCampaignStore{
		getByIDFunc: func(ctx context.Context, id string) (*model.Campaign, error) {
			return activeCampaign(id), nil
		},
	}
	svc := newTestQueueService(nil, campaigns, nil)

	_, err := svc.EnqueueCampaignJobs(ctx, "campaign:1")
	if !errors.Is(err, ErrNoMonitorableUnits) {
		t.Errorf("expected ErrNoMonitorableUnits, got %v", err)
	}
}

// ============================================================================
// FanOutActive Tests
// ============================================================================

func TestFanOutActive_IsolatesCampaignFailures(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	jobs := &mockJobStore{}
	campaigns := &mockCampaignStore{
		listActiveFunc: func(ctx context.Context) ([]*model.Campaign, error) {
			return []*model.Campaign{
				activeCampaign("campaign:ok"),
				activeCampaign("campaign:broken"),
			}, nil
		},
		getByIDFunc: func(ctx context.Context, id string) (*model.Campaign, error) {
			return activeCampaign(id), nil
		},
	}
	posts := &mockPostStore{
		listByCampaignFunc: func(ctx context.Context, campaignID string) ([]*model.TrackedPost, error) {
			if campaignID == "campaign:broken" {
				return nil, errors.New("boom")
			}
			return []*model.TrackedPost{{ID: "post:1", CampaignID: campaignID}}, nil
		},
	}
	svc := newTestQueueService(jobs, campaigns, posts)

	enqueued, errored := svc.FanOutActive(ctx)
	if enqueued != 3 {
		t.Errorf("expected 3 jobs from the healthy campaign, got %d", enqueued)
	}
	if errored != 1 {
		t.Errorf("expected 1 errored campaign, got %d", errored)
	}
}

func TestFanOutActive_SkipsEmptyCampaignsSilently(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	campaigns := &mockCampaignStore{
		listActiveFunc: func(ctx context.Context) ([]*model.Campaign, error) {
			return []*model.Campaign{activeCampaign("campaign:empty")}, nil
		},
		getByIDFunc: func(ctx context.Context, id string) (*model.Campaign, error) {
			return activeCampaign(id), nil
		},
	}
	svc := newTestQueueService(nil, campaigns, nil)

	enqueued, errored := svc.FanOutActive(ctx)
	if enqueued != 0 || errored != 0 {
		t.Errorf("expected (0, 0) for a campaign with no posts, got (%d, %d)", enqueued, errored)
	}
}

// ============================================================================
// Stats Tests
// ============================================================================

func TestStats_ReturnsCounts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	jobs := &mockJobStore{
		countsByStatusFunc: func(ctx context.Context) (*model.JobStats, error) {
			return &model.JobStats{Pending: 4, Completed: 10, Failed: 1}, nil
		},
	}
	svc := newTestQueueService(jobs, nil, nil)

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Pending != 4 || stats.Completed != 10 || stats.Failed != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}
