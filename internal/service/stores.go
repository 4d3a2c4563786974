package service

import (
	"context"
	"time"

	"github.com/beaconlabs/beacon/internal/model"
)

// Store interfaces consumed by the services. The repository package provides
// the SurrealDB-backed implementations; tests substitute function-field mocks.

// JobStore is the durable job queue the pipeline runs on
type JobStore interface {
	Create(ctx context.Context, job *model.Job) error
	FindDue(ctx context.Context, limit int) ([]*model.Job, error)
	Claim(ctx context.Context, id string) (*model.Job, error)
	MarkCompleted(ctx context.Context, id string) error
	MarkRetrying(ctx context.Context, id string, retryCount int, retryAfter time.Time, errMsg string) error
	MarkFailed(ctx context.Context, id string, errMsg string) error
	ReclaimStale(ctx context.Context, cutoff time.Time) (int, error)
	CountsByStatus(ctx context.Context) (*model.JobStats, error)
}

// CampaignStore reads campaigns and applies the one write this pipeline
// makes to them: the monotonic active -> completed transition
type CampaignStore interface {
	GetByID(ctx context.Context, id string) (*model.Campaign, error)
	ListActive(ctx context.Context) ([]*model.Campaign, error)
	CompleteExpired(ctx context.Context, id string) (bool, error)
}

// PostStore reads and refreshes tracked posts
type PostStore interface {
	GetByID(ctx context.Context, id string) (*model.TrackedPost, error)
	ListByCampaign(ctx context.Context, campaignID string) ([]*model.TrackedPost, error)
	UpdateMetrics(ctx context.Context, id string, m model.PostMetrics) error
}

// EngagementStore reads engagements persisted by ingestion
type EngagementStore interface {
	GetByID(ctx context.Context, id string) (*model.Engagement, error)
	ListByCampaign(ctx context.Context, campaignID string, since time.Time) ([]*model.Engagement, error)
}

// AlertStore holds pending and sent alerts
type AlertStore interface {
	Create(ctx context.Context, alert *model.Alert) error
	ListByCampaign(ctx context.Context, campaignID string) ([]*model.Alert, error)
	ListPending(ctx context.Context, limit int) ([]*model.Alert, error)
	DeleteByIDs(ctx context.Context, ids []string) error
	MarkSent(ctx context.Context, id string) error
	MarkSkipped(ctx context.Context, id string) error
	LastSentOn(ctx context.Context, campaignID string) (*time.Time, error)
}

// SnapshotStore holds hourly metric rollups
type SnapshotStore interface {
	ExistsForHour(ctx context.Context, campaignID string, hour time.Time) (bool, error)
	Create(ctx context.Context, snap *model.MetricSnapshot) error
}

// AuthStateStore holds OAuth handshake state rows
type AuthStateStore interface {
	Create(ctx context.Context, state *model.AuthState) error
	Consume(ctx context.Context, token string) (*model.AuthState, error)
	PurgeExpired(ctx context.Context) error
}
