package service

import (
	"context"

	"github.com/beaconlabs/beacon/internal/model"
)

// PlatformClient is the social platform collaborator. Metrics refresh reads
// fresh counters for a post; engager discovery asks ingestion to pull and
// persist new engagement events (this service then consumes them from the
// store by id).
type PlatformClient interface {
	FetchMetrics(ctx context.Context, post *model.TrackedPost) (model.PostMetrics, error)
	PullEngagements(ctx context.Context, post *model.TrackedPost) (int, error)
}

// Copywriter generates notification text for an alert. Generation is the
// expensive step, so formation only asks for copy above the campaign
// threshold, and dedup prefers alerts that already paid for it.
type Copywriter interface {
	GenerateCopy(ctx context.Context, campaign *model.Campaign, e *model.Engagement) (string, error)
}

// PassivePlatform satisfies PlatformClient without reaching the network:
// metrics reads echo the post's cached counters and discovery pulls nothing.
// Used when the ingestion deployment runs separately and writes engagements
// and metrics to the shared store on its own schedule.
type PassivePlatform struct{}

// FetchMetrics implements PlatformClient
func (PassivePlatform) FetchMetrics(_ context.Context, post *model.TrackedPost) (model.PostMetrics, error) {
	return model.PostMetrics{
		Replies: post.Replies,
		Reposts: post.Reposts,
		Quotes:  post.Quotes,
		Likes:   post.Likes,
	}, nil
}

// PullEngagements implements PlatformClient
func (PassivePlatform) PullEngagements(_ context.Context, _ *model.TrackedPost) (int, error) {
	return 0, nil
}
