package model

import "time"

// EngagementKind is the interaction type recorded against a tracked post
type EngagementKind string

const (
	EngagementReply  EngagementKind = "reply"
	EngagementRepost EngagementKind = "repost"
	EngagementQuote  EngagementKind = "quote"
)

// Engagement is a recorded interaction by an account with a tracked post.
// Ingestion happens outside this service; Beacon consumes persisted records.
type Engagement struct {
	ID             string         `json:"id"`
	CampaignID     string         `json:"campaign_id"`
	PostID         string         `json:"post_id"`
	Kind           EngagementKind `json:"kind"`
	ActorHandle    string         `json:"actor_handle"`
	ActorFollowers int            `json:"actor_followers"`
	OccurredOn     time.Time      `json:"occurred_on"`
	CreatedOn      time.Time      `json:"created_on"`
}
