package model

import "time"

// TrackedPost is the monitorable unit of a campaign: one post on the social
// platform whose engagement Beacon follows. Metrics are cached from the last
// refresh; the platform remains the source of truth.
type TrackedPost struct {
	ID         string     `json:"id"`
	CampaignID string     `json:"campaign_id"`
	RemoteID   string     `json:"remote_id"` // Platform-side post ID
	Author     string     `json:"author"`
	Replies    int        `json:"replies"`
	Reposts    int        `json:"reposts"`
	Quotes     int        `json:"quotes"`
	Likes      int        `json:"likes"`
	FetchedOn  *time.Time `json:"fetched_on,omitempty"` // Last successful metrics refresh
	CreatedOn  time.Time  `json:"created_on"`
}

// PostMetrics is a point-in-time metrics reading for one tracked post
type PostMetrics struct {
	Replies int `json:"replies"`
	Reposts int `json:"reposts"`
	Quotes  int `json:"quotes"`
	Likes   int `json:"likes"`
}
