package model

import "time"

// MetricSnapshot is an immutable hourly rollup of a campaign's aggregate
// engagement metrics. At most one exists per (campaign, hour bucket).
type MetricSnapshot struct {
	ID               string    `json:"id"`
	CampaignID       string    `json:"campaign_id"`
	HourBucket       time.Time `json:"hour_bucket"` // Truncated to the hour, UTC
	TotalReplies     int       `json:"total_replies"`
	TotalReposts     int       `json:"total_reposts"`
	TotalQuotes      int       `json:"total_quotes"`
	TotalLikes       int       `json:"total_likes"`
	TotalEngagements int       `json:"total_engagements"`
	CreatedOn        time.Time `json:"created_on"`
}

// SnapshotHour returns the dedupe bucket for a snapshot taken at t
func SnapshotHour(t time.Time) time.Time {
	return t.UTC().Truncate(time.Hour)
}
