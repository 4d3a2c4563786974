package model

import "time"

// CampaignStatus represents the lifecycle stage of a campaign
type CampaignStatus string

const (
	CampaignStatusActive    CampaignStatus = "active"    // Inside or before its monitor window
	CampaignStatusCompleted CampaignStatus = "completed" // Monitor window elapsed; never reopened
	CampaignStatusDeleted   CampaignStatus = "deleted"   // Soft-deleted by its owner
)

// Campaign owns a monitor window and drives which jobs get enqueued
type Campaign struct {
	ID                   string         `json:"id"`
	Name                 string         `json:"name"`
	Status               CampaignStatus `json:"status"`
	StartDate            time.Time      `json:"start_date"`
	EndDate              time.Time      `json:"end_date"`
	ImportanceThreshold  float64        `json:"importance_threshold"`
	NotificationsEnabled bool           `json:"notifications_enabled"`
	CreatedOn            time.Time      `json:"created_on"`
	UpdatedOn            time.Time      `json:"updated_on"`
}

// Expired reports whether the campaign's monitor window has passed
func (c *Campaign) Expired(now time.Time) bool {
	return now.After(c.EndDate)
}
