package model

import "time"

// AlertStatus represents the delivery state of an alert
type AlertStatus string

const (
	AlertStatusPending AlertStatus = "pending" // Awaiting dispatch
	AlertStatusSent    AlertStatus = "sent"    // Delivered to the transport
	AlertStatusSkipped AlertStatus = "skipped" // Rejected by campaign preference
)

// Alert is a pending or sent notification tied to one engagement.
// After deduplication at most one alert exists per (campaign, engagement).
type Alert struct {
	ID              string      `json:"id"`
	CampaignID      string      `json:"campaign_id"`
	EngagementID    string      `json:"engagement_id"`
	ImportanceScore float64     `json:"importance_score"`
	Copy            *string     `json:"copy,omitempty"` // Generated notification text; expensive to produce
	Status          AlertStatus `json:"status"`
	CreatedOn       time.Time   `json:"created_on"`
	SentOn          *time.Time  `json:"sent_on,omitempty"`
}

// HasCopy reports whether the alert carries non-empty generated copy
func (a *Alert) HasCopy() bool {
	return a.Copy != nil && *a.Copy != ""
}

// MoreValuable is the total order used by deduplication: an alert with copy
// beats one without, and among ties the most recently created wins. The first
// element under this order is kept; the rest of the group is deleted.
func MoreValuable(a, b *Alert) bool {
	if a.HasCopy() != b.HasCopy() {
		return a.HasCopy()
	}
	return a.CreatedOn.After(b.CreatedOn)
}
