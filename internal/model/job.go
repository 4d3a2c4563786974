package model

import (
	"fmt"
	"time"
)

// JobKind identifies the handler a job is dispatched to
type JobKind string

const (
	JobKindMetricsRefresh   JobKind = "metrics_refresh"   // Refresh cached metrics for one tracked post
	JobKindEngagerDiscovery JobKind = "engager_discovery" // Pull new engagements for one tracked post
	JobKindAlertFormation   JobKind = "alert_formation"   // Score engagements and queue alerts for a campaign
	JobKindSnapshot         JobKind = "snapshot"          // Roll up campaign metrics into an hourly snapshot
)

// JobStatus represents the lifecycle stage of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"    // Claimable
	JobStatusProcessing JobStatus = "processing" // Owned by exactly one worker
	JobStatusCompleted  JobStatus = "completed"  // Terminal success
	JobStatusRetrying   JobStatus = "retrying"   // Claimable again once retry_after passes
	JobStatusFailed     JobStatus = "failed"     // Terminal, retries exhausted
)

// DefaultMaxRetries is the retry budget applied when a kind has no override
const DefaultMaxRetries = 3

// JobPayload is the kind-tagged payload attached to a job. Exactly one shape
// is valid per kind; Validate enforces the shape at enqueue time.
type JobPayload struct {
	// PostID identifies the tracked post for post-scoped kinds
	// (metrics_refresh, engager_discovery). Empty for campaign-scoped kinds.
	PostID string `json:"post_id,omitempty"`
}

// Job is a unit of deferred, retryable work tied to a campaign
type Job struct {
	ID          string     `json:"id"`
	CampaignID  string     `json:"campaign_id"`
	Kind        JobKind    `json:"kind"`
	Payload     JobPayload `json:"payload"`
	Status      JobStatus  `json:"status"`
	RetryCount  int        `json:"retry_count"`
	MaxRetries  int        `json:"max_retries"`
	RetryAfter  *time.Time `json:"retry_after,omitempty"`
	LastError   *string    `json:"last_error,omitempty"`
	CreatedOn   time.Time  `json:"created_on"`
	UpdatedOn   time.Time  `json:"updated_on"`
	CompletedOn *time.Time `json:"completed_on,omitempty"`
}

// ValidKind reports whether k is a known job kind
func ValidKind(k JobKind) bool {
	switch k {
	case JobKindMetricsRefresh, JobKindEngagerDiscovery, JobKindAlertFormation, JobKindSnapshot:
		return true
	}
	return false
}

// PostScoped reports whether the kind operates on a single tracked post
func (k JobKind) PostScoped() bool {
	return k == JobKindMetricsRefresh || k == JobKindEngagerDiscovery
}

// Validate checks the payload shape against the kind's contract
func (p JobPayload) Validate(kind JobKind) error {
	if !ValidKind(kind) {
		return fmt.Errorf("unknown job kind %q", kind)
	}
	if kind.PostScoped() && p.PostID == "" {
		return fmt.Errorf("%s payload requires post_id", kind)
	}
	if !kind.PostScoped() && p.PostID != "" {
		return fmt.Errorf("%s payload must not carry post_id", kind)
	}
	return nil
}

// Terminal reports whether the status admits no further transitions
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// BackoffDelay returns the delay before a job that has failed retryCount
// times becomes claimable again: 2^retryCount minutes (2m, 4m, 8m, ...).
func BackoffDelay(retryCount int) time.Duration {
	return time.Duration(1<<uint(retryCount)) * time.Minute
}

// JobStats holds job counts grouped by status
type JobStats struct {
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Completed  int `json:"completed"`
	Retrying   int `json:"retrying"`
	Failed     int `json:"failed"`
}
