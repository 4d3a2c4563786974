// Package fixtures provides test data factories for e2e testing.
//
// Each factory method creates entities with sensible defaults while allowing
// customization via option functions. Factories handle database insertion
// and return fully populated models.
//
// Usage:
//
//	f := fixtures.New(tdb.DB)
//	campaign := f.CreateCampaign(t)
//	post := f.CreateTrackedPost(t, campaign)
//	f.CreateEngagement(t, campaign, post, 5000)
package fixtures

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/beaconlabs/beacon/internal/database"
	"github.com/beaconlabs/beacon/internal/model"
)

// Factory creates test entities in the database
type Factory struct {
	db database.Database
}

// New creates a new fixture factory
func New(db database.Database) *Factory {
	return &Factory{db: db}
}

// randomID generates a random hex ID
func randomID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// ctx returns a context with timeout
func ctx() context.Context {
	c, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	_ = cancel
	return c
}

// ============================================================================
// Campaign Fixtures
// ============================================================================

// CampaignOpts customizes campaign creation
type CampaignOpts struct {
	Name                 string
	Status               model.CampaignStatus
	StartDate            time.Time
	EndDate              time.Time
	ImportanceThreshold  float64
	NotificationsEnabled *bool
}

// CreateCampaign creates an active campaign with a day-long monitor window
func (f *Factory) CreateCampaign(t *testing.T, opts ...CampaignOpts) *model.Campaign {
	t.Helper()

	var o CampaignOpts
	if len(opts) > 0 {
		o = opts[0]
	}
	if o.Name == "" {
		o.Name = "Campaign " + randomID()
	}
	if o.Status == "" {
		o.Status = model.CampaignStatusActive
	}
	if o.StartDate.IsZero() {
		o.StartDate = time.Now().Add(-time.Hour).UTC()
	}
	if o.EndDate.IsZero() {
		o.EndDate = time.Now().Add(23 * time.Hour).UTC()
	}
	notify := true
	if o.NotificationsEnabled != nil {
		notify = *o.NotificationsEnabled
	}

	id := "campaign:" + randomID()
	query := `
		CREATE type::record($id) SET
			name = $name,
			status = $status,
			start_date = <datetime>$start_date,
			end_date = <datetime>$end_date,
			importance_threshold = $threshold,
			notifications_enabled = $notify,
			created_on = time::now(),
			updated_on = time::now()
	`
	vars := map[string]interface{}{
		"id":         id,
		"name":       o.Name,
		"status":     string(o.Status),
		"start_date": o.StartDate.Format(time.RFC3339),
		"end_date":   o.EndDate.Format(time.RFC3339),
		"threshold":  o.ImportanceThreshold,
		"notify":     notify,
	}
	if err := f.db.Execute(ctx(), query, vars); err != nil {
		t.Fatalf("fixtures: failed to create campaign: %v", err)
	}

	return &model.Campaign{
		ID:                   id,
		Name:                 o.Name,
		Status:               o.Status,
		StartDate:            o.StartDate,
		EndDate:              o.EndDate,
		ImportanceThreshold:  o.ImportanceThreshold,
		NotificationsEnabled: notify,
	}
}

// ============================================================================
// Tracked Post Fixtures
// ============================================================================

// CreateTrackedPost creates a tracked post under the campaign
func (f *Factory) CreateTrackedPost(t *testing.T, campaign *model.Campaign) *model.TrackedPost {
	t.Helper()

	id := "tracked_post:" + randomID()
	remoteID := fmt.Sprintf("at://did:plc:%s/app.bsky.feed.post/%s", randomID(), randomID())
	query := `
		CREATE type::record($id) SET
			campaign_id = $campaign_id,
			remote_id = $remote_id,
			author = $author,
			replies = 0,
			reposts = 0,
			quotes = 0,
			likes = 0,
			created_on = time::now()
	`
	vars := map[string]interface{}{
		"id":          id,
		"campaign_id": campaign.ID,
		"remote_id":   remoteID,
		"author":      "brand.example.com",
	}
	if err := f.db.Execute(ctx(), query, vars); err != nil {
		t.Fatalf("fixtures: failed to create tracked post: %v", err)
	}

	return &model.TrackedPost{
		ID:         id,
		CampaignID: campaign.ID,
		RemoteID:   remoteID,
		Author:     "brand.example.com",
	}
}

// ============================================================================
// Engagement Fixtures
// ============================================================================

// CreateEngagement records a repost of the post by an account with the given
// follower count, timestamped inside the campaign window
func (f *Factory) CreateEngagement(t *testing.T, campaign *model.Campaign, post *model.TrackedPost, followers int) *model.Engagement {
	t.Helper()

	id := "engagement:" + randomID()
	handle := "fan-" + randomID() + ".example.com"
	query := `
		CREATE type::record($id) SET
			campaign_id = $campaign_id,
			post_id = $post_id,
			kind = $kind,
			actor_handle = $handle,
			actor_followers = $followers,
			occurred_on = time::now(),
			created_on = time::now()
	`
	vars := map[string]interface{}{
		"id":          id,
		"campaign_id": campaign.ID,
		"post_id":     post.ID,
		"kind":        string(model.EngagementRepost),
		"handle":      handle,
		"followers":   followers,
	}
	if err := f.db.Execute(ctx(), query, vars); err != nil {
		t.Fatalf("fixtures: failed to create engagement: %v", err)
	}

	return &model.Engagement{
		ID:             id,
		CampaignID:     campaign.ID,
		PostID:         post.ID,
		Kind:           model.EngagementRepost,
		ActorHandle:    handle,
		ActorFollowers: followers,
	}
}
