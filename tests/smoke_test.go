// Package tests contains end-to-end acceptance tests for the Beacon pipeline.
//
// These tests run against a real SurrealDB instance to validate actual
// database behavior including the conditional updates behind job claims,
// campaign completion, and snapshot uniqueness.
//
// To run tests:
//  1. Start SurrealDB: surreal start memory -A --user root --pass root
//  2. Run tests: go test ./tests/...
//
// Environment variables:
//
//	TEST_DB_HOST     - SurrealDB host (default: localhost)
//	TEST_DB_PORT     - SurrealDB port (default: 8000)
//	TEST_DB_USER     - SurrealDB username (default: root)
//	TEST_DB_PASSWORD - SurrealDB password (default: root)
package tests

import (
	"testing"

	"github.com/beaconlabs/beacon/internal/repository"
	"github.com/beaconlabs/beacon/internal/testing/fixtures"
	"github.com/beaconlabs/beacon/internal/testing/helpers"
	"github.com/beaconlabs/beacon/internal/testing/testdb"
)

func TestSmoke_DatabaseConnection(t *testing.T) {
	tdb := testdb.New(t)
	defer tdb.Close()

	if err := tdb.DB.Ping(tdb.Ctx()); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	results := tdb.MustQuery("INFO FOR DB", nil)
	if len(results) == 0 {
		t.Fatal("expected database info, got none")
	}
}

func TestSmoke_FixtureCreation(t *testing.T) {
	tdb := testdb.New(t)
	defer tdb.Close()

	f := fixtures.New(tdb.DB)
	campaign := f.CreateCampaign(t)
	post := f.CreateTrackedPost(t, campaign)
	engagement := f.CreateEngagement(t, campaign, post, 5000)

	helpers.AssertRecordExists(t, tdb.DB, "campaign", campaign.ID)
	helpers.AssertRecordExists(t, tdb.DB, "tracked_post", post.ID)
	helpers.AssertRecordExists(t, tdb.DB, "engagement", engagement.ID)
}

func TestSmoke_RepositoryRoundTrip(t *testing.T) {
	tdb := testdb.New(t)
	defer tdb.Close()

	f := fixtures.New(tdb.DB)
	created := f.CreateCampaign(t)

	repo := repository.NewCampaignRepository(tdb.DB)
	campaign, err := repo.GetByID(tdb.Ctx(), created.ID)
	if err != nil {
		t.Fatalf("failed to load campaign: %v", err)
	}
	if campaign == nil {
		t.Fatal("expected campaign, got nil")
	}
	if campaign.Name != created.Name {
		t.Errorf("expected name %q, got %q", created.Name, campaign.Name)
	}
	if !campaign.NotificationsEnabled {
		t.Error("expected notifications enabled by default")
	}
}
