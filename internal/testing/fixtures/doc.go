// Package fixtures holds factory functions for seeding pipeline test data.
//
// A Factory wraps a test database and creates rows with usable defaults;
// opts structs override individual fields:
//
//	f := fixtures.New(tdb)
//	campaign := f.CreateCampaign(t)
//	post := f.CreateTrackedPost(t, campaign)
//	f.CreateEngagement(t, campaign, post, 5000)
//
//	expired := f.CreateCampaign(t, fixtures.CampaignOpts{
//	    EndDate: time.Now().Add(-time.Hour),
//	})
//
// Rows live in the test's namespace and vanish when testdb.Close drops it.
package fixtures
