package repository

import (
	"context"
	"errors"
	"time"

	"github.com/beaconlabs/beacon/internal/database"
	"github.com/beaconlabs/beacon/internal/model"
)

// EngagementRepository reads engagement records persisted by the ingestion
// pipeline. Beacon never writes engagements; ingestion owns them.
type EngagementRepository struct {
	db database.Database
}

// NewEngagementRepository creates a new engagement repository
func NewEngagementRepository(db database.Database) *EngagementRepository {
	return &EngagementRepository{db: db}
}

// GetByID retrieves an engagement by ID
func (r *EngagementRepository) GetByID(ctx context.Context, id string) (*model.Engagement, error) {
	query := `SELECT * FROM type::record($id)`
	result, err := r.db.QueryOne(ctx, query, map[string]interface{}{"id": id})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return parseEngagementResult(result)
}

// ListByCampaign retrieves engagements for a campaign recorded since the
// given time, oldest first
func (r *EngagementRepository) ListByCampaign(ctx context.Context, campaignID string, since time.Time) ([]*model.Engagement, error) {
	query := `
		SELECT * FROM engagement
		WHERE campaign_id = $campaign_id
		  AND created_on >= <datetime>$since
		ORDER BY created_on ASC
	`
	vars := map[string]interface{}{
		"campaign_id": campaignID,
		"since":       since.UTC().Format(time.RFC3339),
	}
	results, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	return parseEngagementsResult(results)
}

// parseEngagementResult converts a single row into an Engagement
func parseEngagementResult(result interface{}) (*model.Engagement, error) {
	row, ok := asRow(result)
	if !ok {
		return nil, errors.New("unexpected engagement result shape")
	}

	return &model.Engagement{
		ID:             extractRecordID(row["id"]),
		CampaignID:     getString(row, "campaign_id"),
		PostID:         getString(row, "post_id"),
		Kind:           model.EngagementKind(getString(row, "kind")),
		ActorHandle:    getString(row, "actor_handle"),
		ActorFollowers: getInt(row, "actor_followers"),
		OccurredOn:     getTime(row, "occurred_on"),
		CreatedOn:      getTime(row, "created_on"),
	}, nil
}

// parseEngagementsResult converts a query response into an engagement list
func parseEngagementsResult(results []interface{}) ([]*model.Engagement, error) {
	rows, ok := extractQueryResults(results)
	if !ok {
		return nil, nil
	}

	engagements := make([]*model.Engagement, 0, len(rows))
	for _, raw := range rows {
		e, err := parseEngagementResult(raw)
		if err != nil {
			return nil, err
		}
		engagements = append(engagements, e)
	}
	return engagements, nil
}
