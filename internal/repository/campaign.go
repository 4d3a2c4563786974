package repository

import (
	"context"
	"errors"

	"github.com/beaconlabs/beacon/internal/database"
	"github.com/beaconlabs/beacon/internal/model"
)

// CampaignRepository handles campaign data access
type CampaignRepository struct {
	db database.Database
}

// NewCampaignRepository creates a new campaign repository
func NewCampaignRepository(db database.Database) *CampaignRepository {
	return &CampaignRepository{db: db}
}

// GetByID retrieves a campaign by ID
func (r *CampaignRepository) GetByID(ctx context.Context, id string) (*model.Campaign, error) {
	query := `SELECT * FROM type::record($id)`
	result, err := r.db.QueryOne(ctx, query, map[string]interface{}{"id": id})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return parseCampaignResult(result)
}

// ListActive retrieves all campaigns still inside their monitor window
func (r *CampaignRepository) ListActive(ctx context.Context) ([]*model.Campaign, error) {
	query := `SELECT * FROM campaign WHERE status = 'active' ORDER BY created_on ASC`
	results, err := r.db.Query(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	return parseCampaignsResult(results)
}

// CompleteExpired atomically closes one campaign whose window has passed.
// The WHERE clause makes the transition monotonic: a campaign already
// completed (or deleted) is left untouched, and a race between two checkers
// resolves to a single effective write.
func (r *CampaignRepository) CompleteExpired(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE type::record($id) SET
			status = 'completed',
			updated_on = time::now()
		WHERE status = 'active'
		  AND end_date < time::now()
		RETURN AFTER
	`
	_, err := r.db.QueryOne(ctx, query, map[string]interface{}{"id": id})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// parseCampaignResult converts a single row into a Campaign
func parseCampaignResult(result interface{}) (*model.Campaign, error) {
	row, ok := asRow(result)
	if !ok {
		return nil, errors.New("unexpected campaign result shape")
	}

	return &model.Campaign{
		ID:                   extractRecordID(row["id"]),
		Name:                 getString(row, "name"),
		Status:               model.CampaignStatus(getString(row, "status")),
		StartDate:            getTime(row, "start_date"),
		EndDate:              getTime(row, "end_date"),
		ImportanceThreshold:  getFloat(row, "importance_threshold"),
		NotificationsEnabled: getBool(row, "notifications_enabled"),
		CreatedOn:            getTime(row, "created_on"),
		UpdatedOn:            getTime(row, "updated_on"),
	}, nil
}

// parseCampaignsResult converts a query response into a campaign list
func parseCampaignsResult(results []interface{}) ([]*model.Campaign, error) {
	rows, ok := extractQueryResults(results)
	if !ok {
		return nil, nil
	}

	campaigns := make([]*model.Campaign, 0, len(rows))
	for _, raw := range rows {
		c, err := parseCampaignResult(raw)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, nil
}
