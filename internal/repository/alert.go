package repository

import (
	"context"
	"errors"
	"time"

	"github.com/beaconlabs/beacon/internal/database"
	"github.com/beaconlabs/beacon/internal/model"
)

// AlertRepository handles alert data access. The alert formation service is
// the only writer; duplicates are hard-deleted by the dedup pass to bound
// storage.
type AlertRepository struct {
	db database.Database
}

// NewAlertRepository creates a new alert repository
func NewAlertRepository(db database.Database) *AlertRepository {
	return &AlertRepository{db: db}
}

// Create persists a new pending alert
func (r *AlertRepository) Create(ctx context.Context, alert *model.Alert) error {
	query := `
		CREATE alert SET
			campaign_id = $campaign_id,
			engagement_id = $engagement_id,
			importance_score = $importance_score,
			copy = $copy,
			status = 'pending',
			created_on = time::now(),
			sent_on = NONE
	`
	var copyText interface{}
	if alert.Copy != nil {
		copyText = *alert.Copy
	}
	vars := map[string]interface{}{
		"campaign_id":      alert.CampaignID,
		"engagement_id":    alert.EngagementID,
		"importance_score": alert.ImportanceScore,
		"copy":             copyText,
	}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		return err
	}

	created, err := parseAlertResult(result)
	if err != nil {
		return err
	}

	alert.ID = created.ID
	alert.Status = created.Status
	alert.CreatedOn = created.CreatedOn
	return nil
}

// ListByCampaign retrieves all alerts for a campaign (any status)
func (r *AlertRepository) ListByCampaign(ctx context.Context, campaignID string) ([]*model.Alert, error) {
	query := `SELECT * FROM alert WHERE campaign_id = $campaign_id ORDER BY created_on ASC`
	results, err := r.db.Query(ctx, query, map[string]interface{}{"campaign_id": campaignID})
	if err != nil {
		return nil, err
	}

	return parseAlertsResult(results)
}

// ListPending retrieves up to limit pending alerts, most important first
func (r *AlertRepository) ListPending(ctx context.Context, limit int) ([]*model.Alert, error) {
	query := `
		SELECT * FROM alert
		WHERE status = 'pending'
		ORDER BY importance_score DESC
		LIMIT $limit
	`
	results, err := r.db.Query(ctx, query, map[string]interface{}{"limit": limit})
	if err != nil {
		return nil, err
	}

	return parseAlertsResult(results)
}

// DeleteByIDs hard-deletes a set of alerts atomically
func (r *AlertRepository) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	batch := database.NewAtomicBatch()
	for _, id := range ids {
		batch.Add(`DELETE type::record($id)`, map[string]interface{}{"id": id})
	}
	return batch.Execute(ctx, r.db)
}

// MarkSent transitions a pending alert to sent and stamps the send time
func (r *AlertRepository) MarkSent(ctx context.Context, id string) error {
	query := `
		UPDATE type::record($id) SET
			status = 'sent',
			sent_on = time::now()
		WHERE status = 'pending'
	`
	return r.db.Execute(ctx, query, map[string]interface{}{"id": id})
}

// MarkSkipped records that the campaign's preferences rejected the alert
func (r *AlertRepository) MarkSkipped(ctx context.Context, id string) error {
	query := `
		UPDATE type::record($id) SET
			status = 'skipped'
		WHERE status = 'pending'
	`
	return r.db.Execute(ctx, query, map[string]interface{}{"id": id})
}

// LastSentOn returns when the campaign's most recent alert went out, or nil
// if nothing has been sent yet. Drives the per-campaign spacing policy.
func (r *AlertRepository) LastSentOn(ctx context.Context, campaignID string) (*time.Time, error) {
	query := `
		SELECT sent_on FROM alert
		WHERE campaign_id = $campaign_id
		  AND status = 'sent'
		ORDER BY sent_on DESC
		LIMIT 1
	`
	result, err := r.db.QueryOne(ctx, query, map[string]interface{}{"campaign_id": campaignID})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	row, ok := asRow(result)
	if !ok {
		return nil, errors.New("unexpected alert result shape")
	}
	return getTimePtr(row, "sent_on"), nil
}

// parseAlertResult converts a single row into an Alert
func parseAlertResult(result interface{}) (*model.Alert, error) {
	row, ok := asRow(result)
	if !ok {
		return nil, errors.New("unexpected alert result shape")
	}

	return &model.Alert{
		ID:              extractRecordID(row["id"]),
		CampaignID:      getString(row, "campaign_id"),
		EngagementID:    getString(row, "engagement_id"),
		ImportanceScore: getFloat(row, "importance_score"),
		Copy:            getStringPtr(row, "copy"),
		Status:          model.AlertStatus(getString(row, "status")),
		CreatedOn:       getTime(row, "created_on"),
		SentOn:          getTimePtr(row, "sent_on"),
	}, nil
}

// parseAlertsResult converts a query response into an alert list
func parseAlertsResult(results []interface{}) ([]*model.Alert, error) {
	rows, ok := extractQueryResults(results)
	if !ok {
		return nil, nil
	}

	alerts := make([]*model.Alert, 0, len(rows))
	for _, raw := range rows {
		a, err := parseAlertResult(raw)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	return alerts, nil
}
