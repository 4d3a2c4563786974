package repository

import (
	"context"
	"errors"
	"time"

	"github.com/beaconlabs/beacon/internal/database"
	"github.com/beaconlabs/beacon/internal/model"
)

// SnapshotRepository handles metric snapshot data access. Snapshots are
// immutable once written; the (campaign, hour) existence check is the dedupe
// gate for snapshot creation.
type SnapshotRepository struct {
	db database.Database
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(db database.Database) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// ExistsForHour reports whether a snapshot already covers the campaign's hour bucket
func (r *SnapshotRepository) ExistsForHour(ctx context.Context, campaignID string, hour time.Time) (bool, error) {
	query := `
		SELECT count() AS count FROM metric_snapshot
		WHERE campaign_id = $campaign_id
		  AND hour_bucket = <datetime>$hour_bucket
		GROUP ALL
	`
	vars := map[string]interface{}{
		"campaign_id": campaignID,
		"hour_bucket": model.SnapshotHour(hour).Format(time.RFC3339),
	}
	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	return getCount(result) > 0, nil
}

// Create persists a new snapshot
func (r *SnapshotRepository) Create(ctx context.Context, snap *model.MetricSnapshot) error {
	query := `
		CREATE metric_snapshot SET
			campaign_id = $campaign_id,
			hour_bucket = <datetime>$hour_bucket,
			total_replies = $total_replies,
			total_reposts = $total_reposts,
			total_quotes = $total_quotes,
			total_likes = $total_likes,
			total_engagements = $total_engagements,
			created_on = time::now()
	`
	vars := map[string]interface{}{
		"campaign_id":       snap.CampaignID,
		"hour_bucket":       model.SnapshotHour(snap.HourBucket).Format(time.RFC3339),
		"total_replies":     snap.TotalReplies,
		"total_reposts":     snap.TotalReposts,
		"total_quotes":      snap.TotalQuotes,
		"total_likes":       snap.TotalLikes,
		"total_engagements": snap.TotalEngagements,
	}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		return err
	}

	row, ok := asRow(result)
	if !ok {
		return errors.New("unexpected snapshot result shape")
	}
	snap.ID = extractRecordID(row["id"])
	snap.CreatedOn = getTime(row, "created_on")
	return nil
}
