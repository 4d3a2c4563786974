package repository

import (
	"context"
	"errors"

	"github.com/beaconlabs/beacon/internal/database"
	"github.com/beaconlabs/beacon/internal/model"
)

// PostRepository handles tracked post data access
type PostRepository struct {
	db database.Database
}

// NewPostRepository creates a new tracked post repository
func NewPostRepository(db database.Database) *PostRepository {
	return &PostRepository{db: db}
}

// GetByID retrieves a tracked post by ID
func (r *PostRepository) GetByID(ctx context.Context, id string) (*model.TrackedPost, error) {
	query := `SELECT * FROM type::record($id)`
	result, err := r.db.QueryOne(ctx, query, map[string]interface{}{"id": id})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return parsePostResult(result)
}

// ListByCampaign retrieves all tracked posts for a campaign
func (r *PostRepository) ListByCampaign(ctx context.Context, campaignID string) ([]*model.TrackedPost, error) {
	query := `SELECT * FROM tracked_post WHERE campaign_id = $campaign_id ORDER BY created_on ASC`
	results, err := r.db.Query(ctx, query, map[string]interface{}{"campaign_id": campaignID})
	if err != nil {
		return nil, err
	}

	return parsePostsResult(results)
}

// UpdateMetrics writes a fresh metrics reading onto a tracked post
func (r *PostRepository) UpdateMetrics(ctx context.Context, id string, m model.PostMetrics) error {
	query := `
		UPDATE type::record($id) SET
			replies = $replies,
			reposts = $reposts,
			quotes = $quotes,
			likes = $likes,
			fetched_on = time::now()
	`
	vars := map[string]interface{}{
		"id":      id,
		"replies": m.Replies,
		"reposts": m.Reposts,
		"quotes":  m.Quotes,
		"likes":   m.Likes,
	}
	return r.db.Execute(ctx, query, vars)
}

// parsePostResult converts a single row into a TrackedPost
func parsePostResult(result interface{}) (*model.TrackedPost, error) {
	row, ok := asRow(result)
	if !ok {
		return nil, errors.New("unexpected tracked post result shape")
	}

	return &model.TrackedPost{
		ID:         extractRecordID(row["id"]),
		CampaignID: getString(row, "campaign_id"),
		RemoteID:   getString(row, "remote_id"),
		Author:     getString(row, "author"),
		Replies:    getInt(row, "replies"),
		Reposts:    getInt(row, "reposts"),
		Quotes:     getInt(row, "quotes"),
		Likes:      getInt(row, "likes"),
		FetchedOn:  getTimePtr(row, "fetched_on"),
		CreatedOn:  getTime(row, "created_on"),
	}, nil
}

// parsePostsResult converts a query response into a post list
func parsePostsResult(results []interface{}) ([]*model.TrackedPost, error) {
	rows, ok := extractQueryResults(results)
	if !ok {
		return nil, nil
	}

	posts := make([]*model.TrackedPost, 0, len(rows))
	for _, raw := range rows {
		p, err := parsePostResult(raw)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, nil
}
