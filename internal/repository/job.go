package repository

import (
	"context"
	"errors"
	"time"

	"github.com/beaconlabs/beacon/internal/database"
	"github.com/beaconlabs/beacon/internal/model"
)

// JobRepository owns the job lifecycle in the store. All status mutations go
// through its conditional UPDATE statements; no in-memory job state survives
// an orchestrator invocation.
type JobRepository struct {
	db database.Database
}

// NewJobRepository creates a new job repository
func NewJobRepository(db database.Database) *JobRepository {
	return &JobRepository{db: db}
}

// Create persists a new pending job
func (r *JobRepository) Create(ctx context.Context, job *model.Job) error {
	query := `
		CREATE job SET
			campaign_id = $campaign_id,
			kind = $kind,
			payload = $payload,
			status = 'pending',
			retry_count = 0,
			max_retries = $max_retries,
			retry_after = NONE,
			last_error = NONE,
			created_on = time::now(),
			updated_on = time::now()
	`
	vars := map[string]interface{}{
		"campaign_id": job.CampaignID,
		"kind":        string(job.Kind),
		"payload":     map[string]interface{}{"post_id": job.Payload.PostID},
		"max_retries": job.MaxRetries,
	}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		return err
	}

	created, err := parseJobResult(result)
	if err != nil {
		return err
	}

	job.ID = created.ID
	job.Status = created.Status
	job.CreatedOn = created.CreatedOn
	job.UpdatedOn = created.UpdatedOn
	return nil
}

// FindDue returns claimable jobs ordered oldest first: pending jobs, plus
// retrying jobs whose backoff has elapsed.
func (r *JobRepository) FindDue(ctx context.Context, limit int) ([]*model.Job, error) {
	query := `
		SELECT * FROM job
		WHERE (status = 'pending' AND (retry_after IS NONE OR retry_after <= time::now()))
		   OR (status = 'retrying' AND retry_after != NONE AND retry_after <= time::now())
		ORDER BY retry_after ASC, created_on ASC
		LIMIT $limit
	`
	results, err := r.db.Query(ctx, query, map[string]interface{}{"limit": limit})
	if err != nil {
		return nil, err
	}

	return parseJobsResult(results)
}

// Claim atomically transitions one job to processing, establishing exclusive
// ownership. The conditional UPDATE is the compare-and-set the pipeline's
// at-most-one-worker invariant rests on: a concurrent claim on the same id
// finds the status already 'processing' and comes back empty (ErrNotFound).
func (r *JobRepository) Claim(ctx context.Context, id string) (*model.Job, error) {
	query := `
		UPDATE type::record($id) SET
			status = 'processing',
			updated_on = time::now()
		WHERE status IN ['pending', 'retrying']
		  AND (retry_after IS NONE OR retry_after <= time::now())
		RETURN AFTER
	`
	result, err := r.db.QueryOne(ctx, query, map[string]interface{}{"id": id})
	if err != nil {
		return nil, err
	}

	return parseJobResult(result)
}

// MarkCompleted transitions a processing job to its terminal success state
func (r *JobRepository) MarkCompleted(ctx context.Context, id string) error {
	query := `
		UPDATE type::record($id) SET
			status = 'completed',
			completed_on = time::now(),
			updated_on = time::now()
		WHERE status = 'processing'
	`
	return r.db.Execute(ctx, query, map[string]interface{}{"id": id})
}

// MarkRetrying records a transient failure and schedules the next attempt
func (r *JobRepository) MarkRetrying(ctx context.Context, id string, retryCount int, retryAfter time.Time, errMsg string) error {
	query := `
		UPDATE type::record($id) SET
			status = 'retrying',
			retry_count = $retry_count,
			retry_after = <datetime>$retry_after,
			last_error = $last_error,
			updated_on = time::now()
		WHERE status = 'processing'
	`
	vars := map[string]interface{}{
		"id":          id,
		"retry_count": retryCount,
		"retry_after": retryAfter.UTC().Format(time.RFC3339),
		"last_error":  errMsg,
	}
	return r.db.Execute(ctx, query, vars)
}

// MarkFailed transitions a processing job to its terminal failure state
func (r *JobRepository) MarkFailed(ctx context.Context, id string, errMsg string) error {
	query := `
		UPDATE type::record($id) SET
			status = 'failed',
			last_error = $last_error,
			updated_on = time::now()
		WHERE status = 'processing'
	`
	vars := map[string]interface{}{
		"id":         id,
		"last_error": errMsg,
	}
	return r.db.Execute(ctx, query, vars)
}

// ReclaimStale requeues processing jobs not touched since the cutoff. Covers
// workers that crashed mid-handler and never resolved their claim.
func (r *JobRepository) ReclaimStale(ctx context.Context, cutoff time.Time) (int, error) {
	query := `
		UPDATE job SET
			status = 'pending',
			updated_on = time::now()
		WHERE status = 'processing'
		  AND updated_on < <datetime>$cutoff
		RETURN AFTER
	`
	results, err := r.db.Query(ctx, query, map[string]interface{}{
		"cutoff": cutoff.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return 0, err
	}

	jobs, err := parseJobsResult(results)
	if err != nil {
		return 0, err
	}
	return len(jobs), nil
}

// CountsByStatus returns job counts grouped by status
func (r *JobRepository) CountsByStatus(ctx context.Context) (*model.JobStats, error) {
	query := `SELECT status, count() AS count FROM job GROUP BY status`
	results, err := r.db.Query(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	stats := &model.JobStats{}
	rows, ok := extractQueryResults(results)
	if !ok {
		return stats, nil
	}

	for _, raw := range rows {
		row, ok := asRow(raw)
		if !ok {
			continue
		}
		count := getInt(row, "count")
		switch model.JobStatus(getString(row, "status")) {
		case model.JobStatusPending:
			stats.Pending = count
		case model.JobStatusProcessing:
			stats.Processing = count
		case model.JobStatusCompleted:
			stats.Completed = count
		case model.JobStatusRetrying:
			stats.Retrying = count
		case model.JobStatusFailed:
			stats.Failed = count
		}
	}

	return stats, nil
}

// parseJobResult converts a single row into a Job
func parseJobResult(result interface{}) (*model.Job, error) {
	row, ok := asRow(result)
	if !ok {
		return nil, errors.New("unexpected job result shape")
	}

	job := &model.Job{
		ID:          extractRecordID(row["id"]),
		CampaignID:  getString(row, "campaign_id"),
		Kind:        model.JobKind(getString(row, "kind")),
		Status:      model.JobStatus(getString(row, "status")),
		RetryCount:  getInt(row, "retry_count"),
		MaxRetries:  getInt(row, "max_retries"),
		RetryAfter:  getTimePtr(row, "retry_after"),
		LastError:   getStringPtr(row, "last_error"),
		CreatedOn:   getTime(row, "created_on"),
		UpdatedOn:   getTime(row, "updated_on"),
		CompletedOn: getTimePtr(row, "completed_on"),
	}
	if payload := getRow(row, "payload"); payload != nil {
		job.Payload = model.JobPayload{PostID: getString(payload, "post_id")}
	}
	return job, nil
}

// parseJobsResult converts a query response into a job list
func parseJobsResult(results []interface{}) ([]*model.Job, error) {
	rows, ok := extractQueryResults(results)
	if !ok {
		return nil, nil
	}

	jobs := make([]*model.Job, 0, len(rows))
	for _, raw := range rows {
		job, err := parseJobResult(raw)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}
