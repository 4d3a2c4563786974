package handler

import (
	"net/http"

	"github.com/beaconlabs/beacon/internal/model"
	"github.com/beaconlabs/beacon/internal/service"
)

// PipelineHandler exposes the operational surface of the job pipeline. The
// trigger-style endpoints are designed for external schedulers: they run one
// cycle synchronously and return 200 with embedded stats even when individual
// items inside the cycle failed. Only a cycle that could not run at all (store
// unreachable, bad input) produces an error status.
type PipelineHandler struct {
	queue      *service.QueueService
	orch       *service.Orchestrator
	alerts     *service.AlertService
	completion *service.CompletionService
	maxJobs    int
	sendLimit  int
}

// PipelineHandlerConfig holds the collaborators and per-cycle defaults
type PipelineHandlerConfig struct {
	Queue      *service.QueueService
	Orch       *service.Orchestrator
	Alerts     *service.AlertService
	Completion *service.CompletionService
	MaxJobs    int
	SendLimit  int
}

// NewPipelineHandler creates a new pipeline handler
func NewPipelineHandler(cfg PipelineHandlerConfig) *PipelineHandler {
	return &PipelineHandler{
		queue:      cfg.Queue,
		orch:       cfg.Orch,
		alerts:     cfg.Alerts,
		completion: cfg.Completion,
		maxJobs:    cfg.MaxJobs,
		sendLimit:  cfg.SendLimit,
	}
}

// Trigger handles POST /v1/pipeline/trigger.
// Runs one full trigger cycle: complete expired campaigns, then fan jobs out
// for the rest. Ordering matters: a campaign that expired in this cycle must
// not receive a fresh batch.
func (h *PipelineHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	completion, err := h.completion.CheckAndCompleteCampaigns(ctx)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	enqueued, errored := h.queue.FanOutActive(ctx)

	WriteData(w, http.StatusOK, map[string]int{
		"campaigns_completed": completion.Completed,
		"completion_errors":   completion.Errors,
		"jobs_enqueued":       enqueued,
		"campaign_errors":     errored,
	}, nil)
}

// processRequest is the optional body for Process
type processRequest struct {
	MaxJobs int `json:"max_jobs"`
}

// Process handles POST /v1/pipeline/process.
// Runs one orchestrator cycle. Per-job failures land in the retried/failed
// counters, not in the HTTP status.
func (h *PipelineHandler) Process(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	maxJobs := h.maxJobs
	if r.ContentLength > 0 {
		var req processRequest
		if err := DecodeJSON(r, &req); err != nil {
			WriteError(w, model.NewInvalidInputError("invalid request body"))
			return
		}
		if req.MaxJobs > 0 {
			maxJobs = req.MaxJobs
		}
	}

	result, err := h.orch.ProcessJobs(ctx, maxJobs)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, result, nil)
}

// dispatchRequest is the optional body for Dispatch
type dispatchRequest struct {
	Limit int `json:"limit"`
}

// Dispatch handles POST /v1/alerts/dispatch.
// Sends pending alerts up to the cycle limit, honoring per-campaign spacing.
func (h *PipelineHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := h.sendLimit
	if r.ContentLength > 0 {
		var req dispatchRequest
		if err := DecodeJSON(r, &req); err != nil {
			WriteError(w, model.NewInvalidInputError("invalid request body"))
			return
		}
		if req.Limit > 0 {
			limit = req.Limit
		}
	}

	result, err := h.alerts.SendAlerts(ctx, limit)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, result, nil)
}

// CompleteExpired handles POST /v1/campaigns/complete-expired
func (h *PipelineHandler) CompleteExpired(w http.ResponseWriter, r *http.Request) {
	result, err := h.completion.CheckAndCompleteCampaigns(r.Context())
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, result, nil)
}

// enqueueRequest is the body for Enqueue
type enqueueRequest struct {
	CampaignID string           `json:"campaign_id"`
	Kind       model.JobKind    `json:"kind"`
	Payload    model.JobPayload `json:"payload"`
}

// Enqueue handles POST /v1/jobs
func (h *PipelineHandler) Enqueue(w http.ResponseWriter, r *http.Request) {
	var req enqueueRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewInvalidInputError("invalid request body"))
		return
	}

	job, err := h.queue.Enqueue(r.Context(), req.CampaignID, req.Kind, req.Payload)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, job, nil)
}

// EnqueueCampaign handles POST /v1/campaigns/{campaignId}/jobs
func (h *PipelineHandler) EnqueueCampaign(w http.ResponseWriter, r *http.Request) {
	campaignID := r.PathValue("campaignId")

	enqueued, err := h.queue.EnqueueCampaignJobs(r.Context(), campaignID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, map[string]int{"jobs_enqueued": enqueued}, nil)
}

// Stats handles GET /v1/jobs/stats
func (h *PipelineHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.queue.Stats(r.Context())
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, stats, nil)
}
