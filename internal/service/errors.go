package service

import "errors"

// Centralized service layer errors.
// All errors returned by service methods are defined here for consistency
// and to make error handling in handlers predictable.

// ===== Queue Errors =====
var (
	ErrCampaignNotFound   = errors.New("campaign not found")
	ErrCampaignNotActive  = errors.New("campaign is not active")
	ErrCampaignIDRequired = errors.New("campaign id is required")
	ErrInvalidJobKind     = errors.New("invalid job kind")
	ErrInvalidJobPayload  = errors.New("invalid job payload")
	ErrNoMonitorableUnits = errors.New("campaign has no tracked posts")
)

// ===== Orchestrator Errors =====
var (
	ErrMaxJobsRequired = errors.New("max jobs must be positive")
	ErrClaimLost       = errors.New("job claimed by another worker")
)

// ===== Alert Errors =====
var (
	ErrSendLimitRequired = errors.New("send limit must be positive")
)

// ===== Auth State Errors =====
var (
	ErrStateNotFound = errors.New("auth state not found or expired")
)
