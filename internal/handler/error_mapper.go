package handler

import (
	"errors"

	"github.com/beaconlabs/beacon/internal/database"
	"github.com/beaconlabs/beacon/internal/model"
	"github.com/beaconlabs/beacon/internal/service"
)

// MapServiceError converts a service error to a ProblemDetails response.
// This centralizes error handling logic for all handlers, ensuring consistent
// HTTP status codes and error messages across the API.
func MapServiceError(err error) *model.ProblemDetails {
	if err == nil {
		return nil
	}

	switch {
	// ===== Not Found Errors → 404 =====
	case errors.Is(err, service.ErrCampaignNotFound):
		return model.NewNotFoundError("campaign")
	case errors.Is(err, service.ErrStateNotFound):
		return model.NewNotFoundError("auth state")

	// ===== Input Errors → 400 =====
	case errors.Is(err, service.ErrCampaignIDRequired),
		errors.Is(err, service.ErrInvalidJobKind),
		errors.Is(err, service.ErrInvalidJobPayload),
		errors.Is(err, service.ErrMaxJobsRequired),
		errors.Is(err, service.ErrSendLimitRequired):
		return model.NewInvalidInputError(err.Error())

	// ===== State Conflicts → 409 =====
	case errors.Is(err, service.ErrCampaignNotActive),
		errors.Is(err, service.ErrNoMonitorableUnits):
		return model.NewConflictError(err.Error())

	// ===== Store Unreachable → 503 =====
	case errors.Is(err, database.ErrConnection):
		return model.NewDatabaseError()

	// ===== Default → 500 =====
	default:
		return model.NewInternalError("")
	}
}
