package model

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ErrorCode represents API error codes
type ErrorCode int

const (
	// Resource errors (3xxx)
	ErrCodeNotFound ErrorCode = 3001
	ErrCodeConflict ErrorCode = 3003

	// Validation errors (4xxx)
	ErrCodeValidation   ErrorCode = 4001
	ErrCodeInvalidInput ErrorCode = 4002

	// Internal errors (5xxx)
	ErrCodeInternal ErrorCode = 5001
	ErrCodeDatabase ErrorCode = 5002
)

// ProblemDetails represents RFC 9457 Problem Details for HTTP APIs
type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	// Extension fields
	Code ErrorCode `json:"code,omitempty"`
}

// Error implements the error interface
func (p *ProblemDetails) Error() string {
	return fmt.Sprintf("[%d] %s: %s", p.Status, p.Title, p.Detail)
}

// WriteJSON writes the problem details as JSON response
func (p *ProblemDetails) WriteJSON(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

const problemTypeBase = "https://beacon.beaconlabs.io/errors/"

func problem(slug, title string, status int, detail string, code ErrorCode) *ProblemDetails {
	return &ProblemDetails{
		Type:   problemTypeBase + slug,
		Title:  title,
		Status: status,
		Detail: detail,
		Code:   code,
	}
}

// Common error constructors

func NewNotFoundError(resource string) *ProblemDetails {
	return problem("not-found", "Not Found", http.StatusNotFound,
		fmt.Sprintf("%s not found", resource), ErrCodeNotFound)
}

func NewInvalidInputError(detail string) *ProblemDetails {
	return problem("invalid-input", "Invalid Input", http.StatusBadRequest,
		detail, ErrCodeInvalidInput)
}

func NewConflictError(detail string) *ProblemDetails {
	return problem("conflict", "Conflict", http.StatusConflict,
		detail, ErrCodeConflict)
}

func NewInternalError(detail string) *ProblemDetails {
	if detail == "" {
		detail = "An unexpected error occurred"
	}
	return problem("internal", "Internal Server Error", http.StatusInternalServerError,
		detail, ErrCodeInternal)
}

// NewRateLimitError carries no extension code; the Retry-After header is the
// actionable part of a 429.
func NewRateLimitError(retryAfter int) *ProblemDetails {
	return problem("rate-limited", "Too Many Requests", http.StatusTooManyRequests,
		fmt.Sprintf("Rate limit exceeded. Retry after %d seconds", retryAfter), 0)
}

func NewDatabaseError() *ProblemDetails {
	return problem("database", "Service Unavailable", http.StatusServiceUnavailable,
		"datastore unreachable", ErrCodeDatabase)
}
