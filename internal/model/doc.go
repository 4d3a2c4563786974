// Package model defines domain entities and data structures for the Beacon API.
//
// The model package contains all struct definitions for domain objects and
// error definitions. Models are used across all layers of the application.
//
// # Domain Entities
//
// Core domain entities include:
//
//   - Campaign: A monitored campaign with a [start_date, end_date] window
//   - TrackedPost: One platform post a campaign follows
//   - Engagement: A recorded interaction with a tracked post
//   - Job: A unit of deferred, retryable pipeline work
//   - Alert: A pending or sent notification tied to one engagement
//   - MetricSnapshot: An hourly rollup of campaign engagement metrics
//
// # JSON Serialization
//
// All models use json struct tags for API serialization:
//
//	type Alert struct {
//	    ID         string `json:"id"`
//	    CampaignID string `json:"campaign_id"`
//	}
//
// # Error Types
//
// RFC 9457 Problem Details errors are defined in errors.go:
//
//	type ProblemDetails struct {
//	    Type   string `json:"type"`
//	    Title  string `json:"title"`
//	    Status int    `json:"status"`
//	    Detail string `json:"detail"`
//	}
package model
