package model

import (
	"strings"
	"testing"
	"time"
)

// ============================================================================
// Job Kinds
// ============================================================================

func TestValidKind_KnownKinds(t *testing.T) {
	t.Parallel()

	for _, kind := range []JobKind{JobKindMetricsRefresh, JobKindEngagerDiscovery, JobKindAlertFormation, JobKindSnapshot} {
		if !ValidKind(kind) {
			t.Errorf("expected %s to be a valid kind", kind)
		}
	}
}

func TestValidKind_UnknownKind(t *testing.T) {
	t.Parallel()

	if ValidKind("coffee_run") {
		t.Error("expected unknown kind to be invalid")
	}
}

func TestPostScoped_OnlyPostKinds(t *testing.T) {
	t.Parallel()

	if !JobKindMetricsRefresh.PostScoped() || !JobKindEngagerDiscovery.PostScoped() {
		t.Error("expected metrics and discovery kinds to be post scoped")
	}
	if JobKindAlertFormation.PostScoped() || JobKindSnapshot.PostScoped() {
		t.Error("expected formation and snapshot kinds to be campaign scoped")
	}
}

// ============================================================================
// Payload Validation
// ============================================================================

func TestPayloadValidate_PostScopedRequiresPostID(t *testing.T) {
	t.Parallel()

	err := JobPayload{}.Validate(JobKindMetricsRefresh)
	if err == nil || !strings.Contains(err.Error(), "post_id") {
		t.Errorf("expected post_id error, got: %v", err)
	}

	if err := (JobPayload{PostID: "tracked_post:1"}).Validate(JobKindMetricsRefresh); err != nil {
		t.Errorf("expected post-scoped payload with post_id to validate, got: %v", err)
	}
}

func TestPayloadValidate_CampaignScopedRejectsPostID(t *testing.T) {
	t.Parallel()

	err := JobPayload{PostID: "tracked_post:1"}.Validate(JobKindAlertFormation)
	if err == nil || !strings.Contains(err.Error(), "post_id") {
		t.Errorf("expected post_id rejection, got: %v", err)
	}

	if err := (JobPayload{}).Validate(JobKindSnapshot); err != nil {
		t.Errorf("expected empty campaign-scoped payload to validate, got: %v", err)
	}
}

func TestPayloadValidate_UnknownKind(t *testing.T) {
	t.Parallel()

	if err := (JobPayload{}).Validate("coffee_run"); err == nil {
		t.Error("expected unknown kind to be rejected")
	}
}

// ============================================================================
// Status Machine
// ============================================================================

func TestJobStatus_TerminalStates(t *testing.T) {
	t.Parallel()

	if !JobStatusCompleted.Terminal() || !JobStatusFailed.Terminal() {
		t.Error("expected completed and failed to be terminal")
	}
	for _, s := range []JobStatus{JobStatusPending, JobStatusProcessing, JobStatusRetrying} {
		if s.Terminal() {
			t.Errorf("expected %s to admit further transitions", s)
		}
	}
}

// ============================================================================
// Backoff
// ============================================================================

func TestBackoffDelay_DoublesPerRetry(t *testing.T) {
	t.Parallel()

	cases := []struct {
		retryCount int
		want       time.Duration
	}{
		{1, 2 * time.Minute},
		{2, 4 * time.Minute},
		{3, 8 * time.Minute},
	}
	for _, tc := range cases {
		if got := BackoffDelay(tc.retryCount); got != tc.want {
			t.Errorf("BackoffDelay(%d) = %v, want %v", tc.retryCount, got, tc.want)
		}
	}
}
