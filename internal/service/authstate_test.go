package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/beaconlabs/beacon/internal/model"
)

func TestIssue_CreatesTokenWithTTL(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	var stored *model.AuthState
	states := &mockAuthStateStore{
		createFunc: func(ctx context.Context, state *model.AuthState) error {
			stored = state
			return nil
		},
	}

	svc := NewAuthStateService(AuthStateServiceConfig{
		StateRepo: states,
		TTL:       10 * time.Minute,
		Now:       fixedClock(now),
	})

	state, err := svc.Issue(ctx, "bluesky", "verifier-abc", "https://app.example/callback")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.Token == "" {
		t.Error("expected a generated token")
	}
	if stored == nil || stored.Token != state.Token {
		t.Error("expected state persisted with the issued token")
	}
	if want := now.Add(10 * time.Minute); !state.ExpiresOn.Equal(want) {
		t.Errorf("expected expiry %v, got %v", want, state.ExpiresOn)
	}
	if state.Provider != "bluesky" || state.Verifier != "verifier-abc" {
		t.Errorf("unexpected state fields: %+v", state)
	}
}

func TestIssue_TokensAreUnique(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := NewAuthStateService(AuthStateServiceConfig{StateRepo: &mockAuthStateStore{}})

	a, err := svc.Issue(ctx, "bluesky", "v1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := svc.Issue(ctx, "bluesky", "v2", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Token == b.Token {
		t.Error("expected distinct tokens per handshake")
	}
}

func TestRedeem_UnknownToken_Rejected(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := NewAuthStateService(AuthStateServiceConfig{StateRepo: &mockAuthStateStore{}})

	if _, err := svc.Redeem(ctx, "nope"); !errors.Is(err, ErrStateNotFound) {
		t.Errorf("expected ErrStateNotFound, got %v", err)
	}
}

func TestRedeem_ReturnsConsumedState(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var consumedToken string
	states := &mockAuthStateStore{
		consumeFunc: func(ctx context.Context, token string) (*model.AuthState, error) {
			consumedToken = token
			return &model.AuthState{Token: token, Provider: "bluesky", Verifier: "v"}, nil
		},
	}

	svc := NewAuthStateService(AuthStateServiceConfig{StateRepo: states})

	state, err := svc.Redeem(ctx, "token-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if consumedToken != "token-1" || state.Verifier != "v" {
		t.Errorf("unexpected redeem result: %+v", state)
	}
}

func TestPurgeExpired_Passthrough(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	wantErr := errors.New("purge failed")
	states := &mockAuthStateStore{
		purgeExpiredFunc: func(ctx context.Context) error { return wantErr },
	}

	svc := NewAuthStateService(AuthStateServiceConfig{StateRepo: states})

	if err := svc.PurgeExpired(ctx); !errors.Is(err, wantErr) {
		t.Errorf("expected purge error surfaced, got %v", err)
	}
}
