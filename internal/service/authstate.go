package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/beaconlabs/beacon/internal/model"
)

// AuthStateService issues and redeems OAuth/PKCE handshake state. State
// lives in the store keyed by a random token, not in process memory, so a
// handshake started on one instance can finish on another.
type AuthStateService struct {
	stateRepo AuthStateStore
	ttl       time.Duration
	now       func() time.Time
}

// AuthStateServiceConfig holds configuration for the auth state service
type AuthStateServiceConfig struct {
	StateRepo AuthStateStore
	TTL       time.Duration // How long issued state stays consumable (default 10m)
	Now       func() time.Time
}

// NewAuthStateService creates a new auth state service
func NewAuthStateService(cfg AuthStateServiceConfig) *AuthStateService {
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = 10 * time.Minute
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &AuthStateService{
		stateRepo: cfg.StateRepo,
		ttl:       ttl,
		now:       now,
	}
}

// Issue creates a state row for a new handshake and returns its token
func (s *AuthStateService) Issue(ctx context.Context, provider, verifier, redirectURI string) (*model.AuthState, error) {
	state := &model.AuthState{
		Token:       uuid.New().String(),
		Provider:    provider,
		Verifier:    verifier,
		RedirectURI: redirectURI,
		ExpiresOn:   s.now().Add(s.ttl),
	}
	if err := s.stateRepo.Create(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

// Redeem consumes a token exactly once and returns the handshake state.
// Expired or already-consumed tokens return ErrStateNotFound.
func (s *AuthStateService) Redeem(ctx context.Context, token string) (*model.AuthState, error) {
	state, err := s.stateRepo.Consume(ctx, token)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, ErrStateNotFound
	}
	return state, nil
}

// PurgeExpired drops state rows past their TTL; called opportunistically by
// the pipeline trigger cycle.
func (s *AuthStateService) PurgeExpired(ctx context.Context) error {
	return s.stateRepo.PurgeExpired(ctx)
}
