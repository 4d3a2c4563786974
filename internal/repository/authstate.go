package repository

import (
	"context"
	"errors"
	"time"

	"github.com/beaconlabs/beacon/internal/database"
	"github.com/beaconlabs/beacon/internal/model"
)

// AuthStateRepository stores OAuth/PKCE handshake state in the document store
// keyed by a random token, so any instance can finish a handshake another
// instance started.
type AuthStateRepository struct {
	db database.Database
}

// NewAuthStateRepository creates a new auth state repository
func NewAuthStateRepository(db database.Database) *AuthStateRepository {
	return &AuthStateRepository{db: db}
}

// Create persists a new handshake state row
func (r *AuthStateRepository) Create(ctx context.Context, state *model.AuthState) error {
	query := `
		CREATE auth_state SET
			token = $token,
			provider = $provider,
			verifier = $verifier,
			redirect_uri = $redirect_uri,
			expires_on = <datetime>$expires_on,
			created_on = time::now()
	`
	vars := map[string]interface{}{
		"token":        state.Token,
		"provider":     state.Provider,
		"verifier":     state.Verifier,
		"redirect_uri": state.RedirectURI,
		"expires_on":   state.ExpiresOn.UTC().Format(time.RFC3339),
	}
	return r.db.Execute(ctx, query, vars)
}

// Consume deletes and returns an unexpired state row in one statement, so a
// token can only ever be redeemed once.
func (r *AuthStateRepository) Consume(ctx context.Context, token string) (*model.AuthState, error) {
	query := `
		DELETE auth_state
		WHERE token = $token
		  AND expires_on > time::now()
		RETURN BEFORE
	`
	result, err := r.db.QueryOne(ctx, query, map[string]interface{}{"token": token})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	row, ok := asRow(result)
	if !ok {
		return nil, errors.New("unexpected auth state result shape")
	}

	return &model.AuthState{
		Token:       getString(row, "token"),
		Provider:    getString(row, "provider"),
		Verifier:    getString(row, "verifier"),
		RedirectURI: getString(row, "redirect_uri"),
		ExpiresOn:   getTime(row, "expires_on"),
		CreatedOn:   getTime(row, "created_on"),
	}, nil
}

// PurgeExpired drops state rows that can no longer be consumed
func (r *AuthStateRepository) PurgeExpired(ctx context.Context) error {
	query := `DELETE auth_state WHERE expires_on <= time::now()`
	return r.db.Execute(ctx, query, nil)
}
