package model

import "time"

// AuthState is a store-backed OAuth/PKCE handshake record keyed by a random
// token. Keeping it in the store (rather than process memory) lets any
// instance finish a handshake another instance started.
type AuthState struct {
	Token       string    `json:"token"`
	Provider    string    `json:"provider"`
	Verifier    string    `json:"verifier"` // PKCE code verifier
	RedirectURI string    `json:"redirect_uri"`
	ExpiresOn   time.Time `json:"expires_on"`
	CreatedOn   time.Time `json:"created_on"`
}

// Expired reports whether the state can no longer be consumed
func (s *AuthState) Expired(now time.Time) bool {
	return now.After(s.ExpiresOn)
}
