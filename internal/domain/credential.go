package domain

import "time"

// Credential is the account's session bundle. Created on sign-in, swapped
// wholesale on refresh, destroyed on sign-out or irrecoverable refresh
// failure. Never mutate a shared instance; replace it.
type Credential struct {
	Handle       string    `json:"handle"`
	DID          string    `json:"did"`
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	SessionID    string    `json:"sessionId,omitempty"`
	Expiry       time.Time `json:"expiry"`
}

// ExpiresWithin reports whether the credential is expired or will expire
// inside the given window.
func (c *Credential) ExpiresWithin(window time.Duration) bool {
	if c.Expiry.IsZero() {
		return false
	}
	return time.Now().Add(window).After(c.Expiry)
}
