package types

import "time"

// RevokedToken is a blacklist entry invalidating a bearer token before
// its natural expiry, created on logout or password change.
type RevokedToken struct {
	ID int `json:"id" db:"id"`

	// UserID references the user the token was issued to.
	UserID int `json:"user_id" db:"user_id"`

	// Token is the revoked token value.
	Token string `json:"token" db:"token"`

	// RevokedAt is the timestamp of revocation.
	RevokedAt time.Time `json:"revoked_at" db:"revoked_at"`

	// ExpiresAt is the token's natural expiry. Entries past this point
	// are safe to prune, since the token would be rejected anyway.
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
}
