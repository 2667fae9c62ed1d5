package auth

import (
	"context"
	"time"

	"github.com/techcabinet/apiserver/types"
)

// RevocationStore is the durable blacklist of revoked tokens.
type RevocationStore interface {
	Revoke(ctx context.Context, rt types.RevokedToken) (types.RevokedToken, error)
	IsRevoked(ctx context.Context, userID int, token string) (bool, error)
	Prune(ctx context.Context) (int64, error)
}

// RevocationCache is an optional fast path in front of the store.
// A false result is only a cache miss, never an authority.
type RevocationCache interface {
	MarkRevoked(ctx context.Context, userID int, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, userID int, token string) (bool, error)
}

// Revocations combines the durable blacklist with the cache. The store
// is authoritative; the cache holds revoked tokens for their remaining
// lifetime so hot-path checks skip the database.
type Revocations struct {
	store RevocationStore
	cache RevocationCache
}

// NewRevocations constructs the revocation checker. cache may be nil.
func NewRevocations(store RevocationStore, cache RevocationCache) *Revocations {
	return &Revocations{store: store, cache: cache}
}

// Revoke blacklists a token until its natural expiry.
func (r *Revocations) Revoke(ctx context.Context, userID int, token string, expiresAt time.Time) error {
	now := time.Now()
	if _, err := r.store.Revoke(ctx, types.RevokedToken{
		UserID:    userID,
		Token:     token,
		RevokedAt: now,
		ExpiresAt: expiresAt,
	}); err != nil {
		return err
	}
	if r.cache != nil {
		if ttl := time.Until(expiresAt); ttl > 0 {
			// Cache population is best effort; the store already has it.
			_ = r.cache.MarkRevoked(ctx, userID, token, ttl)
		}
	}
	// Lazy cleanup: entries past their natural expiry would be rejected
	// by the token check anyway, so drop them while we are writing.
	_, _ = r.store.Prune(ctx)
	return nil
}

// IsRevoked reports whether a token is on the blacklist.
func (r *Revocations) IsRevoked(ctx context.Context, userID int, token string) (bool, error) {
	if r.cache != nil {
		if revoked, err := r.cache.IsRevoked(ctx, userID, token); err == nil && revoked {
			return true, nil
		}
	}
	return r.store.IsRevoked(ctx, userID, token)
}
