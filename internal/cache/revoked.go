package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevokedTokens is a Redis-backed cache of blacklisted tokens, keyed
// per user with the token's remaining lifetime as TTL. Entries expire
// on their own once the token would be rejected as stale anyway.
type RevokedTokens struct {
	rdb *redis.Client
}

func NewRevokedTokens(rdb *redis.Client) *RevokedTokens {
	return &RevokedTokens{rdb: rdb}
}

func revokedKey(userID int, token string) string {
	return fmt.Sprintf("revoked:%d:%s", userID, token)
}

func (c *RevokedTokens) MarkRevoked(ctx context.Context, userID int, token string, ttl time.Duration) error {
	return c.rdb.Set(ctx, revokedKey(userID, token), "1", ttl).Err()
}

func (c *RevokedTokens) IsRevoked(ctx context.Context, userID int, token string) (bool, error) {
	err := c.rdb.Get(ctx, revokedKey(userID, token)).Err()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
