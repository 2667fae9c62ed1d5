package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/techcabinet/apiserver/types"
)

// RevokedTokenRepository handles persistence for the token blacklist.
type RevokedTokenRepository struct {
	db *sql.DB
}

func NewRevokedTokenRepository(db *sql.DB) *RevokedTokenRepository {
	return &RevokedTokenRepository{db: db}
}

func (r *RevokedTokenRepository) Revoke(ctx context.Context, rt types.RevokedToken) (types.RevokedToken, error) {
	const query = `
		INSERT INTO revoked_tokens (user_id, token, revoked_at, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		rt.UserID,
		rt.Token,
		rt.RevokedAt,
		rt.ExpiresAt,
	).Scan(&rt.ID); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			// Revoking twice is harmless.
			return rt, nil
		}
		return types.RevokedToken{}, err
	}
	return rt, nil
}

func (r *RevokedTokenRepository) IsRevoked(ctx context.Context, userID int, token string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM revoked_tokens WHERE user_id = $1 AND token = $2
		)`
	var revoked bool
	if err := r.db.QueryRowContext(ctx, query, userID, token).Scan(&revoked); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return revoked, nil
}

// Prune deletes blacklist entries whose tokens have passed their
// natural expiry; expired tokens are rejected regardless.
func (r *RevokedTokenRepository) Prune(ctx context.Context) (int64, error) {
	const query = `DELETE FROM revoked_tokens WHERE expires_at < NOW()`
	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
