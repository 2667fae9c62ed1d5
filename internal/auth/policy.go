package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/techcabinet/apiserver/internal/store"
	"github.com/techcabinet/apiserver/types"
)

// ErrNotAuthenticated is the generic classification failure for absent
// or mismatched credentials.
var ErrNotAuthenticated = errors.New("not authenticated")

// CredentialStore looks up stored identities for classification.
type CredentialStore interface {
	GetByStudentID(ctx context.Context, studentID string) (types.User, error)
}

// Policy derives an auth level from an identity and bearer token pair.
// Every operation that needs authentication consults it; no handler
// re-derives its own checks.
type Policy struct {
	users   CredentialStore
	tokens  *TokenService
	revoked *Revocations
}

func NewPolicy(users CredentialStore, tokens *TokenService, revoked *Revocations) *Policy {
	return &Policy{users: users, tokens: tokens, revoked: revoked}
}

// Classify resolves the caller's auth level. On any classification
// failure the level is LevelAnonymous and the error names the reason
// (ErrNotAuthenticated, ErrTokenExpired, ErrTokenRevoked, or
// ErrTokenInvalid); storage failures are returned wrapped.
func (p *Policy) Classify(ctx context.Context, studentID, token string) (types.AuthLevel, types.User, error) {
	if studentID == "" || token == "" {
		return types.LevelAnonymous, types.User{}, ErrNotAuthenticated
	}

	user, err := p.users.GetByStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.LevelAnonymous, types.User{}, ErrNotAuthenticated
		}
		return types.LevelAnonymous, types.User{}, fmt.Errorf("lookup user: %w", err)
	}

	revoked, err := p.revoked.IsRevoked(ctx, user.ID, token)
	if err != nil {
		return types.LevelAnonymous, types.User{}, fmt.Errorf("check blacklist: %w", err)
	}
	if revoked {
		return types.LevelAnonymous, types.User{}, ErrTokenRevoked
	}

	subject, _, err := p.tokens.Parse(token)
	if err != nil {
		return types.LevelAnonymous, types.User{}, err
	}
	if subject != user.StudentID {
		return types.LevelAnonymous, types.User{}, ErrNotAuthenticated
	}

	if user.IsAdmin {
		return types.LevelAdmin, user, nil
	}
	return types.LevelRegular, user, nil
}

// ClassifyToken is Classify for callers that present only a bearer
// token; the identity is taken from the token's subject.
func (p *Policy) ClassifyToken(ctx context.Context, token string) (types.AuthLevel, types.User, error) {
	if token == "" {
		return types.LevelAnonymous, types.User{}, ErrNotAuthenticated
	}
	subject, _, err := p.tokens.Parse(token)
	if err != nil {
		return types.LevelAnonymous, types.User{}, err
	}
	return p.Classify(ctx, subject, token)
}
