package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/techcabinet/apiserver/types"
)

type contextKey string

const contextAuthKey contextKey = "auth"

// authInfo is the classified caller stored in the request context by
// the RequireAuth middleware.
type authInfo struct {
	Level types.AuthLevel
	User  types.User
}

func authFromContext(ctx context.Context) (authInfo, bool) {
	info, ok := ctx.Value(contextAuthKey).(authInfo)
	return info, ok
}

func withAuth(ctx context.Context, info authInfo) context.Context {
	return context.WithValue(ctx, contextAuthKey, info)
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// Healthz reports liveness.
func Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func bearerToken(r *http.Request) (string, error) {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if auth == "" {
		return "", errors.New("missing authorization")
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("invalid authorization")
	}
	return token, nil
}

// requireAdmin gates a route on the admin level established by
// RequireAuth. It never runs before authentication, so a missing
// context entry is a wiring bug reported as unauthorized.
func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info, ok := authFromContext(r.Context())
		if !ok || info.Level == types.LevelAnonymous {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if info.Level != types.LevelAdmin {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
