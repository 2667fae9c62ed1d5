package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/techcabinet/apiserver/internal/auth"
	"github.com/techcabinet/apiserver/internal/services"
	"github.com/techcabinet/apiserver/internal/store"
	"github.com/techcabinet/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler provides registration, login, logout, and token
// validation endpoints.
type AuthHandler struct {
	userService *services.UserService
	tokens      *auth.TokenService
	revocations *auth.Revocations
	policy      *auth.Policy
	adminSecret string
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(
	userService *services.UserService,
	tokens *auth.TokenService,
	revocations *auth.Revocations,
	policy *auth.Policy,
	adminSecret string,
) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		tokens:      tokens,
		revocations: revocations,
		policy:      policy,
		adminSecret: adminSecret,
	}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, handler *AuthHandler) {
	r.Post("/register", handler.Register)
	r.Post("/login", handler.Login)
	r.Get("/validate", handler.Validate)
	r.With(handler.RequireAuth).Post("/logout", handler.Logout)
	r.With(handler.RequireAuth).Post("/password", handler.ChangePassword)
	r.With(handler.RequireAuth).Get("/me", handler.Me)
}

// RequireAuth classifies the bearer token and injects the caller into
// the request context, rejecting anonymous callers. The classification
// happens before the wrapped handler runs, so no state is touched for
// unauthenticated requests.
func (h *AuthHandler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := bearerToken(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		level, user, err := h.policy.ClassifyToken(r.Context(), token)
		if level == types.LevelAnonymous {
			writeError(w, http.StatusUnauthorized, classifyMessage(err))
			return
		}

		ctx := withAuth(r.Context(), authInfo{Level: level, User: user})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func classifyMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return "token expired"
	case errors.Is(err, auth.ErrTokenRevoked):
		return "token revoked"
	default:
		return "unauthorized"
	}
}

// Register creates a new user account and returns a bearer token.
// The account is an admin only when the configured admin secret is
// presented.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.StudentID = strings.TrimSpace(req.StudentID)
	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if req.StudentID == "" || req.Email == "" || req.Name == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing required fields")
		return
	}

	isAdmin := false
	if req.AdminSecret != "" {
		if h.adminSecret == "" || req.AdminSecret != h.adminSecret {
			writeError(w, http.StatusForbidden, "invalid admin secret")
			return
		}
		isAdmin = true
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	user, err := h.userService.Create(r.Context(), types.User{
		StudentID:    req.StudentID,
		Name:         req.Name,
		Email:        req.Email,
		IsAdmin:      isAdmin,
		PasswordHash: string(hashed),
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			writeError(w, http.StatusConflict, "account already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	token, err := h.tokens.Issue(user.StudentID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create token")
		return
	}

	writeJSON(w, http.StatusCreated, AuthResponse{Token: token, User: user})
}

// Login verifies credentials and returns a bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.StudentID = strings.TrimSpace(req.StudentID)
	if req.StudentID == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing credentials")
		return
	}

	user, err := h.userService.GetByStudentID(r.Context(), req.StudentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to authenticate")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.tokens.Issue(user.StudentID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create token")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{Token: token, User: user})
}

// Logout blacklists the presented token until its natural expiry.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	info, ok := authFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	token, err := bearerToken(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	_, expires, err := h.tokens.Parse(token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.revocations.Revoke(r.Context(), info.User.ID, token, expires); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to log out")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ChangePassword updates the caller's password and revokes the token
// that made the change.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	info, ok := authFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "missing required fields")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(info.User.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update password")
		return
	}
	if err := h.userService.SetPassword(r.Context(), info.User.ID, string(hashed)); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update password")
		return
	}

	token, err := bearerToken(r)
	if err == nil {
		if _, expires, parseErr := h.tokens.Parse(token); parseErr == nil {
			_ = h.revocations.Revoke(r.Context(), info.User.ID, token, expires)
		}
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Validate reports the auth level of an identity and token pair:
// 0 anonymous, 1 regular, 2 admin.
func (h *AuthHandler) Validate(w http.ResponseWriter, r *http.Request) {
	studentID := strings.TrimSpace(r.URL.Query().Get("student_id"))
	token, _ := bearerToken(r)

	level, _, _ := h.policy.Classify(r.Context(), studentID, token)
	writeJSON(w, http.StatusOK, ValidateResponse{Level: int(level)})
}

// Me returns the current authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	info, ok := authFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, info.User)
}

type RegisterRequest struct {
	StudentID   string `json:"student_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	AdminSecret string `json:"admin_secret,omitempty"`
}

type LoginRequest struct {
	StudentID string `json:"student_id"`
	Password  string `json:"password"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type AuthResponse struct {
	Token string     `json:"token"`
	User  types.User `json:"user"`
}

type ValidateResponse struct {
	Level int `json:"level"`
}
