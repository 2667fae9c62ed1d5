package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/techcabinet/apiserver/internal/auth"
	"github.com/techcabinet/apiserver/internal/services"
	"github.com/techcabinet/apiserver/internal/store"
	"github.com/techcabinet/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

// CheckoutHandler provides HTTP handlers for the reservation
// lifecycle: reserve, admin accept, admin return, and listing.
type CheckoutHandler struct {
	checkout    *services.CheckoutService
	userService *services.UserService
	policy      *auth.Policy
}

func NewCheckoutHandler(checkout *services.CheckoutService, userService *services.UserService, policy *auth.Policy) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, userService: userService, policy: policy}
}

// TransactionRouter registers transaction routes on the given router.
// Listing is open to any caller (anonymous callers see an empty list);
// accept and return are admin-only.
func TransactionRouter(r chi.Router, handler *CheckoutHandler, authMiddleware func(http.Handler) http.Handler) {
	r.Get("/", handler.ListTransactions)
	r.Route("/{transactionID}", func(r chi.Router) {
		r.With(authMiddleware, requireAdmin).Post("/accept", handler.AcceptTransaction)
		r.With(authMiddleware, requireAdmin).Post("/return", handler.ReturnTransaction)
	})
}

// Reserve creates a reservation, provisioning a self-service account on
// first contact. Known identities must present a valid token; unknown
// ones must supply name, email, and a password.
func (h *CheckoutHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	var req ReserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.StudentID = strings.TrimSpace(req.StudentID)
	req.Item = strings.TrimSpace(req.Item)
	if req.StudentID == "" || req.Item == "" {
		writeError(w, http.StatusBadRequest, "missing required fields")
		return
	}
	// Quantity is checked before the reserver is resolved so a bad
	// request never provisions a self-service account.
	if req.Quantity <= 0 {
		writeError(w, http.StatusBadRequest, services.ErrInvalidQuantity.Error())
		return
	}

	token, _ := bearerToken(r)
	level, user, _ := h.policy.Classify(r.Context(), req.StudentID, token)
	if level == types.LevelAnonymous {
		resolved, err := h.resolveReserver(w, r, req)
		if err != nil {
			return // response already written
		}
		user = resolved
	}

	items, err := h.checkout.Reserve(r.Context(), user.ID, req.Item, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidQuantity):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrItemNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, services.ErrInsufficientInventory):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to reserve item")
		}
		return
	}

	writeJSON(w, http.StatusOK, items)
}

// resolveReserver handles the anonymous path of Reserve: a known
// identity without a valid token is rejected, an unknown one is
// self-registered when the request carries full account details.
// On failure the error response has been written already.
func (h *CheckoutHandler) resolveReserver(w http.ResponseWriter, r *http.Request, req ReserveRequest) (types.User, error) {
	_, err := h.userService.GetByStudentID(r.Context(), req.StudentID)
	if err == nil {
		writeError(w, http.StatusUnauthorized, services.ErrAuthenticationRequired.Error())
		return types.User{}, services.ErrAuthenticationRequired
	}
	if !errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "failed to look up account")
		return types.User{}, err
	}

	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	if req.Password == "" || email == "" || name == "" {
		writeError(w, http.StatusBadRequest, services.ErrAccountRequired.Error())
		return types.User{}, services.ErrAccountRequired
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create account")
		return types.User{}, err
	}

	user, err := h.userService.Create(r.Context(), types.User{
		StudentID:    req.StudentID,
		Name:         name,
		Email:        email,
		PasswordHash: string(hashed),
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			writeError(w, http.StatusConflict, "account already exists")
			return types.User{}, err
		}
		writeError(w, http.StatusInternalServerError, "failed to create account")
		return types.User{}, err
	}
	return user, nil
}

// ListTransactions returns the transactions visible to the caller:
// everything for admins, their own for regular users, and an empty
// list for anonymous callers.
func (h *CheckoutHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	var level types.AuthLevel
	var user types.User
	if token, err := bearerToken(r); err == nil {
		level, user, _ = h.policy.ClassifyToken(r.Context(), token)
	}

	transactions, err := h.checkout.ListFor(r.Context(), level, user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	writeJSON(w, http.StatusOK, transactions)
}

func (h *CheckoutHandler) AcceptTransaction(w http.ResponseWriter, r *http.Request) {
	info, _ := authFromContext(r.Context())

	id, err := parseTransactionID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	transactions, err := h.checkout.Accept(r.Context(), info.User.ID, id)
	if err != nil {
		if errors.Is(err, services.ErrTransactionNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to accept transaction")
		return
	}
	writeJSON(w, http.StatusOK, transactions)
}

func (h *CheckoutHandler) ReturnTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := parseTransactionID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	transactions, err := h.checkout.Return(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrTransactionNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to return transaction")
		return
	}
	writeJSON(w, http.StatusOK, transactions)
}

func parseTransactionID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "transactionID")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, errors.New("invalid transaction id")
	}
	return id, nil
}

type ReserveRequest struct {
	StudentID string `json:"student_id"`
	Item      string `json:"item"`
	Quantity  int    `json:"quantity"`

	// Account details for first-time self-registration.
	Password string `json:"password,omitempty"`
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
}
