package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/techcabinet/apiserver/internal/services"
)

// ItemHandler provides HTTP handlers for the item catalog.
type ItemHandler struct {
	inventory *services.InventoryService
}

func NewItemHandler(inventory *services.InventoryService) *ItemHandler {
	return &ItemHandler{inventory: inventory}
}

// ItemRouter registers item routes on the given router. Reads are
// public; every mutation requires an admin.
func ItemRouter(r chi.Router, inventory *services.InventoryService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewItemHandler(inventory)

	r.Get("/", handler.ListItems)
	r.With(authMiddleware, requireAdmin).Post("/", handler.CreateItem)
	r.Route("/{name}", func(r chi.Router) {
		r.With(authMiddleware, requireAdmin).Delete("/", handler.DeleteItem)
		r.With(authMiddleware, requireAdmin).Post("/adjust", handler.AdjustItem)
	})
}

func (h *ItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.inventory.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ItemHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	info, _ := authFromContext(r.Context())

	var req CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "missing item name")
		return
	}

	items, err := h.inventory.Create(r.Context(), info.User.ID, req.Name, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidQuantity):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrDuplicateItem):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to create item")
		}
		return
	}
	writeJSON(w, http.StatusCreated, items)
}

func (h *ItemHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	items, err := h.inventory.Delete(r.Context(), name)
	if err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ItemHandler) AdjustItem(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req AdjustItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	item, err := h.inventory.Adjust(r.Context(), name, req.Delta)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrItemNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, services.ErrInsufficientInventory):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to adjust item")
		}
		return
	}
	writeJSON(w, http.StatusOK, item)
}

type CreateItemRequest struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type AdjustItemRequest struct {
	Delta int `json:"delta"`
}
