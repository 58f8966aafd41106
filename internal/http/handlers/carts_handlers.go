package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"cartfleet/internal/cache"
	"cartfleet/internal/models"
	"cartfleet/internal/repository"
	"cartfleet/internal/service"
)

// CartHandlers serves the fleet CRUD and position endpoints.
type CartHandlers struct {
	carts *service.CartService
}

// NewCartHandlers returns handler set.
func NewCartHandlers(carts *service.CartService) *CartHandlers {
	return &CartHandlers{carts: carts}
}

// Create handles POST /api/carts.
func (h *CartHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var cart models.Cart
	if err := json.NewDecoder(r.Body).Decode(&cart); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := h.carts.Create(r.Context(), &cart); err != nil {
		if errors.Is(err, service.ErrInvalidCartStatus) {
			writeError(w, http.StatusBadRequest, "invalid cart status")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create cart")
		return
	}
	writeJSON(w, http.StatusCreated, cart)
}

// List handles GET /api/carts with optional status and min_battery filters.
func (h *CartHandlers) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	minBattery := 0
	if raw := r.URL.Query().Get("min_battery"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 || parsed > 100 {
			writeError(w, http.StatusBadRequest, "min_battery must be 0-100")
			return
		}
		minBattery = parsed
	}

	carts, err := h.carts.List(r.Context(), status, minBattery)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCartStatus) {
			writeError(w, http.StatusBadRequest, "invalid cart status")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch carts")
		return
	}
	writeJSON(w, http.StatusOK, carts)
}

// Get handles GET /api/carts/{id}.
func (h *CartHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid cart id")
		return
	}

	cart, err := h.carts.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			writeError(w, http.StatusNotFound, "cart not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch cart")
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

// Update handles PUT /api/carts/{id}.
func (h *CartHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid cart id")
		return
	}

	cart, err := h.carts.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			writeError(w, http.StatusNotFound, "cart not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch cart")
		return
	}

	var req struct {
		Model           *string `json:"model"`
		Status          *string `json:"status"`
		Battery         *int    `json:"battery"`
		LastMaintenance *string `json:"last_maintenance"`
		AssignedUserID  *int64  `json:"assigned_user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Model != nil {
		cart.Model = *req.Model
	}
	if req.Status != nil {
		cart.Status = *req.Status
	}
	if req.Battery != nil {
		cart.Battery = *req.Battery
	}
	if req.LastMaintenance != nil {
		maintained, err := time.Parse(time.RFC3339, *req.LastMaintenance)
		if err != nil {
			writeError(w, http.StatusBadRequest, "last_maintenance must be RFC 3339")
			return
		}
		cart.LastMaintenance = &maintained
	}
	if req.AssignedUserID != nil {
		cart.AssignedUserID = req.AssignedUserID
	}

	if err := h.carts.Update(r.Context(), cart); err != nil {
		if errors.Is(err, service.ErrInvalidCartStatus) {
			writeError(w, http.StatusBadRequest, "invalid cart status")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update cart")
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

// Delete handles DELETE /api/carts/{id}.
func (h *CartHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid cart id")
		return
	}

	if err := h.carts.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			writeError(w, http.StatusNotFound, "cart not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete cart")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "cart deleted"})
}

// SetPosition handles PUT /api/carts/{identifier}/position, the
// collaborator endpoint for "set last known position of cart X".
func (h *CartHandlers) SetPosition(w http.ResponseWriter, r *http.Request) {
	identifier := r.PathValue("identifier")
	if identifier == "" {
		writeError(w, http.StatusBadRequest, "cart identifier is required")
		return
	}

	var req struct {
		Latitude  float64  `json:"latitude"`
		Longitude float64  `json:"longitude"`
		Heading   *float64 `json:"heading"`
		Battery   *int     `json:"battery"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	err := h.carts.SetPosition(r.Context(), identifier, req.Latitude, req.Longitude, req.Heading, req.Battery)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			writeError(w, http.StatusNotFound, "cart not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update position")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "position updated"})
}

// LastPosition handles GET /api/carts/{identifier}/position, the snapshot
// served to viewers before any live stream exists.
func (h *CartHandlers) LastPosition(w http.ResponseWriter, r *http.Request) {
	identifier := r.PathValue("identifier")
	if identifier == "" {
		writeError(w, http.StatusBadRequest, "cart identifier is required")
		return
	}

	pos, err := h.carts.LastKnownPosition(r.Context(), identifier)
	if err != nil {
		if errors.Is(err, cache.ErrPositionNotFound) || errors.Is(err, repository.ErrCartNotFound) {
			writeError(w, http.StatusNotFound, "no known position")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch position")
		return
	}
	writeJSON(w, http.StatusOK, pos)
}
