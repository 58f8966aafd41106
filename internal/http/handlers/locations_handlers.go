package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"cartfleet/internal/models"
	"cartfleet/internal/repository"
	"cartfleet/internal/service"
)

// LocationHandlers serves the position history endpoints.
type LocationHandlers struct {
	locations *service.LocationService
}

// NewLocationHandlers returns handler set.
func NewLocationHandlers(locations *service.LocationService) *LocationHandlers {
	return &LocationHandlers{locations: locations}
}

// Create handles POST /api/locations.
func (h *LocationHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var loc models.Location
	if err := json.NewDecoder(r.Body).Decode(&loc); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := h.locations.Create(r.Context(), &loc); err != nil {
		if errors.Is(err, service.ErrInvalidTripStatus) {
			writeError(w, http.StatusBadRequest, "invalid trip status")
			return
		}
		writeError(w, http.StatusBadRequest, "failed to record location")
		return
	}
	writeJSON(w, http.StatusCreated, loc)
}

// List handles GET /api/locations with optional cart_id and limit filters.
func (h *LocationHandlers) List(w http.ResponseWriter, r *http.Request) {
	var cartID int64
	if raw := r.URL.Query().Get("cart_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "invalid cart_id")
			return
		}
		cartID = parsed
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	locations, err := h.locations.List(r.Context(), cartID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch locations")
		return
	}
	writeJSON(w, http.StatusOK, locations)
}

// Get handles GET /api/locations/{id}.
func (h *LocationHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid location id")
		return
	}

	loc, err := h.locations.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrLocationNotFound) {
			writeError(w, http.StatusNotFound, "location not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch location")
		return
	}
	writeJSON(w, http.StatusOK, loc)
}

// Delete handles DELETE /api/locations/{id}.
func (h *LocationHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid location id")
		return
	}

	if err := h.locations.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrLocationNotFound) {
			writeError(w, http.StatusNotFound, "location not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete location")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "location deleted"})
}
