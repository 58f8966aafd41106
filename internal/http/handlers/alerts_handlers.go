package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"cartfleet/internal/models"
	"cartfleet/internal/repository"
	"cartfleet/internal/service"
)

// AlertHandlers serves the alert endpoints.
type AlertHandlers struct {
	alerts *service.AlertService
}

// NewAlertHandlers returns handler set.
func NewAlertHandlers(alerts *service.AlertService) *AlertHandlers {
	return &AlertHandlers{alerts: alerts}
}

// Create handles POST /api/alerts.
func (h *AlertHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var alert models.Alert
	if err := json.NewDecoder(r.Body).Decode(&alert); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := h.alerts.Create(r.Context(), &alert); err != nil {
		if errors.Is(err, service.ErrInvalidAlertType) {
			writeError(w, http.StatusBadRequest, "invalid alert type")
			return
		}
		writeError(w, http.StatusBadRequest, "failed to record alert")
		return
	}
	writeJSON(w, http.StatusCreated, alert)
}

// List handles GET /api/alerts with optional open=true filter.
func (h *AlertHandlers) List(w http.ResponseWriter, r *http.Request) {
	onlyOpen := r.URL.Query().Get("open") == "true"

	alerts, err := h.alerts.List(r.Context(), onlyOpen)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch alerts")
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}

// Get handles GET /api/alerts/{id}.
func (h *AlertHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid alert id")
		return
	}

	alert, err := h.alerts.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrAlertNotFound) {
			writeError(w, http.StatusNotFound, "alert not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch alert")
		return
	}
	writeJSON(w, http.StatusOK, alert)
}

// Attend handles PUT /api/alerts/{id}/attend.
func (h *AlertHandlers) Attend(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid alert id")
		return
	}

	alert, err := h.alerts.Attend(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrAlertNotFound) {
			writeError(w, http.StatusNotFound, "alert not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update alert")
		return
	}
	writeJSON(w, http.StatusOK, alert)
}

// Delete handles DELETE /api/alerts/{id}.
func (h *AlertHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid alert id")
		return
	}

	if err := h.alerts.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrAlertNotFound) {
			writeError(w, http.StatusNotFound, "alert not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete alert")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "alert deleted"})
}
