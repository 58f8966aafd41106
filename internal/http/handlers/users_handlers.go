package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"cartfleet/internal/http/middleware"
	"cartfleet/internal/models"
	"cartfleet/internal/repository"
	"cartfleet/internal/upload"
)

// UserStore is the storage contract used by the user handlers.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
	SetPhotoURL(ctx context.Context, id int64, url string) error
	Delete(ctx context.Context, id int64) error
}

// UserHandlers serves user management and profile endpoints.
type UserHandlers struct {
	repo    UserStore
	storage *upload.Storage
	logger  *zap.Logger
}

// NewUserHandlers returns handler set.
func NewUserHandlers(repo UserStore, storage *upload.Storage, logger *zap.Logger) *UserHandlers {
	return &UserHandlers{repo: repo, storage: storage, logger: logger}
}

// Profile handles GET /api/users/profile.
func (h *UserHandlers) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	user, err := h.repo.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch profile")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// List handles GET /api/users.
func (h *UserHandlers) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.repo.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch users")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// Update handles PUT /api/users/{id}.
func (h *UserHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch user")
		return
	}

	var req struct {
		Name   *string `json:"name"`
		Role   *string `json:"role"`
		Phone  *string `json:"phone"`
		Active *bool   `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Role != nil {
		if !models.ValidRole(*req.Role) {
			writeError(w, http.StatusBadRequest, "invalid role")
			return
		}
		user.Role = *req.Role
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Active != nil {
		user.Active = *req.Active
	}

	if err := h.repo.Update(r.Context(), user); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Delete handles DELETE /api/users/{id}.
func (h *UserHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
}

// UploadPhoto handles POST /api/users/profile/photo.
func (h *UserHandlers) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, upload.MaxImageSize)
	file, header, err := r.FormFile("photo")
	if err != nil {
		writeError(w, http.StatusBadRequest, "photo file is required")
		return
	}
	defer file.Close()

	url, err := h.storage.SaveImage(userID, header.Filename, file)
	if err != nil {
		if errors.Is(err, upload.ErrNotAnImage) {
			writeError(w, http.StatusBadRequest, "only jpg, jpeg and png are allowed")
			return
		}
		h.logger.Error("photo upload failed", zap.Int64("user_id", userID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to store photo")
		return
	}

	if err := h.repo.SetPhotoURL(r.Context(), userID, url); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save photo url")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"photo_url": url})
}
