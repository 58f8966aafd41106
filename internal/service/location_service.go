package service

import (
	"context"
	"errors"

	"cartfleet/internal/models"
)

// ErrInvalidTripStatus is returned for unknown trip states.
var ErrInvalidTripStatus = errors.New("location: invalid trip status")

// LocationRepository is the storage contract used by the service.
type LocationRepository interface {
	Create(ctx context.Context, loc *models.Location) error
	GetByID(ctx context.Context, id int64) (*models.Location, error)
	List(ctx context.Context, cartID int64, limit int) ([]models.Location, error)
	Delete(ctx context.Context, id int64) error
}

// LocationService stores and serves the position history feed.
type LocationService struct {
	repo LocationRepository
}

// NewLocationService returns service instance.
func NewLocationService(repo LocationRepository) *LocationService {
	return &LocationService{repo: repo}
}

// Create validates and persists a history row.
func (s *LocationService) Create(ctx context.Context, loc *models.Location) error {
	if loc.CartID == 0 || loc.UserID == 0 {
		return errors.New("location: cart and user references required")
	}
	if loc.TripStatus == "" {
		loc.TripStatus = models.TripStatusEnRoute
	}
	if !models.ValidTripStatus(loc.TripStatus) {
		return ErrInvalidTripStatus
	}
	return s.repo.Create(ctx, loc)
}

// Get fetches one history row.
func (s *LocationService) Get(ctx context.Context, id int64) (*models.Location, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns recent history, optionally scoped to one cart.
func (s *LocationService) List(ctx context.Context, cartID int64, limit int) ([]models.Location, error) {
	return s.repo.List(ctx, cartID, limit)
}

// Delete removes a history row.
func (s *LocationService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
