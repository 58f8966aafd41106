package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"cartfleet/internal/models"
	"cartfleet/internal/repository"
)

// ErrInvalidAlertType is returned for unknown alert types.
var ErrInvalidAlertType = errors.New("alert: invalid type")

// AlertService validates and stores alerts. The relay forwards alert
// payloads untouched; structural validation lives here, at the durable layer.
type AlertService struct {
	repo   *repository.AlertRepository
	logger *zap.Logger
}

// NewAlertService returns service instance.
func NewAlertService(repo *repository.AlertRepository, logger *zap.Logger) *AlertService {
	return &AlertService{repo: repo, logger: logger}
}

// Create validates and persists a new alert.
func (s *AlertService) Create(ctx context.Context, alert *models.Alert) error {
	if !models.ValidAlertType(alert.Type) {
		return ErrInvalidAlertType
	}
	if alert.CartID == 0 || alert.UserID == 0 {
		return errors.New("alert: cart and user references required")
	}
	if err := s.repo.Create(ctx, alert); err != nil {
		return err
	}
	s.logger.Info("alert recorded",
		zap.Int64("alert_id", alert.ID),
		zap.String("type", alert.Type),
		zap.Int64("cart_id", alert.CartID))
	return nil
}

// Get fetches one alert.
func (s *AlertService) Get(ctx context.Context, id int64) (*models.Alert, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns alerts, optionally only unattended ones.
func (s *AlertService) List(ctx context.Context, onlyOpen bool) ([]models.Alert, error) {
	return s.repo.List(ctx, onlyOpen)
}

// Attend marks an alert as handled.
func (s *AlertService) Attend(ctx context.Context, id int64) (*models.Alert, error) {
	return s.repo.MarkAttended(ctx, id)
}

// Delete removes an alert.
func (s *AlertService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
