package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"cartfleet/internal/cache"
	"cartfleet/internal/models"
	"cartfleet/internal/relay"
)

// ErrInvalidCartStatus is returned for unknown operational states.
var ErrInvalidCartStatus = errors.New("cart: invalid status")

// CartRepository is the storage contract used by the service.
type CartRepository interface {
	Create(ctx context.Context, cart *models.Cart) error
	GetByID(ctx context.Context, id int64) (*models.Cart, error)
	GetByIdentifier(ctx context.Context, identifier string) (*models.Cart, error)
	List(ctx context.Context, status string, minBattery int) ([]models.Cart, error)
	Update(ctx context.Context, cart *models.Cart) error
	UpdatePosition(ctx context.Context, identifier string, lat, lon float64, heading *float64, battery *int) error
	Delete(ctx context.Context, id int64) error
}

// PositionCache is the snapshot contract used by the service.
type PositionCache interface {
	Save(ctx context.Context, pos cache.LastPosition) error
	Get(ctx context.Context, cartID string) (*cache.LastPosition, error)
	Delete(ctx context.Context, cartID string) error
}

// CartService owns cart CRUD and the durable side of position tracking.
// Its RecordPosition method is the relay's persistence hook.
type CartService struct {
	repo   CartRepository
	cache  PositionCache
	logger *zap.Logger
}

// NewCartService returns service instance. cache may be nil.
func NewCartService(repo CartRepository, cache PositionCache, logger *zap.Logger) *CartService {
	return &CartService{repo: repo, cache: cache, logger: logger}
}

// Create registers a new cart.
func (s *CartService) Create(ctx context.Context, cart *models.Cart) error {
	cart.Identifier = strings.TrimSpace(cart.Identifier)
	if cart.Identifier == "" {
		return errors.New("cart: identifier required")
	}
	if cart.Status == "" {
		cart.Status = models.CartStatusActive
	}
	if !models.ValidCartStatus(cart.Status) {
		return ErrInvalidCartStatus
	}
	if cart.Battery <= 0 || cart.Battery > 100 {
		cart.Battery = 100
	}
	return s.repo.Create(ctx, cart)
}

// Get fetches a cart by primary key.
func (s *CartService) Get(ctx context.Context, id int64) (*models.Cart, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns carts filtered by status and minimum battery when provided.
func (s *CartService) List(ctx context.Context, status string, minBattery int) ([]models.Cart, error) {
	if status != "" && !models.ValidCartStatus(status) {
		return nil, ErrInvalidCartStatus
	}
	return s.repo.List(ctx, status, minBattery)
}

// Update persists administrative changes.
func (s *CartService) Update(ctx context.Context, cart *models.Cart) error {
	if !models.ValidCartStatus(cart.Status) {
		return ErrInvalidCartStatus
	}
	if cart.Battery < 0 {
		cart.Battery = 0
	}
	if cart.Battery > 100 {
		cart.Battery = 100
	}
	return s.repo.Update(ctx, cart)
}

// Delete removes a cart and evicts its cached position snapshot.
func (s *CartService) Delete(ctx context.Context, id int64) error {
	cart, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, cart.Identifier); err != nil {
			s.logger.Warn("position cache evict failed", zap.String("cart_id", cart.Identifier), zap.Error(err))
		}
	}
	return nil
}

// SetPosition updates the last known coordinate of one cart, keeping the
// snapshot cache in step with the durable row.
func (s *CartService) SetPosition(ctx context.Context, identifier string, lat, lon float64, heading *float64, battery *int) error {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return errors.New("cart: identifier required")
	}
	if err := s.repo.UpdatePosition(ctx, identifier, lat, lon, heading, battery); err != nil {
		return err
	}
	if s.cache != nil {
		pos := cache.LastPosition{
			CartID:     identifier,
			Latitude:   lat,
			Longitude:  lon,
			Heading:    heading,
			Battery:    battery,
			RecordedAt: time.Now().UTC(),
		}
		if err := s.cache.Save(ctx, pos); err != nil {
			s.logger.Warn("position cache save failed", zap.String("cart_id", identifier), zap.Error(err))
		}
	}
	return nil
}

// LastKnownPosition serves the snapshot for viewers with no live stream
// yet: cache first, durable row as fallback.
func (s *CartService) LastKnownPosition(ctx context.Context, identifier string) (*cache.LastPosition, error) {
	if s.cache != nil {
		if pos, err := s.cache.Get(ctx, identifier); err == nil {
			return pos, nil
		} else if !errors.Is(err, cache.ErrPositionNotFound) {
			s.logger.Warn("position cache read failed", zap.String("cart_id", identifier), zap.Error(err))
		}
	}

	cart, err := s.repo.GetByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if cart.LastLatitude == nil || cart.LastLongitude == nil {
		return nil, cache.ErrPositionNotFound
	}
	battery := cart.Battery
	return &cache.LastPosition{
		CartID:     cart.Identifier,
		Latitude:   *cart.LastLatitude,
		Longitude:  *cart.LastLongitude,
		Heading:    cart.Heading,
		Battery:    &battery,
		RecordedAt: cart.UpdatedAt,
	}, nil
}

// RecordPosition implements relay.PositionRecorder. Called asynchronously
// by the hub; errors stay here and never reach the fan-out path.
func (s *CartService) RecordPosition(ctx context.Context, update relay.PositionUpdate) error {
	return s.SetPosition(ctx, update.CartID, update.Latitude, update.Longitude, update.Heading, update.Battery)
}
