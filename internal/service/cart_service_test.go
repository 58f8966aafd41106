package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"cartfleet/internal/cache"
	"cartfleet/internal/models"
	"cartfleet/internal/relay"
	"cartfleet/internal/repository"
)

type fakeCartRepo struct {
	carts     map[string]*models.Cart
	positions map[string][2]float64
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{
		carts:     make(map[string]*models.Cart),
		positions: make(map[string][2]float64),
	}
}

func (f *fakeCartRepo) Create(ctx context.Context, cart *models.Cart) error {
	cart.ID = int64(len(f.carts) + 1)
	f.carts[cart.Identifier] = cart
	return nil
}

func (f *fakeCartRepo) GetByID(ctx context.Context, id int64) (*models.Cart, error) {
	for _, cart := range f.carts {
		if cart.ID == id {
			return cart, nil
		}
	}
	return nil, repository.ErrCartNotFound
}

func (f *fakeCartRepo) GetByIdentifier(ctx context.Context, identifier string) (*models.Cart, error) {
	cart, ok := f.carts[identifier]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	return cart, nil
}

func (f *fakeCartRepo) List(ctx context.Context, status string, minBattery int) ([]models.Cart, error) {
	var out []models.Cart
	for _, cart := range f.carts {
		if status != "" && cart.Status != status {
			continue
		}
		if minBattery > 0 && cart.Battery <= minBattery {
			continue
		}
		out = append(out, *cart)
	}
	return out, nil
}

func (f *fakeCartRepo) Update(ctx context.Context, cart *models.Cart) error {
	if _, ok := f.carts[cart.Identifier]; !ok {
		return repository.ErrCartNotFound
	}
	f.carts[cart.Identifier] = cart
	return nil
}

func (f *fakeCartRepo) UpdatePosition(ctx context.Context, identifier string, lat, lon float64, heading *float64, battery *int) error {
	cart, ok := f.carts[identifier]
	if !ok {
		return repository.ErrCartNotFound
	}
	f.positions[identifier] = [2]float64{lat, lon}
	cart.LastLatitude = &lat
	cart.LastLongitude = &lon
	if battery != nil {
		cart.Battery = *battery
	}
	return nil
}

func (f *fakeCartRepo) Delete(ctx context.Context, id int64) error {
	for identifier, cart := range f.carts {
		if cart.ID == id {
			delete(f.carts, identifier)
			return nil
		}
	}
	return repository.ErrCartNotFound
}

type fakePositionCache struct {
	saved map[string]cache.LastPosition
}

func newFakePositionCache() *fakePositionCache {
	return &fakePositionCache{saved: make(map[string]cache.LastPosition)}
}

func (f *fakePositionCache) Save(ctx context.Context, pos cache.LastPosition) error {
	f.saved[pos.CartID] = pos
	return nil
}

func (f *fakePositionCache) Get(ctx context.Context, cartID string) (*cache.LastPosition, error) {
	pos, ok := f.saved[cartID]
	if !ok {
		return nil, cache.ErrPositionNotFound
	}
	return &pos, nil
}

func (f *fakePositionCache) Delete(ctx context.Context, cartID string) error {
	delete(f.saved, cartID)
	return nil
}

func seedCart(t *testing.T, svc *CartService, identifier string) *models.Cart {
	t.Helper()
	cart := &models.Cart{Identifier: identifier, Model: "Club Car"}
	if err := svc.Create(context.Background(), cart); err != nil {
		t.Fatalf("seed cart: %v", err)
	}
	return cart
}

func TestCartCreateDefaults(t *testing.T) {
	svc := NewCartService(newFakeCartRepo(), nil, zap.NewNop())

	cart := seedCart(t, svc, "CART-1")
	if cart.Status != models.CartStatusActive {
		t.Fatalf("status = %q", cart.Status)
	}
	if cart.Battery != 100 {
		t.Fatalf("battery = %d", cart.Battery)
	}

	bad := &models.Cart{Identifier: "CART-2", Status: "flying"}
	if err := svc.Create(context.Background(), bad); !errors.Is(err, ErrInvalidCartStatus) {
		t.Fatalf("expected ErrInvalidCartStatus, got %v", err)
	}
	if err := svc.Create(context.Background(), &models.Cart{}); err == nil {
		t.Fatal("expected error for missing identifier")
	}
}

func TestCartListRejectsUnknownStatus(t *testing.T) {
	svc := NewCartService(newFakeCartRepo(), nil, zap.NewNop())
	if _, err := svc.List(context.Background(), "flying", 0); !errors.Is(err, ErrInvalidCartStatus) {
		t.Fatalf("expected ErrInvalidCartStatus, got %v", err)
	}
}

func TestSetPositionKeepsCacheInStep(t *testing.T) {
	repo := newFakeCartRepo()
	positions := newFakePositionCache()
	svc := NewCartService(repo, positions, zap.NewNop())
	seedCart(t, svc, "CART-1")

	battery := 55
	if err := svc.SetPosition(context.Background(), "CART-1", 20.6, -103.3, nil, &battery); err != nil {
		t.Fatalf("set position: %v", err)
	}

	if got := repo.positions["CART-1"]; got != [2]float64{20.6, -103.3} {
		t.Fatalf("durable row = %v", got)
	}
	cached, ok := positions.saved["CART-1"]
	if !ok {
		t.Fatal("cache not updated")
	}
	if cached.Latitude != 20.6 || cached.Battery == nil || *cached.Battery != 55 {
		t.Fatalf("cached = %+v", cached)
	}

	if err := svc.SetPosition(context.Background(), "GHOST", 0, 0, nil, nil); !errors.Is(err, repository.ErrCartNotFound) {
		t.Fatalf("expected ErrCartNotFound, got %v", err)
	}
}

func TestLastKnownPositionFallsBackToDurableRow(t *testing.T) {
	repo := newFakeCartRepo()
	positions := newFakePositionCache()
	svc := NewCartService(repo, positions, zap.NewNop())
	cart := seedCart(t, svc, "CART-1")

	if _, err := svc.LastKnownPosition(context.Background(), "CART-1"); !errors.Is(err, cache.ErrPositionNotFound) {
		t.Fatalf("expected ErrPositionNotFound for fresh cart, got %v", err)
	}

	lat, lon := 20.6, -103.3
	cart.LastLatitude = &lat
	cart.LastLongitude = &lon
	cart.UpdatedAt = time.Now()

	pos, err := svc.LastKnownPosition(context.Background(), "CART-1")
	if err != nil {
		t.Fatalf("last known position: %v", err)
	}
	if pos.Latitude != lat || pos.Longitude != lon {
		t.Fatalf("snapshot = %+v", pos)
	}

	// Cache wins once populated.
	positions.saved["CART-1"] = cache.LastPosition{CartID: "CART-1", Latitude: 1, Longitude: 2}
	pos, err = svc.LastKnownPosition(context.Background(), "CART-1")
	if err != nil {
		t.Fatalf("cached position: %v", err)
	}
	if pos.Latitude != 1 || pos.Longitude != 2 {
		t.Fatalf("expected cached snapshot, got %+v", pos)
	}
}

func TestDeleteEvictsCachedPosition(t *testing.T) {
	repo := newFakeCartRepo()
	positions := newFakePositionCache()
	svc := NewCartService(repo, positions, zap.NewNop())
	cart := seedCart(t, svc, "CART-1")

	battery := 80
	if err := svc.SetPosition(context.Background(), "CART-1", 20.6, -103.3, nil, &battery); err != nil {
		t.Fatalf("set position: %v", err)
	}

	if err := svc.Delete(context.Background(), cart.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := positions.saved["CART-1"]; ok {
		t.Fatal("snapshot survived cart deletion")
	}
	if err := svc.Delete(context.Background(), cart.ID); !errors.Is(err, repository.ErrCartNotFound) {
		t.Fatalf("expected ErrCartNotFound, got %v", err)
	}
}

func TestRecordPositionImplementsRelayHook(t *testing.T) {
	repo := newFakeCartRepo()
	svc := NewCartService(repo, newFakePositionCache(), zap.NewNop())
	seedCart(t, svc, "CART-1")

	var recorder relay.PositionRecorder = svc
	err := recorder.RecordPosition(context.Background(), relay.PositionUpdate{
		CartID:    "CART-1",
		Latitude:  20.6,
		Longitude: -103.3,
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if got := repo.positions["CART-1"]; got != [2]float64{20.6, -103.3} {
		t.Fatalf("durable row = %v", got)
	}
}
