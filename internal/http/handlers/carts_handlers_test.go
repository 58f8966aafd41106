package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"cartfleet/internal/models"
	"cartfleet/internal/repository"
	"cartfleet/internal/service"
)

type stubCartRepo struct {
	carts map[int64]*models.Cart
}

func newStubCartRepo() *stubCartRepo {
	return &stubCartRepo{carts: make(map[int64]*models.Cart)}
}

func (s *stubCartRepo) Create(ctx context.Context, cart *models.Cart) error {
	cart.ID = int64(len(s.carts) + 1)
	s.carts[cart.ID] = cart
	return nil
}

func (s *stubCartRepo) GetByID(ctx context.Context, id int64) (*models.Cart, error) {
	cart, ok := s.carts[id]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	return cart, nil
}

func (s *stubCartRepo) GetByIdentifier(ctx context.Context, identifier string) (*models.Cart, error) {
	for _, cart := range s.carts {
		if cart.Identifier == identifier {
			return cart, nil
		}
	}
	return nil, repository.ErrCartNotFound
}

func (s *stubCartRepo) List(ctx context.Context, status string, minBattery int) ([]models.Cart, error) {
	var out []models.Cart
	for _, cart := range s.carts {
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

func (s *stubCartRepo) Update(ctx context.Context, cart *models.Cart) error {
	if _, ok := s.carts[cart.ID]; !ok {
		return repository.ErrCartNotFound
	}
	s.carts[cart.ID] = cart
	return nil
}

func (s *stubCartRepo) UpdatePosition(ctx context.Context, identifier string, lat, lon float64, heading *float64, battery *int) error {
	cart, err := s.GetByIdentifier(ctx, identifier)
	if err != nil {
		return err
	}
	cart.LastLatitude = &lat
	cart.LastLongitude = &lon
	return nil
}

func (s *stubCartRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := s.carts[id]; !ok {
		return repository.ErrCartNotFound
	}
	delete(s.carts, id)
	return nil
}

func newCartTestMux(repo *stubCartRepo) *http.ServeMux {
	carts := NewCartHandlers(service.NewCartService(repo, nil, zap.NewNop()))
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/carts", carts.Create)
	mux.HandleFunc("GET /api/carts", carts.List)
	mux.HandleFunc("GET /api/carts/{id}", carts.Get)
	mux.HandleFunc("PUT /api/carts/{identifier}/position", carts.SetPosition)
	return mux
}

func TestCreateAndGetCart(t *testing.T) {
	repo := newStubCartRepo()
	mux := newCartTestMux(repo)

	body := `{"identifier":"CART-1","model":"Club Car"}`
	req := httptest.NewRequest(http.MethodPost, "/api/carts", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/carts/1", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var cart models.Cart
	if err := json.Unmarshal(rec.Body.Bytes(), &cart); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cart.Identifier != "CART-1" || cart.Status != models.CartStatusActive || cart.Battery != 100 {
		t.Fatalf("cart = %+v", cart)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/carts/99", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing cart status = %d", rec.Code)
	}
}

func TestCreateCartRejectsBadStatus(t *testing.T) {
	mux := newCartTestMux(newStubCartRepo())

	req := httptest.NewRequest(http.MethodPost, "/api/carts", strings.NewReader(`{"identifier":"CART-1","status":"flying"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestListCartsFiltered(t *testing.T) {
	repo := newStubCartRepo()
	repo.carts[1] = &models.Cart{ID: 1, Identifier: "CART-1", Status: models.CartStatusActive, Battery: 90}
	repo.carts[2] = &models.Cart{ID: 2, Identifier: "CART-2", Status: models.CartStatusActive, Battery: 15}
	repo.carts[3] = &models.Cart{ID: 3, Identifier: "CART-3", Status: models.CartStatusMaintenance, Battery: 100}
	mux := newCartTestMux(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/carts?status=active&min_battery=20", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var carts []models.Cart
	if err := json.Unmarshal(rec.Body.Bytes(), &carts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(carts) != 1 || carts[0].Identifier != "CART-1" {
		t.Fatalf("filtered carts = %+v", carts)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/carts?min_battery=500", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad filter status = %d, want 400", rec.Code)
	}
}

func TestSetCartPosition(t *testing.T) {
	repo := newStubCartRepo()
	repo.carts[1] = &models.Cart{ID: 1, Identifier: "CART-1", Status: models.CartStatusActive, Battery: 90}
	mux := newCartTestMux(repo)

	body := `{"latitude":20.6,"longitude":-103.3}`
	req := httptest.NewRequest(http.MethodPut, "/api/carts/CART-1/position", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if repo.carts[1].LastLatitude == nil || *repo.carts[1].LastLatitude != 20.6 {
		t.Fatalf("position not persisted: %+v", repo.carts[1])
	}

	req = httptest.NewRequest(http.MethodPut, "/api/carts/GHOST/position", strings.NewReader(body))
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("ghost cart status = %d, want 404", rec.Code)
	}
}
