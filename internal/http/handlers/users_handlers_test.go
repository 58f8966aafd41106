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
)

type stubUserStore struct {
	users map[int64]*models.User
}

func newStubUserStore() *stubUserStore {
	return &stubUserStore{users: make(map[int64]*models.User)}
}

func (s *stubUserStore) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (s *stubUserStore) List(ctx context.Context) ([]models.User, error) {
	var out []models.User
	for _, user := range s.users {
		out = append(out, *user)
	}
	return out, nil
}

func (s *stubUserStore) Update(ctx context.Context, user *models.User) error {
	if _, ok := s.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	s.users[user.ID] = user
	return nil
}

func (s *stubUserStore) SetPhotoURL(ctx context.Context, id int64, url string) error {
	user, ok := s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.PhotoURL = url
	return nil
}

func (s *stubUserStore) Delete(ctx context.Context, id int64) error {
	if _, ok := s.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(s.users, id)
	return nil
}

func newUserTestMux(store *stubUserStore) *http.ServeMux {
	users := NewUserHandlers(store, nil, zap.NewNop())
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /api/users/{id}", users.Update)
	return mux
}

func TestUpdateUserRejectsUnknownRole(t *testing.T) {
	store := newStubUserStore()
	store.users[1] = &models.User{ID: 1, Name: "Ana", Email: "ana@example.com", Role: models.RoleUser}
	mux := newUserTestMux(store)

	req := httptest.NewRequest(http.MethodPut, "/api/users/1", strings.NewReader(`{"role":"superhacker"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if store.users[1].Role != models.RoleUser {
		t.Fatalf("role changed to %q", store.users[1].Role)
	}
}

func TestUpdateUserRole(t *testing.T) {
	store := newStubUserStore()
	store.users[1] = &models.User{ID: 1, Name: "Ana", Email: "ana@example.com", Role: models.RoleUser}
	mux := newUserTestMux(store)

	req := httptest.NewRequest(http.MethodPut, "/api/users/1", strings.NewReader(`{"role":"supervisor"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var user models.User
	if err := json.Unmarshal(rec.Body.Bytes(), &user); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if user.Role != models.RoleSupervisor || store.users[1].Role != models.RoleSupervisor {
		t.Fatalf("role = %q / %q", user.Role, store.users[1].Role)
	}
}
