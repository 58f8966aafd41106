package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"go.uber.org/zap"

	"cartfleet/internal/models"
	"cartfleet/internal/password"
	"cartfleet/internal/repository"
)

type fakeUserRepo struct {
	users  map[string]*models.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User), nextID: 1}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = f.nextID
	f.nextID++
	user.CreatedAt = time.Now()
	f.users[user.Email] = user
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := f.users[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func newTestAuthService(repo *fakeUserRepo) *AuthService {
	hasher := password.NewBcryptHasher(bcrypt.MinCost)
	tokens := NewTokenService("test-secret", time.Hour)
	return NewAuthService(repo, hasher, tokens, zap.NewNop())
}

func TestRegisterDefaultsRole(t *testing.T) {
	svc := newTestAuthService(newFakeUserRepo())

	user, err := svc.Register(context.Background(), "Ana", "Ana@Example.com", "secret", "", "555-0100")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Role != models.RoleUser {
		t.Fatalf("role = %q, want %q", user.Role, models.RoleUser)
	}
	if user.Email != "ana@example.com" {
		t.Fatalf("email not normalized: %q", user.Email)
	}
	if user.PasswordHash == "secret" || user.PasswordHash == "" {
		t.Fatal("password stored unhashed")
	}
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(repo)

	_, err := svc.Register(context.Background(), "Mallory", "mallory@example.com", "secret", "superhacker", "")
	if !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
	if len(repo.users) != 0 {
		t.Fatal("account with unknown role was persisted")
	}

	for _, role := range []string{models.RoleAdmin, models.RoleSupervisor, models.RoleBellman, models.RoleUser} {
		if _, err := svc.Register(context.Background(), "Ana", role+"@example.com", "secret", role, ""); err != nil {
			t.Fatalf("register with role %q: %v", role, err)
		}
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(repo)

	if _, err := svc.Register(context.Background(), "Ana", "ana@example.com", "secret", "", ""); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := svc.Register(context.Background(), "Ana Again", "ana@example.com", "other", "", "")
	if !errors.Is(err, ErrEmailInUse) {
		t.Fatalf("expected ErrEmailInUse, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(repo)

	if _, err := svc.Register(context.Background(), "Ana", "ana@example.com", "secret", models.RoleAdmin, ""); err != nil {
		t.Fatalf("register: %v", err)
	}

	token, user, err := svc.Login(context.Background(), "ana@example.com", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" || user == nil {
		t.Fatal("login returned empty token or user")
	}

	claims, err := svc.tokenizer.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != models.RoleAdmin {
		t.Fatalf("claims = %+v", claims)
	}

	if _, _, err := svc.Login(context.Background(), "ana@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "nobody@example.com", "secret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}
