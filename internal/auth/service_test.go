package auth

import (
	"testing"
	"time"

	"vaulted/internal/config"
	"vaulted/pkg/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserRepo struct {
	byEmail map[string]*models.User
	byID    map[uuid.UUID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byEmail: make(map[string]*models.User),
		byID:    make(map[uuid.UUID]*models.User),
	}
}

func (r *fakeUserRepo) GetByEmail(email string) (*models.User, error) {
	if user, ok := r.byEmail[email]; ok {
		return user, nil
	}
	return nil, errNotFound
}

func (r *fakeUserRepo) GetByID(id uuid.UUID) (*models.User, error) {
	if user, ok := r.byID[id]; ok {
		return user, nil
	}
	return nil, errNotFound
}

func (r *fakeUserRepo) Create(user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.byEmail[user.Email] = user
	r.byID[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Update(user *models.User) error {
	r.byEmail[user.Email] = user
	r.byID[user.ID] = user
	return nil
}

var errNotFound = notFoundError("user not found")

type notFoundError string

func (e notFoundError) Error() string { return string(e) }

func newTestService() (*Service, *fakeUserRepo) {
	repo := newFakeUserRepo()
	svc := NewService(repo, config.AuthConfig{
		JWTSecret:       "test-secret",
		AccessDuration:  15 * time.Minute,
		RefreshDuration: 7 * 24 * time.Hour,
	})
	return svc, repo
}

func TestRegisterCreatesVerifiedAccount(t *testing.T) {
	svc, repo := newTestService()

	response, err := svc.Register(RegisterRequest{
		Email:    "owner@example.com",
		Password: "correct-horse",
		Name:     "Owner",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	user := repo.byEmail["owner@example.com"]
	if user == nil {
		t.Fatal("user was not persisted")
	}
	if !user.EmailVerified {
		t.Error("registered user should have a verified email")
	}
	if user.Password == "correct-horse" {
		t.Error("password stored in plaintext")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("correct-horse")) != nil {
		t.Error("stored hash does not match the password")
	}
	if response.AccessToken == "" || response.RefreshToken == "" {
		t.Error("registration should issue both tokens")
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newTestService()
	req := RegisterRequest{Email: "owner@example.com", Password: "correct-horse", Name: "Owner"}

	if _, err := svc.Register(req); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	if _, err := svc.Register(req); err == nil {
		t.Error("duplicate registration should fail")
	}
}

func TestLogin(t *testing.T) {
	svc, repo := newTestService()
	if _, err := svc.Register(RegisterRequest{Email: "owner@example.com", Password: "correct-horse", Name: "Owner"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
		ok       bool
	}{
		{"valid credentials", "owner@example.com", "correct-horse", true},
		{"wrong password", "owner@example.com", "wrong", false},
		{"unknown email", "nobody@example.com", "correct-horse", false},
	}

	for _, test := range tests {
		_, err := svc.Login(LoginRequest{Email: test.email, Password: test.password})
		if (err == nil) != test.ok {
			t.Errorf("%s: err = %v, expected ok=%v", test.name, err, test.ok)
		}
	}

	if repo.byEmail["owner@example.com"].LastLoginAt == nil {
		t.Error("successful login should record the login time")
	}
}

func TestLoginRejectsDisabledAccount(t *testing.T) {
	svc, repo := newTestService()
	if _, err := svc.Register(RegisterRequest{Email: "owner@example.com", Password: "correct-horse", Name: "Owner"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	repo.byEmail["owner@example.com"].IsActive = false

	if _, err := svc.Login(LoginRequest{Email: "owner@example.com", Password: "correct-horse"}); err == nil {
		t.Error("login on a disabled account should fail")
	}
}

func TestValidateTokenRoundTrip(t *testing.T) {
	svc, _ := newTestService()
	response, err := svc.Register(RegisterRequest{Email: "owner@example.com", Password: "correct-horse", Name: "Owner"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	claims, err := svc.ValidateToken(response.AccessToken)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.Email != "owner@example.com" {
		t.Errorf("claims email = %q", claims.Email)
	}
	if claims.Type != "access" {
		t.Errorf("claims type = %q, expected access", claims.Type)
	}
	if claims.UserID != response.User.ID {
		t.Error("claims user ID does not match the registered user")
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	svc, repo := newTestService()
	response, err := svc.Register(RegisterRequest{Email: "owner@example.com", Password: "correct-horse", Name: "Owner"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	other := NewService(repo, config.AuthConfig{JWTSecret: "different-secret", AccessDuration: time.Minute, RefreshDuration: time.Hour})
	if _, err := other.ValidateToken(response.AccessToken); err == nil {
		t.Error("token signed with another secret should be rejected")
	}
}

func TestRefreshTokenRejectsAccessToken(t *testing.T) {
	svc, _ := newTestService()
	response, err := svc.Register(RegisterRequest{Email: "owner@example.com", Password: "correct-horse", Name: "Owner"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if _, err := svc.RefreshToken(response.AccessToken); err == nil {
		t.Error("an access token must not be usable for refresh")
	}
	if _, err := svc.RefreshToken(response.RefreshToken); err != nil {
		t.Errorf("refresh with a refresh token failed: %v", err)
	}
}
