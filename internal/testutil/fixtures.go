package testutil

import (
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/userfolio/accounts-api/internal/domain"
)

const TestPassword = "password123"

// NewUser builds a fully defaulted user record with a real (cheap) bcrypt
// hash of TestPassword.
func NewUser(t *testing.T, email string) *domain.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	id, err := domain.NewID()
	if err != nil {
		t.Fatalf("generate id: %v", err)
	}

	now := time.Now().UTC()
	u := &domain.User{
		ID:           id,
		GUID:         domain.NewGUID(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         domain.Name{First: "Test", Last: "User"},
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	u.ApplyDefaults()
	return u
}
