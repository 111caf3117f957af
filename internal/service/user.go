package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/userfolio/accounts-api/internal/domain"
	"github.com/userfolio/accounts-api/internal/logging"
)

// bcrypt cost factor for stored credentials.
const hashCost = 10

type userStore interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Insert(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, email string, patch domain.Patch) (*domain.User, error)
	Remove(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.User, error)
}

type UserService struct {
	store userStore
}

func NewUserService(store userStore) *UserService {
	return &UserService{store: store}
}

// RegisterInput carries the signup fields. Everything except Email and
// Password is optional and falls back to the record defaults.
type RegisterInput struct {
	Email    string
	Password string
	Name     domain.Name
	Company  string
	Phone    string
	Address  string
	Age      int
	EyeColor string
	Balance  string
	Picture  string
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	log := logging.FromContext(ctx)

	if in.Email == "" || in.Password == "" {
		return nil, fmt.Errorf("Register: %w", domain.ErrMissingFields)
	}

	_, err := s.store.FindByEmail(ctx, in.Email)
	if err == nil {
		return nil, fmt.Errorf("Register: %w", domain.ErrEmailTaken)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("Register: check existing: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), hashCost)
	if err != nil {
		return nil, fmt.Errorf("Register: hash password: %w", err)
	}

	id, err := domain.NewID()
	if err != nil {
		return nil, fmt.Errorf("Register: generate id: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           id,
		GUID:         domain.NewGUID(),
		Email:        in.Email,
		PasswordHash: string(hash),
		Name:         in.Name,
		IsActive:     true,
		Company:      in.Company,
		Phone:        in.Phone,
		Address:      in.Address,
		Age:          in.Age,
		EyeColor:     in.EyeColor,
		Balance:      in.Balance,
		Picture:      in.Picture,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	user.ApplyDefaults()

	if err := s.store.Insert(ctx, user); err != nil {
		return nil, fmt.Errorf("Register: %w", err)
	}

	log.Info("user registered", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// Login verifies the email/password pair. An unknown email and a wrong
// password both surface as ErrInvalidCredentials so a caller cannot probe
// which addresses are registered.
func (s *UserService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("Login: %w", domain.ErrMissingFields)
	}

	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("Login: %w", domain.ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("Login: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("Login: %w", domain.ErrInvalidCredentials)
	}

	return user, nil
}

func (s *UserService) GetProfile(ctx context.Context, email string) (*domain.User, error) {
	if email == "" {
		return nil, fmt.Errorf("GetProfile: %w", domain.ErrMissingFields)
	}

	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("GetProfile: %w", err)
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, email string, patch domain.Patch) (*domain.User, error) {
	if email == "" {
		return nil, fmt.Errorf("UpdateProfile: %w", domain.ErrMissingFields)
	}

	user, err := s.store.Update(ctx, email, patch)
	if err != nil {
		return nil, fmt.Errorf("UpdateProfile: %w", err)
	}

	logging.FromContext(ctx).Info("profile updated", "user_id", user.ID)
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListUsers: %w", err)
	}
	return users, nil
}

func (s *UserService) SetActive(ctx context.Context, id string, active bool) (*domain.User, error) {
	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("SetActive: %w", err)
	}

	updated, err := s.store.Update(ctx, user.Email, domain.Patch{IsActive: &active})
	if err != nil {
		return nil, fmt.Errorf("SetActive: %w", err)
	}

	logging.FromContext(ctx).Info("user status changed", "user_id", id, "is_active", active)
	return updated, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := s.store.Remove(ctx, id); err != nil {
		return fmt.Errorf("DeleteUser: %w", err)
	}

	logging.FromContext(ctx).Info("user deleted", "user_id", id)
	return nil
}
