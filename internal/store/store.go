// Package store holds the user record persistence backends.
package store

import (
	"context"

	"github.com/userfolio/accounts-api/internal/domain"
)

// Store is the record persistence contract. Writers must serialize their own
// read-modify-write cycle so that two concurrent registrations for the same
// email cannot both pass the existence check.
type Store interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Insert(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, email string, patch domain.Patch) (*domain.User, error)
	Remove(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.User, error)
}
