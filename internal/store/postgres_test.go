package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/userfolio/accounts-api/internal/domain"
	"github.com/userfolio/accounts-api/internal/store"
	"github.com/userfolio/accounts-api/internal/testutil"
)

func TestPostgresStore_InsertAndFind(t *testing.T) {
	if testing.Short() {
		t.Skip("requires docker")
	}

	ctx := context.Background()
	s := store.NewPostgresStore(testutil.SetupTestDB(t))

	u := testutil.NewUser(t, "ada@example.com")
	require.NoError(t, s.Insert(ctx, u))

	got, err := s.FindByEmail(ctx, u.Email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, u.Name, got.Name)
	assert.Equal(t, domain.DefaultBalance, got.Balance)

	byID, err := s.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, byID.Email)
}

func TestPostgresStore_DuplicateEmail(t *testing.T) {
	if testing.Short() {
		t.Skip("requires docker")
	}

	ctx := context.Background()
	s := store.NewPostgresStore(testutil.SetupTestDB(t))

	require.NoError(t, s.Insert(ctx, testutil.NewUser(t, "ada@example.com")))

	err := s.Insert(ctx, testutil.NewUser(t, "ada@example.com"))
	require.ErrorIs(t, err, domain.ErrEmailTaken)

	users, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestPostgresStore_UpdateAndRemove(t *testing.T) {
	if testing.Short() {
		t.Skip("requires docker")
	}

	ctx := context.Background()
	s := store.NewPostgresStore(testutil.SetupTestDB(t))

	u := testutil.NewUser(t, "ada@example.com")
	require.NoError(t, s.Insert(ctx, u))

	company := "Analytical Engines Ltd"
	inactive := false
	updated, err := s.Update(ctx, u.Email, domain.Patch{
		Company:  &company,
		IsActive: &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, company, updated.Company)
	assert.False(t, updated.IsActive)
	assert.True(t, updated.UpdatedAt.After(u.UpdatedAt) || updated.UpdatedAt.Equal(u.UpdatedAt))

	_, err = s.Update(ctx, "nobody@example.com", domain.Patch{Company: &company})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, s.Remove(ctx, u.ID))
	_, err = s.FindByID(ctx, u.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, s.Remove(ctx, u.ID), domain.ErrNotFound)
}
