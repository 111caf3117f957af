package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/userfolio/accounts-api/internal/domain"
)

const userColumns = `id, guid, email, password_hash, first_name, last_name, is_active,
	company, phone, address, age, eye_color, balance, picture, picture_public_id,
	created_at, updated_at`

const uniqueViolation = "23505"

type scanner interface {
	Scan(dest ...any) error
}

// PostgresStore is the relational backend, selected when DATABASE_URL is set.
// The unique index on email closes the duplicate-registration race at the
// storage level instead of relying on a pre-insert existence check.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email,
	)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("FindByEmail: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("FindByEmail: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id,
	)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("FindByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("FindByID: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) Insert(ctx context.Context, u *domain.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		u.ID, u.GUID, u.Email, u.PasswordHash, u.Name.First, u.Name.Last, u.IsActive,
		u.Company, u.Phone, u.Address, u.Age, u.EyeColor, u.Balance, u.Picture,
		u.PicturePublicID, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return fmt.Errorf("Insert: %w", domain.ErrEmailTaken)
		}
		return fmt.Errorf("Insert: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, email string, patch domain.Patch) (*domain.User, error) {
	set, args := buildPatchSet(patch)
	args = append(args, email)

	row := s.db.QueryRowContext(ctx,
		`UPDATE users SET `+strings.Join(set, ", ")+`
		 WHERE email = $`+fmt.Sprint(len(args))+`
		 RETURNING `+userColumns,
		args...,
	)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("Update: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("Update: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) Remove(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("Remove: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Remove: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("Remove: %w", domain.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]domain.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("List: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	return users, nil
}

// buildPatchSet translates a patch into SET clauses with positional args.
// updated_at always refreshes, even for an otherwise empty patch.
func buildPatchSet(patch domain.Patch) ([]string, []any) {
	set := []string{"updated_at = now()"}
	var args []any

	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if patch.Name != nil {
		add("first_name", patch.Name.First)
		add("last_name", patch.Name.Last)
	}
	if patch.IsActive != nil {
		add("is_active", *patch.IsActive)
	}
	if patch.Company != nil {
		add("company", *patch.Company)
	}
	if patch.Phone != nil {
		add("phone", *patch.Phone)
	}
	if patch.Address != nil {
		add("address", *patch.Address)
	}
	if patch.Age != nil {
		add("age", *patch.Age)
	}
	if patch.EyeColor != nil {
		add("eye_color", *patch.EyeColor)
	}
	if patch.Balance != nil {
		add("balance", *patch.Balance)
	}
	if patch.Picture != nil {
		add("picture", *patch.Picture)
	}
	if patch.PicturePublicID != nil {
		add("picture_public_id", *patch.PicturePublicID)
	}
	return set, args
}

func scanUser(s scanner) (*domain.User, error) {
	var u domain.User
	err := s.Scan(
		&u.ID, &u.GUID, &u.Email, &u.PasswordHash, &u.Name.First, &u.Name.Last,
		&u.IsActive, &u.Company, &u.Phone, &u.Address, &u.Age, &u.EyeColor,
		&u.Balance, &u.Picture, &u.PicturePublicID, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return &u, nil
}
