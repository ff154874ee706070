package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/sumire/careerpath/internal/domain"
)

const uniqueViolation = "23505"

const userColumns = `id, email, name, image, password_hash, email_verified, created_at, updated_at`

// UserRepository handles user data access operations.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID retrieves a user by their ID.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	var user domain.User
	err := r.db.GetContext(ctx, &user,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find user by id %d: %w", id, err)
	}
	return &user, nil
}

// FindByEmail returns every user with exactly this email, oldest first.
// The result is empty, never nil, when nobody matches.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) ([]domain.User, error) {
	users := []domain.User{}
	err := r.db.SelectContext(ctx, &users,
		`SELECT `+userColumns+` FROM users WHERE email = $1 ORDER BY id`, email)
	if err != nil {
		return nil, fmt.Errorf("find users by email: %w", err)
	}
	return users, nil
}

// Create inserts a new user. A duplicate email yields domain.ErrConflict.
func (r *UserRepository) Create(ctx context.Context, user domain.NewUser) (*domain.User, error) {
	var result domain.User
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO users (email, password_hash, name, image, email_verified)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+userColumns,
		user.Email, user.PasswordHash, user.Name, user.Image, user.EmailVerified,
	).StructScan(&result)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, fmt.Errorf("create user: %w", domain.ErrConflict)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &result, nil
}

// Update applies a partial update; nil fields keep their stored values.
func (r *UserRepository) Update(ctx context.Context, id int64, upd domain.UserUpdate) error {
	if upd.IsEmpty() {
		return nil
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE users
		 SET name = COALESCE($2, name),
		     image = COALESCE($3, image),
		     email_verified = COALESCE($4, email_verified),
		     updated_at = NOW()
		 WHERE id = $1`,
		id, upd.Name, upd.Image, upd.EmailVerified,
	)
	if err != nil {
		return fmt.Errorf("update user %d: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user %d: %w", id, err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
