package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sumire/careerpath/internal/domain"
)

// MemoryUserRepository is an in-process user store with the same contract as
// UserRepository, including the unique email constraint.
type MemoryUserRepository struct {
	mu     sync.Mutex
	nextID int64
	users  []domain.User
}

// NewMemoryUserRepository creates an empty MemoryUserRepository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{}
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	found := []domain.User{}
	for _, u := range r.users {
		if u.Email == email {
			found = append(found, u)
		}
	}
	return found, nil
}

func (r *MemoryUserRepository) Create(_ context.Context, user domain.NewUser) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, fmt.Errorf("create user: %w", domain.ErrConflict)
		}
	}

	r.nextID++
	now := time.Now()
	created := domain.User{
		ID:            r.nextID,
		Email:         user.Email,
		Name:          user.Name,
		Image:         user.Image,
		PasswordHash:  user.PasswordHash,
		EmailVerified: user.EmailVerified,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	r.users = append(r.users, created)
	return &created, nil
}

func (r *MemoryUserRepository) Update(_ context.Context, id int64, upd domain.UserUpdate) error {
	if upd.IsEmpty() {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.users {
		u := &r.users[i]
		if u.ID != id {
			continue
		}
		if upd.Name != nil {
			u.Name = domain.StrPtr(*upd.Name)
		}
		if upd.Image != nil {
			u.Image = domain.StrPtr(*upd.Image)
		}
		if upd.EmailVerified != nil {
			u.EmailVerified = *upd.EmailVerified
		}
		u.UpdatedAt = time.Now()
		return nil
	}
	return domain.ErrNotFound
}
