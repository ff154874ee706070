package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sumire/careerpath/internal/domain"
)

// MockUserStore is a mock implementation of UserStore.
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserStore) FindByEmail(ctx context.Context, email string) ([]domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserStore) Create(ctx context.Context, user domain.NewUser) (*domain.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserStore) Update(ctx context.Context, id int64, upd domain.UserUpdate) error {
	args := m.Called(ctx, id, upd)
	return args.Error(0)
}

// panickingStore blows up on every lookup.
type panickingStore struct {
	UserStore
}

func (panickingStore) FindByEmail(context.Context, string) ([]domain.User, error) {
	panic("storage exploded")
}

const testSecret = "test-secret-32-chars-long-12345"

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(users UserStore) *AuthService {
	return NewAuthService(users, AuthConfig{
		Secret:    testSecret,
		Passwords: NewBcryptHasher(bcrypt.MinCost),
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:       func() time.Time { return testNow },
	})
}

func mustHash(t *testing.T, password string) *string {
	t.Helper()
	h, err := NewBcryptHasher(bcrypt.MinCost).Hash(password)
	require.NoError(t, err)
	return &h
}
