package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sumire/careerpath/internal/domain"
)

func TestAuthorize(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	hash := mustHash(t, "secret")

	t.Run("rejects missing email or password without lookup", func(t *testing.T) {
		t.Parallel()

		store := &MockUserStore{}
		svc := newTestService(store)

		for _, creds := range []Credentials{
			{},
			{Email: "b@x.com"},
			{Password: "secret"},
		} {
			identity, err := svc.Authorize(ctx, creds)
			assert.Nil(t, identity)
			assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
		}
		store.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
	})

	t.Run("returns string id on correct password", func(t *testing.T) {
		t.Parallel()

		store := &MockUserStore{}
		store.On("FindByEmail", ctx, "b@x.com").Return([]domain.User{{
			ID:           42,
			Email:        "b@x.com",
			Name:         domain.StrPtr("B"),
			PasswordHash: hash,
		}}, nil)
		svc := newTestService(store)

		identity, err := svc.Authorize(ctx, Credentials{Email: "b@x.com", Password: "secret"})
		require.NoError(t, err)
		assert.Equal(t, &domain.Identity{ID: "42", Email: "b@x.com", Name: "B"}, identity)
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		t.Parallel()

		store := &MockUserStore{}
		store.On("FindByEmail", ctx, "b@x.com").Return([]domain.User{{ID: 1, Email: "b@x.com", PasswordHash: hash}}, nil)
		svc := newTestService(store)

		_, err := svc.Authorize(ctx, Credentials{Email: "b@x.com", Password: "nope"})
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("rejects unknown email", func(t *testing.T) {
		t.Parallel()

		store := &MockUserStore{}
		store.On("FindByEmail", ctx, "ghost@x.com").Return([]domain.User{}, nil)
		svc := newTestService(store)

		_, err := svc.Authorize(ctx, Credentials{Email: "ghost@x.com", Password: "secret"})
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("oauth-only account never accepts a password", func(t *testing.T) {
		t.Parallel()

		store := &MockUserStore{}
		store.On("FindByEmail", ctx, "g@x.com").Return([]domain.User{{ID: 5, Email: "g@x.com", EmailVerified: true}}, nil)
		svc := newTestService(store)

		for _, pw := range []string{"secret", "", " ", "anything-at-all"} {
			_, err := svc.Authorize(ctx, Credentials{Email: "g@x.com", Password: pw})
			assert.ErrorIs(t, err, domain.ErrInvalidCredentials, "password %q", pw)
		}
	})

	t.Run("lookup failure becomes invalid credentials", func(t *testing.T) {
		t.Parallel()

		store := &MockUserStore{}
		store.On("FindByEmail", ctx, "b@x.com").Return(nil, errors.New("db down"))
		svc := newTestService(store)

		identity, err := svc.Authorize(ctx, Credentials{Email: "b@x.com", Password: "secret"})
		assert.Nil(t, identity)
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})
}

func TestAuthorize_VerifiedSentinel(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	tests := []struct {
		name    string
		users   []domain.User
		wantID  string
		wantErr bool
	}{
		{
			name:   "verified user logs in",
			users:  []domain.User{{ID: 8, Email: "v@x.com", EmailVerified: true, PasswordHash: mustHash(t, "pw")}},
			wantID: "8",
		},
		{
			name:   "verified oauth-only user logs in",
			users:  []domain.User{{ID: 9, Email: "v@x.com", EmailVerified: true}},
			wantID: "9",
		},
		{
			name:    "unverified user is rejected",
			users:   []domain.User{{ID: 8, Email: "v@x.com", PasswordHash: mustHash(t, "pw")}},
			wantErr: true,
		},
		{
			name:    "missing user is rejected",
			users:   []domain.User{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := &MockUserStore{}
			store.On("FindByEmail", ctx, "v@x.com").Return(tt.users, nil)
			svc := newTestService(store)

			identity, err := svc.Authorize(ctx, Credentials{Email: "v@x.com", Password: VerifiedLoginSentinel})
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
				assert.Nil(t, identity)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, identity.ID)
		})
	}
}
