package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sumire/careerpath/internal/domain"
)

// SignIn reconciles a provider identity with the stored users and stamps identity.ID
// with the durable user ID. Credentials identities pass through untouched since
// Authorize already resolved them. Unknown providers are rejected.
func (s *AuthService) SignIn(ctx context.Context, provider domain.AuthProvider, identity *domain.Identity) error {
	switch provider {
	case domain.AuthProviderCredentials:
		if identity == nil || identity.ID == "" {
			return domain.ErrSignInFailed
		}
		return nil
	case domain.AuthProviderGoogle, domain.AuthProviderGitHub:
		return s.reconcile(ctx, provider, identity)
	}

	s.log.WarnContext(ctx, "sign-in with unknown provider rejected", "provider", provider)
	return domain.ErrSignInFailed
}

func (s *AuthService) reconcile(ctx context.Context, provider domain.AuthProvider, identity *domain.Identity) error {
	if identity == nil || identity.Email == "" {
		s.log.WarnContext(ctx, "provider supplied no email", "provider", provider)
		return domain.ErrSignInFailed
	}
	log := s.log.With("provider", provider)

	users, err := s.users.FindByEmail(ctx, identity.Email)
	if err != nil {
		log.ErrorContext(ctx, "reconcile lookup failed", "error", err)
		return domain.ErrSignInFailed
	}

	if len(users) == 0 {
		user, err := s.createOAuthUser(ctx, identity)
		if err != nil {
			log.ErrorContext(ctx, "create oauth user failed", "error", err)
			return domain.ErrSignInFailed
		}
		identity.ID = user.StringID()
		log.InfoContext(ctx, "oauth user created", "user_id", user.ID)
		return nil
	}

	existing := users[0]
	identity.ID = existing.StringID()

	upd, ok := profileUpdate(existing, identity)
	if !ok {
		return nil
	}
	if err := s.users.Update(ctx, existing.ID, upd); err != nil {
		// The user already has a durable identity; a stale profile is not worth failing over.
		log.ErrorContext(ctx, "update oauth user failed", "user_id", existing.ID, "error", err)
		return nil
	}
	log.InfoContext(ctx, "oauth user updated", "user_id", existing.ID)
	return nil
}

// createOAuthUser inserts a verified, password-less user. If another request created
// the same email first, the existing row is adopted instead.
func (s *AuthService) createOAuthUser(ctx context.Context, identity *domain.Identity) (*domain.User, error) {
	user, err := s.users.Create(ctx, domain.NewUser{
		Email:         identity.Email,
		Name:          domain.StrPtr(identity.Name),
		Image:         domain.StrPtr(identity.Image),
		EmailVerified: true,
	})
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrConflict) {
		return nil, err
	}

	users, findErr := s.users.FindByEmail(ctx, identity.Email)
	if findErr != nil {
		return nil, fmt.Errorf("refetch after conflict: %w", findErr)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("refetch after conflict: %w", domain.ErrNotFound)
	}
	return &users[0], nil
}

// profileUpdate computes the update needed to bring a stored user in line with a
// provider identity. Empty provider fields never overwrite stored values.
func profileUpdate(existing domain.User, identity *domain.Identity) (domain.UserUpdate, bool) {
	var upd domain.UserUpdate
	if identity.Name != "" && identity.Name != existing.DisplayName() {
		upd.Name = &identity.Name
	}
	if identity.Image != "" && identity.Image != existing.AvatarURL() {
		upd.Image = &identity.Image
	}
	if upd.IsEmpty() && existing.EmailVerified {
		return upd, false
	}
	verified := true
	upd.EmailVerified = &verified
	return upd, true
}
