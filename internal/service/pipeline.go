package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sumire/careerpath/internal/domain"
)

const (
	subjectEmailVerify   = "email_verify"
	verificationTokenTTL = 24 * time.Hour
)

// CompleteSignIn runs reconciliation, token and session materialization in order
// for a freshly authenticated identity and returns the signed session token.
func (s *AuthService) CompleteSignIn(ctx context.Context, provider domain.AuthProvider, identity *domain.Identity, accessToken string) (string, *domain.Session, error) {
	if err := s.SignIn(ctx, provider, identity); err != nil {
		return "", nil, err
	}

	token, _ := s.JWT(ctx, &domain.Token{}, TokenInput{Identity: identity, AccessToken: accessToken})
	signed, err := s.IssueToken(token)
	if err != nil {
		return "", nil, err
	}

	return signed, s.Session(ctx, newSession(token), token), nil
}

// ResolveRequest turns the raw session token of a request into a Session. When the
// token healed itself during the refresh, reissued holds its new signed form.
func (s *AuthService) ResolveRequest(ctx context.Context, raw string) (session *domain.Session, reissued string, err error) {
	token, err := s.ParseToken(raw)
	if err != nil {
		return nil, "", err
	}

	token, changed := s.JWT(ctx, token, TokenInput{})
	if changed {
		reissued, err = s.IssueToken(token)
		if err != nil {
			s.log.ErrorContext(ctx, "reissue session token failed", "error", err)
			reissued = ""
		}
	}

	return s.Session(ctx, newSession(token), token), reissued, nil
}

type verificationClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// IssueVerificationToken returns a signed, short-lived token proving control of email.
func (s *AuthService) IssueVerificationToken(email string) (string, error) {
	now := s.now()
	claims := verificationClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectEmailVerify,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(verificationTokenTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign verification token: %w", err)
	}
	return signed, nil
}

// VerifyEmail marks the token's email as verified and logs that user in without a password.
func (s *AuthService) VerifyEmail(ctx context.Context, verificationToken string) (string, *domain.Session, error) {
	claims := &verificationClaims{}
	_, err := jwt.ParseWithClaims(verificationToken, claims, s.keyFunc,
		jwt.WithExpirationRequired(),
		jwt.WithSubject(subjectEmailVerify),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || claims.Email == "" {
		return "", nil, fmt.Errorf("%w: invalid verification token", domain.ErrInvalidInput)
	}

	users, err := s.users.FindByEmail(ctx, claims.Email)
	if err != nil {
		return "", nil, fmt.Errorf("find user to verify: %w", err)
	}
	if len(users) == 0 {
		return "", nil, domain.ErrNotFound
	}

	user := users[0]
	if !user.EmailVerified {
		verified := true
		if err := s.users.Update(ctx, user.ID, domain.UserUpdate{EmailVerified: &verified}); err != nil {
			return "", nil, fmt.Errorf("mark email verified: %w", err)
		}
		s.log.InfoContext(ctx, "email verified", "user_id", user.ID)
	}

	identity, err := s.Authorize(ctx, Credentials{Email: claims.Email, Password: VerifiedLoginSentinel})
	if err != nil {
		return "", nil, err
	}
	return s.CompleteSignIn(ctx, domain.AuthProviderCredentials, identity, "")
}
