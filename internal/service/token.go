package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/sumire/careerpath/internal/domain"
)

// TokenInput carries what a sign-in contributes to a token. Both fields are empty
// when the token is merely being refreshed on a later request.
type TokenInput struct {
	Identity    *domain.Identity
	AccessToken string
}

// JWT merges a sign-in into token and, when the token has no user ID but has an
// email, recovers the ID by email. It never fails: lookup errors are logged and
// the token is returned as it stands. changed reports whether the claims moved.
func (s *AuthService) JWT(ctx context.Context, token *domain.Token, in TokenInput) (_ *domain.Token, changed bool) {
	if token == nil {
		token = &domain.Token{}
	}

	if id := in.Identity; id != nil {
		if id.ID != "" && id.ID != token.UserID {
			token.UserID = id.ID
			changed = true
		}
		changed = setIfDifferent(&token.Email, id.Email) || changed
		changed = setIfDifferent(&token.Name, id.Name) || changed
		changed = setIfDifferent(&token.Picture, id.Image) || changed
	}

	if token.UserID == "" && token.Email != "" {
		users, err := s.users.FindByEmail(ctx, token.Email)
		switch {
		case err != nil:
			s.log.ErrorContext(ctx, "token id recovery failed", "error", err)
		case len(users) == 0:
			s.log.WarnContext(ctx, "token id recovery found no user")
		default:
			token.UserID = users[0].StringID()
			changed = true
			s.log.InfoContext(ctx, "token id recovered by email", "user_id", token.UserID)
		}
	}

	if in.AccessToken != "" && in.AccessToken != token.AccessToken {
		token.AccessToken = in.AccessToken
		changed = true
	}

	return token, changed
}

func setIfDifferent(dst *string, v string) bool {
	if v == "" || *dst == v {
		return false
	}
	*dst = v
	return true
}

const subjectSession = "session"

// IssueToken signs token. A token without an expiry is stamped with a fresh
// lifetime; an existing expiry is kept so refreshes never extend a session.
func (s *AuthService) IssueToken(token *domain.Token) (string, error) {
	now := s.now()
	token.Subject = subjectSession
	if token.IssuedAt == nil {
		token.IssuedAt = jwt.NewNumericDate(now)
	}
	if token.ExpiresAt == nil {
		token.ExpiresAt = jwt.NewNumericDate(token.IssuedAt.Add(s.maxAge))
	}
	if token.ID == "" {
		token.ID = uuid.NewString()
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, token).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies a signed session token. Other tokens signed with the same
// secret, such as email verification tokens, are rejected by subject.
func (s *AuthService) ParseToken(tokenString string) (*domain.Token, error) {
	claims := &domain.Token{}
	token, err := jwt.ParseWithClaims(tokenString, claims, s.keyFunc,
		jwt.WithExpirationRequired(),
		jwt.WithSubject(subjectSession),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: parse session token: %v", domain.ErrUnauthorized, err)
	}
	if !token.Valid {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

func (s *AuthService) keyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
	}
	return s.secret, nil
}

func parseUserID(userID string) (int64, error) {
	if domain.IsUnresolvedID(userID) {
		return 0, domain.ErrUnauthorized
	}
	id, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: malformed user id", domain.ErrInvalidInput)
	}
	return id, nil
}
