package service

import (
	"context"
	"time"

	"github.com/sumire/careerpath/internal/domain"
)

// Session projects token onto session for the current request. The returned
// session always carries a user ID: the real one, one recovered by email, or an
// unresolved marker. Panics in any step are recovered into ReasonSessionError.
func (s *AuthService) Session(ctx context.Context, session *domain.Session, token *domain.Token) (out *domain.Session) {
	if session == nil {
		session = &domain.Session{}
	}
	out = session

	defer func() {
		if r := recover(); r != nil {
			s.log.ErrorContext(ctx, "session materialization panicked", "panic", r)
			out.User.Resolve(domain.Unresolved(domain.ReasonSessionError))
		}
	}()

	if token == nil {
		token = &domain.Token{}
	}
	if session.Expires.IsZero() && token.ExpiresAt != nil {
		session.Expires = token.ExpiresAt.Time
	}

	u := &session.User
	switch {
	case token.UserID != "":
		u.Resolve(domain.Resolved(token.UserID))
		u.Email = firstNonEmpty(token.Email, u.Email)
		u.Name = firstNonEmpty(token.Name, u.Name)
		u.Image = firstNonEmpty(token.Picture, u.Image)

	case firstNonEmpty(u.Email, token.Email) != "":
		u.Email = firstNonEmpty(u.Email, token.Email)
		u.Resolve(s.recoverSessionUser(ctx, u))

	default:
		s.log.WarnContext(ctx, "session has neither user id nor email")
		u.Resolve(domain.Unresolved(domain.ReasonNoEmail))
	}

	return out
}

func (s *AuthService) recoverSessionUser(ctx context.Context, u *domain.SessionUser) domain.Resolution {
	users, err := s.users.FindByEmail(ctx, u.Email)
	if err != nil {
		s.log.ErrorContext(ctx, "session id recovery failed", "error", err)
		return domain.Unresolved(domain.ReasonSessionError)
	}
	if len(users) == 0 {
		s.log.WarnContext(ctx, "session id recovery found no user")
		return domain.Unresolved(domain.ReasonNoUserForEmail)
	}

	user := users[0]
	u.Name = firstNonEmpty(user.DisplayName(), u.Name)
	u.Image = firstNonEmpty(user.AvatarURL(), u.Image)
	s.log.InfoContext(ctx, "session id recovered by email", "user_id", user.ID)
	return domain.Resolved(user.StringID())
}

// newSession returns an empty session expiring with token.
func newSession(token *domain.Token) *domain.Session {
	session := &domain.Session{}
	if token != nil && token.ExpiresAt != nil {
		session.Expires = token.ExpiresAt.Time.UTC().Truncate(time.Second)
	}
	return session
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
