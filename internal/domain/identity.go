package domain

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the minimal record a provider hands over after authenticating someone.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Image string `json:"image,omitempty"`
}

// Token is the signed, client-held claim set that keeps a browser logged in.
type Token struct {
	UserID      string `json:"id,omitempty"`
	Email       string `json:"email,omitempty"`
	Name        string `json:"name,omitempty"`
	Picture     string `json:"picture,omitempty"`
	AccessToken string `json:"accessToken,omitempty"`
	jwt.RegisteredClaims
}

// UnresolvedPrefix marks a session user ID that does not refer to a real user.
const UnresolvedPrefix = "unresolved:"

// UnresolvedReason explains why a session identity could not be resolved.
type UnresolvedReason string

const (
	ReasonNoUserForEmail UnresolvedReason = "no-user-for-email"
	ReasonNoEmail        UnresolvedReason = "no-email"
	ReasonSessionError   UnresolvedReason = "session-error"
)

// Resolution is the outcome of resolving a session identity: either a user ID or a reason.
// The zero value is unresolved with ReasonSessionError.
type Resolution struct {
	id     string
	reason UnresolvedReason
}

// Resolved returns a resolution carrying a real user ID.
func Resolved(id string) Resolution {
	return Resolution{id: id}
}

// Unresolved returns a resolution carrying only the failure reason.
func Unresolved(reason UnresolvedReason) Resolution {
	return Resolution{reason: reason}
}

// ID returns the user ID and whether the identity was resolved.
func (r Resolution) ID() (string, bool) {
	return r.id, r.id != ""
}

// Reason returns why the identity is unresolved, or "" if it is resolved.
func (r Resolution) Reason() UnresolvedReason {
	if r.id != "" {
		return ""
	}
	if r.reason == "" {
		return ReasonSessionError
	}
	return r.reason
}

// String returns the wire form: the user ID, or UnresolvedPrefix followed by the reason.
func (r Resolution) String() string {
	if r.id != "" {
		return r.id
	}
	return UnresolvedPrefix + string(r.Reason())
}

// IsUnresolvedID reports whether a wire user ID is an unresolved marker.
func IsUnresolvedID(id string) bool {
	return id == "" || strings.HasPrefix(id, UnresolvedPrefix)
}

// SessionUser is the user half of a Session.
type SessionUser struct {
	ID       string     `json:"id"`
	Email    string     `json:"email,omitempty"`
	Name     string     `json:"name,omitempty"`
	Image    string     `json:"image,omitempty"`
	Identity Resolution `json:"-"`
}

// Resolve sets both the tagged identity and its wire ID.
func (u *SessionUser) Resolve(r Resolution) {
	u.Identity = r
	u.ID = r.String()
}

// Session is the per-request projection of a Token handed to application code.
type Session struct {
	User    SessionUser `json:"user"`
	Expires time.Time   `json:"expires"`
}

// UserID returns the resolved user ID, or false when identity resolution degraded.
func (s *Session) UserID() (string, bool) {
	if s == nil {
		return "", false
	}
	return s.User.Identity.ID()
}
