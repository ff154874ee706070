package domain

import (
	"strconv"
	"time"
)

// AuthProvider identifies how an identity was authenticated.
type AuthProvider string

const (
	AuthProviderCredentials AuthProvider = "credentials"
	AuthProviderGoogle      AuthProvider = "google"
	AuthProviderGitHub      AuthProvider = "github"
)

// ParseAuthProvider returns the provider named s, or false if s is not a known provider.
func ParseAuthProvider(s string) (AuthProvider, bool) {
	switch p := AuthProvider(s); p {
	case AuthProviderCredentials, AuthProviderGoogle, AuthProviderGitHub:
		return p, true
	default:
		return "", false
	}
}

// IsOAuth reports whether the provider authenticates through an external OAuth exchange.
func (p AuthProvider) IsOAuth() bool {
	return p == AuthProviderGoogle || p == AuthProviderGitHub
}

// User represents a persisted account. A nil PasswordHash marks an OAuth-only account.
type User struct {
	ID            int64     `json:"id" db:"id"`
	Email         string    `json:"email" db:"email"`
	Name          *string   `json:"name,omitempty" db:"name"`
	Image         *string   `json:"image,omitempty" db:"image"`
	PasswordHash  *string   `json:"-" db:"password_hash"`
	EmailVerified bool      `json:"email_verified" db:"email_verified"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// StringID returns the identifier in the form used above the storage layer.
func (u User) StringID() string {
	return strconv.FormatInt(u.ID, 10)
}

// IsCredentialsUser reports whether the user may authenticate with a password.
func (u User) IsCredentialsUser() bool {
	return u.PasswordHash != nil
}

// DisplayName returns the stored name or an empty string.
func (u User) DisplayName() string {
	return deref(u.Name)
}

// AvatarURL returns the stored image URL or an empty string.
func (u User) AvatarURL() string {
	return deref(u.Image)
}

// NewUser holds the fields required to create a User.
type NewUser struct {
	Email         string
	PasswordHash  *string
	Name          *string
	Image         *string
	EmailVerified bool
}

// UserUpdate is a partial update; nil fields are left untouched.
type UserUpdate struct {
	Name          *string
	Image         *string
	EmailVerified *bool
}

// IsEmpty reports whether the update changes nothing.
func (u UserUpdate) IsEmpty() bool {
	return u.Name == nil && u.Image == nil && u.EmailVerified == nil
}

// StrPtr returns a pointer to s, or nil when s is empty.
func StrPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
