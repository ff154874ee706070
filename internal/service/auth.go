package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	googleOAuth "golang.org/x/oauth2/google"

	"github.com/sumire/careerpath/internal/domain"
)

// DefaultSessionMaxAge is the absolute lifetime of a session token.
const DefaultSessionMaxAge = 30 * 24 * time.Hour

// UserStore defines the user data access interface consumed by AuthService.
type UserStore interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) ([]domain.User, error)
	Create(ctx context.Context, user domain.NewUser) (*domain.User, error)
	Update(ctx context.Context, id int64, upd domain.UserUpdate) error
}

// AuthConfig holds everything AuthService needs; nothing is read from globals.
type AuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GitHubClientID     string
	GitHubClientSecret string
	Secret             string
	BaseURL            string
	SessionMaxAge      time.Duration

	// Optional collaborators. Passwords defaults to bcrypt, HTTPClient to
	// http.DefaultClient, Logger to slog.Default and Now to time.Now.
	Passwords  PasswordHasher
	HTTPClient *http.Client
	Logger     *slog.Logger
	Now        func() time.Time
}

// AuthService resolves logins, provider sign-ins, tokens and sessions to a user identity.
type AuthService struct {
	users      UserStore
	passwords  PasswordHasher
	secret     []byte
	maxAge     time.Duration
	log        *slog.Logger
	now        func() time.Time
	httpClient *http.Client
	google     *oauth2.Config
	github     *oauth2.Config
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, cfg AuthConfig) *AuthService {
	s := &AuthService{
		users:      users,
		passwords:  cfg.Passwords,
		secret:     []byte(cfg.Secret),
		maxAge:     cfg.SessionMaxAge,
		log:        cfg.Logger,
		now:        cfg.Now,
		httpClient: cfg.HTTPClient,
		google: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			Endpoint:     googleOAuth.Endpoint,
			Scopes:       []string{"openid", "profile", "email"},
			RedirectURL:  cfg.BaseURL + "/api/auth/callback/google",
		},
		github: &oauth2.Config{
			ClientID:     cfg.GitHubClientID,
			ClientSecret: cfg.GitHubClientSecret,
			Endpoint:     github.Endpoint,
			Scopes:       []string{"read:user", "user:email"},
			RedirectURL:  cfg.BaseURL + "/api/auth/callback/github",
		},
	}
	if s.passwords == nil {
		s.passwords = NewBcryptHasher(0)
	}
	if s.maxAge <= 0 {
		s.maxAge = DefaultSessionMaxAge
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.httpClient == nil {
		s.httpClient = http.DefaultClient
	}
	return s
}

// SessionMaxAge returns the absolute token lifetime.
func (s *AuthService) SessionMaxAge() time.Duration {
	return s.maxAge
}

// AuthURL returns the consent page URL for an OAuth provider.
func (s *AuthService) AuthURL(provider domain.AuthProvider, state string) (string, error) {
	cfg, err := s.oauthConfig(provider)
	if err != nil {
		return "", err
	}
	return cfg.AuthCodeURL(state), nil
}

// Exchange trades an authorization code for the provider's profile and access token.
func (s *AuthService) Exchange(ctx context.Context, provider domain.AuthProvider, code string) (*domain.Identity, string, error) {
	cfg, err := s.oauthConfig(provider)
	if err != nil {
		return nil, "", err
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, "", fmt.Errorf("%s token exchange: %w", provider, err)
	}

	var identity *domain.Identity
	switch provider {
	case domain.AuthProviderGoogle:
		identity, err = s.fetchGoogleIdentity(ctx, token.AccessToken)
	case domain.AuthProviderGitHub:
		identity, err = s.fetchGitHubIdentity(ctx, token.AccessToken)
	}
	if err != nil {
		return nil, "", fmt.Errorf("fetch %s user info: %w", provider, err)
	}
	return identity, token.AccessToken, nil
}

// GetUser retrieves a user by the string ID carried in sessions.
func (s *AuthService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	id, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, id)
}

func (s *AuthService) oauthConfig(provider domain.AuthProvider) (*oauth2.Config, error) {
	switch provider {
	case domain.AuthProviderGoogle:
		return s.google, nil
	case domain.AuthProviderGitHub:
		return s.github, nil
	case domain.AuthProviderCredentials:
		return nil, fmt.Errorf("%w: %s is not an oauth provider", domain.ErrInvalidInput, provider)
	}
	return nil, fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, provider)
}

var (
	googleUserInfoURL    = "https://www.googleapis.com/oauth2/v2/userinfo"
	githubUserURL        = "https://api.github.com/user"
	githubUserEmailsURL  = "https://api.github.com/user/emails"
	githubAcceptMimeType = "application/vnd.github.v3+json"
)

type googleUserInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (s *AuthService) fetchGoogleIdentity(ctx context.Context, accessToken string) (*domain.Identity, error) {
	var info googleUserInfo
	if err := s.getJSON(ctx, googleUserInfoURL, accessToken, "", &info); err != nil {
		return nil, err
	}
	return &domain.Identity{Email: info.Email, Name: info.Name, Image: info.Picture}, nil
}

type githubUserInfo struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

func (s *AuthService) fetchGitHubIdentity(ctx context.Context, accessToken string) (*domain.Identity, error) {
	var info githubUserInfo
	if err := s.getJSON(ctx, githubUserURL, accessToken, githubAcceptMimeType, &info); err != nil {
		return nil, err
	}

	if info.Email == "" {
		var emails []githubEmail
		if err := s.getJSON(ctx, githubUserEmailsURL, accessToken, githubAcceptMimeType, &emails); err != nil {
			return nil, fmt.Errorf("fetch emails: %w", err)
		}
		info.Email = primaryEmail(emails)
	}

	name := info.Name
	if name == "" {
		name = info.Login
	}
	return &domain.Identity{Email: info.Email, Name: name, Image: info.AvatarURL}, nil
}

// primaryEmail picks the primary address, then any verified one, then the first.
func primaryEmail(emails []githubEmail) string {
	for _, e := range emails {
		if e.Primary {
			return e.Email
		}
	}
	for _, e := range emails {
		if e.Verified {
			return e.Email
		}
	}
	if len(emails) > 0 {
		return emails[0].Email
	}
	return ""
}

func (s *AuthService) getJSON(ctx context.Context, url, accessToken, accept string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status %d", url, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
