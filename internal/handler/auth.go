package handler

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sumire/careerpath/internal/domain"
	"github.com/sumire/careerpath/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	auth    *service.AuthService
	cookies CookieConfig
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService, cookies CookieConfig) *AuthHandler {
	if cookies.MaxAge <= 0 {
		cookies.MaxAge = auth.SessionMaxAge()
	}
	return &AuthHandler{auth: auth, cookies: cookies}
}

// SignIn redirects the user to the provider's OAuth consent page.
func (h *AuthHandler) SignIn(c echo.Context) error {
	provider, err := oauthProvider(c)
	if err != nil {
		return err
	}

	state := generateState()
	authURL, err := h.auth.AuthURL(provider, state)
	if err != nil {
		return err
	}

	h.cookies.set(c, stateCookieName, state, flowCookieMaxAge)
	h.cookies.set(c, callbackCookieName, safeCallbackURL(c.QueryParam("callbackUrl")), flowCookieMaxAge)
	return c.Redirect(http.StatusTemporaryRedirect, authURL)
}

// Callback handles the OAuth callback, reconciles the account and starts a session.
func (h *AuthHandler) Callback(c echo.Context) error {
	provider, err := oauthProvider(c)
	if err != nil {
		return err
	}

	if err := validateOAuthState(c); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	code := c.QueryParam("code")
	if code == "" {
		return fmt.Errorf("%w: missing code parameter", domain.ErrInvalidInput)
	}

	ctx := c.Request().Context()
	identity, accessToken, err := h.auth.Exchange(ctx, provider, code)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSignInFailed, err)
	}

	signed, _, err := h.auth.CompleteSignIn(ctx, provider, identity, accessToken)
	if err != nil {
		return err
	}

	h.cookies.setSession(c, signed)
	h.cookies.set(c, stateCookieName, "", -1)
	h.cookies.set(c, callbackCookieName, "", -1)
	return c.Redirect(http.StatusFound, safeCallbackURL(readCookie(c, callbackCookieName)))
}

// Credentials logs in with email and password.
func (h *AuthHandler) Credentials(c echo.Context) error {
	var creds service.Credentials
	if err := c.Bind(&creds); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	// Incomplete credentials fail like wrong ones; the field is not reported.
	if err := c.Validate(&creds); err != nil {
		slog.DebugContext(c.Request().Context(), "credentials rejected", "error", err)
		return domain.ErrInvalidCredentials
	}
	// The verification sentinel is only honoured through VerifyEmail.
	if creds.Password == service.VerifiedLoginSentinel {
		return domain.ErrInvalidCredentials
	}

	ctx := c.Request().Context()
	identity, err := h.auth.Authorize(ctx, creds)
	if err != nil {
		return err
	}

	signed, session, err := h.auth.CompleteSignIn(ctx, domain.AuthProviderCredentials, identity, "")
	if err != nil {
		return err
	}

	h.cookies.setSession(c, signed)
	return JSON(c, http.StatusOK, session)
}

// VerifyEmail consumes an email verification token and logs the user in.
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return fmt.Errorf("%w: missing token parameter", domain.ErrInvalidInput)
	}

	signed, _, err := h.auth.VerifyEmail(c.Request().Context(), token)
	if err != nil {
		return err
	}

	h.cookies.setSession(c, signed)
	return c.Redirect(http.StatusFound, service.HomePath)
}

// Session returns the current session, or an empty object for anonymous visitors.
func (h *AuthHandler) Session(c echo.Context) error {
	session := GetSession(c)
	if session == nil {
		return JSON(c, http.StatusOK, struct{}{})
	}
	return JSON(c, http.StatusOK, session)
}

// SignOut clears the session cookie.
func (h *AuthHandler) SignOut(c echo.Context) error {
	h.cookies.clearSession(c)
	return c.NoContent(http.StatusNoContent)
}

// Me returns the currently authenticated user. Sessions whose identity could not be
// resolved are refused rather than used as a user ID.
func (h *AuthHandler) Me(c echo.Context) error {
	userID, ok := GetSession(c).UserID()
	if !ok {
		return domain.ErrUnauthorized
	}

	user, err := h.auth.GetUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return JSON(c, http.StatusOK, user)
}

func oauthProvider(c echo.Context) (domain.AuthProvider, error) {
	provider, ok := domain.ParseAuthProvider(c.Param("provider"))
	if !ok || !provider.IsOAuth() {
		return "", domain.ErrNotFound
	}
	return provider, nil
}

func generateState() string {
	return rand.Text()
}

func validateOAuthState(c echo.Context) error {
	cookie := readCookie(c, stateCookieName)
	if cookie == "" {
		return fmt.Errorf("missing %s cookie", stateCookieName)
	}

	queryState := c.QueryParam("state")
	if queryState == "" || queryState != cookie {
		return fmt.Errorf("state mismatch")
	}

	return nil
}
