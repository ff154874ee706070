package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	sessionCookieName  = "session-token"
	stateCookieName    = "oauth_state"
	callbackCookieName = "callback_url"

	flowCookieMaxAge = 10 * time.Minute
)

// CookieConfig controls the attributes of the cookies set by the auth handlers.
type CookieConfig struct {
	Secure bool
	MaxAge time.Duration
}

func (cc CookieConfig) setSession(c echo.Context, token string) {
	cc.set(c, sessionCookieName, token, cc.MaxAge)
}

func (cc CookieConfig) clearSession(c echo.Context) {
	cc.set(c, sessionCookieName, "", -1)
}

func (cc CookieConfig) set(c echo.Context, name, value string, maxAge time.Duration) {
	seconds := int(maxAge.Seconds())
	if maxAge < 0 {
		seconds = -1
	}
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   cc.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   seconds,
	})
}

func readCookie(c echo.Context, name string) string {
	cookie, err := c.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// safeCallbackURL keeps only same-site absolute paths so the post-login redirect
// cannot send the browser elsewhere.
func safeCallbackURL(raw string) string {
	if !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return "/"
	}
	return raw
}
