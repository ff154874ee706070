package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sumire/careerpath/internal/domain"
	"github.com/sumire/careerpath/internal/service"
)

const (
	contextKeySession = "session"
)

// RequestLogger logs each HTTP request with structured fields. Errors are handed
// to the echo error handler first so the logged status is the one sent.
func RequestLogger(log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			if err := next(c); err != nil {
				c.Error(err)
			}

			attrs := []any{
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", c.Response().Status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			}
			if s := GetSession(c); s != nil {
				attrs = append(attrs, "user_id", s.User.ID)
			}
			log.InfoContext(c.Request().Context(), "http request", attrs...)

			return nil
		}
	}
}

// SessionLoader resolves the session cookie into a Session and stores it in the echo
// context. Requests without a valid cookie continue anonymously.
func SessionLoader(auth *service.AuthService, cookies CookieConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := readCookie(c, sessionCookieName)
			if raw == "" {
				return next(c)
			}

			ctx := c.Request().Context()
			session, reissued, err := auth.ResolveRequest(ctx, raw)
			if err != nil {
				slog.DebugContext(ctx, "discarding session cookie", "error", err)
				cookies.clearSession(c)
				return next(c)
			}
			if reissued != "" {
				cookies.setSession(c, reissued)
			}

			c.Set(contextKeySession, session)
			return next(c)
		}
	}
}

// AccessControl applies service.Access to every request. Denied API calls get a 401,
// denied pages are redirected to the login page.
func AccessControl() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			decision := service.Access(GetSession(c), path)

			switch decision.Kind {
			case service.Redirect:
				return c.Redirect(http.StatusFound, decision.Location)
			case service.Deny:
				if strings.HasPrefix(path, "/api/") {
					return domain.ErrUnauthorized
				}
				return c.Redirect(http.StatusFound, decision.Location)
			}
			return next(c)
		}
	}
}

// GetSession returns the session resolved for this request, or nil for anonymous requests.
func GetSession(c echo.Context) *domain.Session {
	s, _ := c.Get(contextKeySession).(*domain.Session)
	return s
}
