package handler

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/sumire/careerpath/internal/service"
)

// NewRouter builds the echo instance with every route and middleware installed.
// Cross-origin requests with credentials are accepted from allowedOrigins only.
func NewRouter(auth *service.AuthService, cookies CookieConfig, allowedOrigins ...string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewAppValidator()
	e.HTTPErrorHandler = HTTPErrorHandler

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(RequestLogger(slog.Default()))
	e.Use(middleware.Recover())
	if len(allowedOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     allowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:     []string{echo.HeaderAccept, echo.HeaderContentType},
			ExposeHeaders:    []string{echo.HeaderXRequestID},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	e.GET("/health", func(c echo.Context) error {
		return JSON(c, http.StatusOK, map[string]string{"status": "ok"})
	})

	authHandler := NewAuthHandler(auth, cookies)

	app := e.Group("", SessionLoader(auth, authHandler.cookies), AccessControl())

	a := app.Group("/api/auth")
	a.GET("/signin/:provider", authHandler.SignIn)
	a.GET("/callback/:provider", authHandler.Callback)
	a.POST("/callback/credentials", authHandler.Credentials)
	a.GET("/verify-email", authHandler.VerifyEmail)
	a.GET("/session", authHandler.Session)
	a.POST("/signout", authHandler.SignOut)

	app.GET("/api/me", authHandler.Me)

	return e
}
