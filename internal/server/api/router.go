package api

import (
	"fileden/internal/server/config"
	"fileden/internal/server/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// SetupRouter creates and configures the echo router with all routes and
// middleware.
func SetupRouter(handler *Handler, svc *service.FileService, cfg *config.Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Global middleware
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Authorization"},
	}))
	e.Use(RequestLogger())

	// Credential-guessing protection on the auth endpoint only
	authLimiter := NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	e.POST("/auth", handler.HandleAuth, authLimiter.Middleware())

	// Protected routes: each call spends one token unit
	auth := BearerAuth(svc)
	e.GET("/me", handler.HandleListFiles, auth)
	e.POST("/me", handler.HandleUpload, auth)
	e.GET("/f/:id", handler.HandleDownload, auth)
	e.GET("/f/:id/share", handler.HandleCreateShare, auth)

	// Share links bypass authentication and traffic quota by design
	e.GET("/s/:id", handler.HandleShareDownload)

	e.GET("/health", handler.HandleHealth)

	return e
}
