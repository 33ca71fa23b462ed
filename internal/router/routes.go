package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/prospect-agent/internal/auth"
	"github.com/octobees/prospect-agent/internal/config"
	"github.com/octobees/prospect-agent/internal/handler"
	middlewarepkg "github.com/octobees/prospect-agent/internal/middleware"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Auth      *handler.AuthHandler
	Prospects *handler.ProspectsHandler
	Admin     *handler.AdminHandler
}

// Register wires all HTTP routes for the API.
func Register(e *echo.Echo, cfg *config.Config, jwtManager *auth.JWTManager, handlers Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return handler.Success(c, http.StatusOK, "service healthy", map[string]any{"status": "ok"})
	})

	e.POST("/auth/login", handlers.Auth.Login)
	e.GET("/prospects", handlers.Prospects.List)
	e.GET("/stats", handlers.Prospects.Stats)

	secured := e.Group("")
	secured.Use(middlewarepkg.JWT(jwtManager))

	secured.POST("/admin/refresh", handlers.Admin.Refresh, middlewarepkg.RefreshRateLimiter(cfg.RateLimitRefresh))
}
