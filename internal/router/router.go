package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/user-directory/internal/config"
	"github.com/iliyamo/user-directory/internal/handler"
	"github.com/iliyamo/user-directory/internal/middleware"
	"github.com/iliyamo/user-directory/internal/model"
	"github.com/iliyamo/user-directory/internal/token"
)

// RegisterRoutes registers routes that do not require authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth wires the authentication surface.  Register/login/refresh live
// under /v1/auth without a session; login and register share a redis-backed
// rate limit.  Logout and the profile endpoint require a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, tm *token.Manager, rdb *redis.Client, cfg config.Config) {
	g := e.Group("/v1/auth")
	limited := middleware.LoginRateLimit(rdb, cfg.LoginRateLimit, cfg.LoginRateWindow)
	g.POST("/register", a.Register, limited)
	g.POST("/login", a.Login, limited)
	// Refresh rotates: each presented refresh token works exactly once.
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout, middleware.JWTAuth(tm))

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(tm))
	auth.GET("/users/me", a.Me)
}

// RegisterAccounts wires the admin-only directory endpoints.  The role
// requirement is declared statically here, per route, and evaluated after
// token verification has populated the principal.
func RegisterAccounts(e *echo.Echo, u *handler.AccountHandler, tm *token.Manager) {
	admin := e.Group("/v1/users")
	admin.Use(middleware.JWTAuth(tm))
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.GET("", u.List)
	admin.DELETE("/:id", u.Delete)
}
