package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireRole enforces a statically-declared per-route role requirement
// against the principal's role claim.  Declaring no roles permits everyone:
// a route with no requirement is simply not gated.  The check assumes JWTAuth
// already ran and populated the context; it does not verify tokens itself.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	// Set of acceptable roles, built once at registration time.
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if len(allowed) == 0 {
				return next(c)
			}
			role, ok := c.Get(RoleKey).(string)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
