package middleware // package middleware contains reusable HTTP middleware functions

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/user-directory/internal/token"
)

// Context keys populated by JWTAuth and consumed by handlers and RequireRole.
const (
	ClaimsKey = "claims"  // *token.Claims of the authenticated principal
	UserIDKey = "user_id" // uint64 account ID
	RoleKey   = "role"    // string role claim
)

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// injects the resulting principal into the request context.  Access tokens
// are stateless: signature and expiry decide validity, no store lookup.  The
// precise verification failure (expired vs bad signature vs malformed) is
// known to the manager but deliberately not reflected in the response; every
// failure is the same 401.
func JWTAuth(tm *token.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// A valid header is "Bearer <jwt>".  Anything else means the
			// request is unauthenticated.
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims, err := tm.Verify(raw, tm.Access)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			id, err := claims.AccountID()
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			// Expose the principal to downstream middleware and handlers.
			c.Set(ClaimsKey, claims)
			c.Set(UserIDKey, id)
			c.Set(RoleKey, claims.Role)
			return next(c)
		}
	}
}

// PrincipalID returns the authenticated account ID stored by JWTAuth.
func PrincipalID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(UserIDKey).(uint64)
	return id, ok
}
