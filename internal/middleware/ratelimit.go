package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// LoginRateLimit throttles credential-guessing with a fixed window per client
// IP, counted in Redis so the limit holds across instances.  The middleware
// fails open: with no Redis client, a zero limit, or a Redis error the
// request passes through; rate limiting is protection, not a dependency.
func LoginRateLimit(rdb *redis.Client, limit int, window time.Duration) echo.MiddlewareFunc {
	if rdb == nil || limit <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if ip == "" {
				ip = "unknown"
			}
			key := "ratelimit:login:" + ip
			ctx := c.Request().Context()

			n, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				c.Logger().Warnf("ratelimit: redis error for %s: %v", key, err)
				return next(c)
			}
			if n == 1 {
				// First hit in this window starts the clock.
				_ = rdb.Expire(ctx, key, window).Err()
			}
			if n > int64(limit) {
				retry := int(window / time.Second)
				if ttl, err := rdb.TTL(ctx, key).Result(); err == nil && ttl > 0 {
					retry = int(ttl / time.Second)
				}
				c.Response().Header().Set("Retry-After", strconv.Itoa(retry))
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"error":       "too_many_requests",
					"retry_after": retry,
				})
			}
			return next(c)
		}
	}
}
