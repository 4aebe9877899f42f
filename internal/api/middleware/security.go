package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// SecurityHeaders sets response hardening headers. Artwork redirects stay
// cacheable by clients; administrative endpoints are marked no-store.
func SecurityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()

			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("Referrer-Policy", "no-referrer")

			path := c.Request().URL.Path
			if strings.HasPrefix(path, "/cache") || strings.HasPrefix(path, "/tasks") || path == "/healthcheck" {
				h.Set("Cache-Control", "no-store")
			}

			return next(c)
		}
	}
}
