package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
)

// RequireAuth rejects requests without a valid bearer token.
func RequireAuth(p TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			l := logging.FromContext(c.Request().Context()).With("middleware", "auth.require_auth")

			raw, ok := bearer(c)
			if !ok {
				l.Warn("auth_error", "status", http.StatusUnauthorized, "reason", "missing bearer token")
				return echo.NewHTTPError(http.StatusUnauthorized, "missing or malformed token")
			}
			claims, err := p.Parse(raw)
			if err != nil {
				l.Warn("auth_error", "status", http.StatusUnauthorized, "reason", "invalid token", "error", err)
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}
			if err := setUserContext(c, claims); err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}
			return next(c)
		}
	}
}

// OptionalAuth identifies the caller when a valid token is present and lets
// anonymous requests through otherwise.
func OptionalAuth(p TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if raw, ok := bearer(c); ok {
				claims, err := p.Parse(raw)
				if err == nil {
					err = setUserContext(c, claims)
				}
				if err != nil {
					logging.FromContext(c.Request().Context()).Debug("optional_auth_ignored", "error", err)
				}
			}
			return next(c)
		}
	}
}
