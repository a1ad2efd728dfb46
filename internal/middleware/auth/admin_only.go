package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
)

// RequireAdmin must run after RequireAuth.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := UserID(c); !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing or malformed token")
		}
		if !IsAdmin(c) {
			logging.FromContext(c.Request().Context()).Warn("auth_error",
				"middleware", "auth.require_admin", "status", http.StatusForbidden, "reason", "not an admin")
			return echo.NewHTTPError(http.StatusForbidden, "you don't have enough rights")
		}
		return next(c)
	}
}
