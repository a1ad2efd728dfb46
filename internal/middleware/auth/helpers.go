package auth

import (
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

type TokenParser interface {
	Parse(raw string) (*tokens.Claims, error)
}

func bearer(c echo.Context) (string, bool) {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func setUserContext(c echo.Context, claims *tokens.Claims) error {
	id, err := claims.UserID()
	if err != nil {
		return err
	}
	c.Set(ctxUserID, id)
	c.Set(ctxRole, claims.Role)

	req := c.Request()
	l := logging.FromContext(req.Context()).With("user_id", id, "role", claims.Role)
	c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))
	return nil
}

// UserID returns the authenticated user, if any.
func UserID(c echo.Context) (uuid.UUID, bool) {
	id, ok := c.Get(ctxUserID).(uuid.UUID)
	return id, ok
}

func IsAdmin(c echo.Context) bool {
	role, _ := c.Get(ctxRole).(string)
	return role == tokens.RoleAdmin
}

func Caller(c echo.Context) (service.Caller, bool) {
	id, ok := UserID(c)
	if !ok {
		return service.Caller{}, false
	}
	return service.Caller{ID: id, IsAdmin: IsAdmin(c)}, true
}
