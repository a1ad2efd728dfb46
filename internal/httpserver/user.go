package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type UserHTTP struct {
	Svc *service.UserService
}

func (h *UserHTTP) GetMe(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.get_me")

	who, err := caller(c)
	if err != nil {
		return fail(l, "get_me_error", err)
	}
	user, err := h.Svc.GetMe(ctx, who.ID)
	if err != nil {
		return fail(l, "get_me_error", err)
	}
	return c.JSON(http.StatusOK, transport.User(user))
}

// UpdateMe accepts JSON or a multipart form with an optional imageFile.
func (h *UserHTTP) UpdateMe(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.update_me")

	who, err := caller(c)
	if err != nil {
		return fail(l, "update_me_error", err)
	}
	var req transport.UpdateUserRequest
	if err := bind(c, &req); err != nil {
		return fail(l, "update_me_error", err)
	}
	upload, closeUpload, err := formImage(c)
	if err != nil {
		return fail(l, "update_me_error", err)
	}
	defer closeUpload()

	user, err := h.Svc.UpdateMe(ctx, who.ID, req.UpdateInput(), upload)
	if err != nil {
		return fail(l, "update_me_error", err)
	}

	l.Info("update_me_success", "user_id", user.ID)
	return c.JSON(http.StatusOK, transport.User(user))
}

func (h *UserHTTP) DeleteMe(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.delete_me")

	who, err := caller(c)
	if err != nil {
		return fail(l, "delete_me_error", err)
	}
	if err := h.Svc.DeleteMe(ctx, who.ID); err != nil {
		return fail(l, "delete_me_error", err)
	}

	l.Info("delete_me_success", "user_id", who.ID)
	return c.NoContent(http.StatusNoContent)
}
