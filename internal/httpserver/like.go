package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
)

type LikeHTTP struct {
	Svc *service.LikeService
}

func (h *LikeHTTP) Like(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "like.like")

	who, err := caller(c)
	if err != nil {
		return fail(l, "like_error", err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return fail(l, "like_error", err)
	}
	if err := h.Svc.Like(ctx, who.ID, id); err != nil {
		return fail(l, "like_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *LikeHTTP) Unlike(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "like.unlike")

	who, err := caller(c)
	if err != nil {
		return fail(l, "unlike_error", err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return fail(l, "unlike_error", err)
	}
	if err := h.Svc.Unlike(ctx, who.ID, id); err != nil {
		return fail(l, "unlike_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}
