package httpserver

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/storage"
)

// ObjectOpener reads stored images back, as MinioStore does.
type ObjectOpener interface {
	Open(ctx context.Context, path string) (io.ReadCloser, string, error)
}

type UploadsHTTP struct {
	Store ObjectOpener
}

func (h *UploadsHTTP) Serve(c echo.Context) error {
	ctx := c.Request().Context()
	path := storage.URLPrefix + c.Param("*")

	rc, contentType, err := h.Store.Open(ctx, path)
	if errors.Is(err, storage.ErrImageNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "image not found")
	}
	if err != nil {
		logging.FromContext(ctx).Error("serve_upload_error", "status", http.StatusInternalServerError, "path", path, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	defer rc.Close()

	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	c.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return c.Stream(http.StatusOK, contentType, rc)
}
