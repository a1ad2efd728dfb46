package httpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/service"
)

func detail(err, sentinel error) string {
	return strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
}

// classify maps service errors onto a status and a message safe to show.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrProductsNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrContactHandleRequired):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrValidation):
		msg, _, _ := strings.Cut(detail(err, service.ErrValidation), ": ")
		return http.StatusBadRequest, msg
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, detail(err, service.ErrUnauthorized)
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, detail(err, service.ErrForbidden)
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, detail(err, service.ErrNotFound) + " not found"
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict, detail(err, service.ErrConflict)
	case errors.Is(err, service.ErrBusinessRule):
		return http.StatusConflict, detail(err, service.ErrBusinessRule)
	case errors.Is(err, search.ErrDisabled):
		return http.StatusServiceUnavailable, "search is not configured"
	}
	return http.StatusInternalServerError, "internal error"
}

// fail logs err once and returns the HTTP error the client sees.
func fail(l *slog.Logger, event string, err error) error {
	status, msg := classify(err)
	body := echo.Map{"message": msg}

	var fe service.FieldErrors
	if errors.As(err, &fe) {
		msg = "validation failed"
		body = echo.Map{"message": msg, "errors": fe}
	}

	if status >= http.StatusInternalServerError {
		l.Error(event, "status", status, "reason", msg, "error", err)
	} else {
		l.Warn(event, "status", status, "reason", msg, "error", err)
	}
	return echo.NewHTTPError(status, body)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{service.ErrValidation}, args...)...)
}

// bind decodes and validates the request body.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return fmt.Errorf("%w: invalid body: %w", service.ErrValidation, err)
	}
	return c.Validate(req)
}
