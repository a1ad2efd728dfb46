package loggingmw

import (
	"log/slog"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
)

// quietPrefixes are probed constantly; their successful requests log at debug.
var quietPrefixes = []string{"/health/", "/metrics"}

// RequestLogger puts a request-scoped logger into the request context and
// writes one line per completed request. The completion line is written
// through whatever logger the context holds by then, so attributes added
// downstream (user_id and role from the auth middleware) appear on it.
func RequestLogger(base *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			rid := req.Header.Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = c.Response().Header().Get(echo.HeaderXRequestID)
			}

			l := base.With("method", req.Method, "path", c.Path(), "remote_ip", c.RealIP())
			if rid != "" {
				l = l.With("request_id", rid)
			}
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			done := logging.FromContext(c.Request().Context())
			status := c.Response().Status
			attrs := []any{"status", status, "duration_ms", time.Since(start).Milliseconds()}
			switch {
			case status >= 500:
				done.Error("request_completed", append(attrs, "error", errStr(err))...)
			case status >= 400:
				done.Warn("request_completed", append(attrs, "reason", errStr(err))...)
			case quiet(req.URL.Path):
				done.Debug("request_completed", attrs...)
			default:
				done.Info("request_completed", append(attrs, "bytes", c.Response().Size)...)
			}
			return nil
		}
	}
}

func quiet(path string) bool {
	for _, p := range quietPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func errStr(err error) string {
	if err == nil {
		return ""
	}
	if he, ok := err.(*echo.HTTPError); ok {
		if msg, ok := he.Message.(string); ok {
			return msg
		}
	}
	return err.Error()
}
