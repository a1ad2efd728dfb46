package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware(t *testing.T) {
	e := echo.New()
	e.Use(Middleware)
	e.GET("/api/product/:id", func(c echo.Context) error {
		if c.Param("id") == "missing" {
			return echo.NewHTTPError(http.StatusNotFound, "Product not found")
		}
		return c.NoContent(http.StatusOK)
	})

	ok := prometheus.Labels{"method": "GET", "path": "/api/product/:id", "status": "200"}
	missing := prometheus.Labels{"method": "GET", "path": "/api/product/:id", "status": "404"}
	beforeOK := testutil.ToFloat64(HTTPRequests.With(ok))
	beforeMissing := testutil.ToFloat64(HTTPRequests.With(missing))

	for _, id := range []string{"a", "b", "missing"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/product/"+id, nil))
	}

	assert.Equal(t, beforeOK+2, testutil.ToFloat64(HTTPRequests.With(ok)))
	assert.Equal(t, beforeMissing+1, testutil.ToFloat64(HTTPRequests.With(missing)))
}

func TestRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NotPanics(t, func() { Register(reg) })
	assert.Panics(t, func() { Register(reg) })
}
