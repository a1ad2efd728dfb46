package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "storefront",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	OrdersCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "orders_created_total",
		Help:      "Orders committed",
	})

	NotificationsFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "notifications_failed_total",
		Help:      "Admin order notifications that could not be delivered",
	})

	EventsFailed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "events_failed_total",
		Help:      "Domain events that could not be published or indexed",
	}, []string{"sink"})
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(HTTPDuration, HTTPRequests, OrdersCreated, NotificationsFailed, EventsFailed)
}

// Middleware records per-route request counts and latency. Routes are
// labelled by their pattern so ids do not explode cardinality.
func Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)

		status := c.Response().Status
		if he, ok := err.(*echo.HTTPError); ok {
			status = he.Code
		} else if err != nil {
			status = 500
		}
		path := c.Path()
		if path == "" {
			path = "unmatched"
		}

		labels := prometheus.Labels{
			"method": c.Request().Method,
			"path":   path,
			"status": strconv.Itoa(status),
		}
		HTTPRequests.With(labels).Inc()
		HTTPDuration.With(labels).Observe(time.Since(start).Seconds())
		return err
	}
}
