package middleware

import (
	"strconv"
	"time"

	"storefront/internal/metrics"

	"github.com/gofiber/fiber/v2"
)

// PrometheusMetrics records request counts and latencies by route pattern.
func PrometheusMetrics(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		m.RequestsInFlight.Inc()
		defer m.RequestsInFlight.Dec()

		err := c.Next()

		routePattern := c.Route().Path
		if routePattern == "" {
			routePattern = "unknown"
		}
		status := strconv.Itoa(responseStatus(c, err))

		m.RequestsTotal.WithLabelValues(c.Method(), routePattern, status).Inc()
		m.RequestDuration.WithLabelValues(c.Method(), routePattern, status).Observe(time.Since(start).Seconds())
		return err
	}
}
