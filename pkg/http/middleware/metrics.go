package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
)

// HTTPObserver receives one observation per finished request.
type HTTPObserver interface {
	ObserveHTTP(route, method string, status int, elapsed time.Duration, bytes int64)
	HTTPInFlight(route, method string, delta float64)
}

// Metrics records request counts, latency and response size with templated route labels.
func Metrics(obs HTTPObserver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			route := routeOf(c)
			method := c.Request().Method

			obs.HTTPInFlight(route, method, 1)
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			obs.HTTPInFlight(route, method, -1)

			res := c.Response()
			obs.ObserveHTTP(route, method, res.Status, time.Since(start), res.Size)
			return nil
		}
	}
}

// StatusClass buckets a status code as "2xx", "4xx" and so on.
func StatusClass(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
