package observability

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// RequestLogger logs one line per request and feeds metrics. Paths are
// recorded by route pattern so ticket ids do not explode the counters.
func RequestLogger(logger *zap.Logger, metrics *Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		duration := time.Since(start)

		status := c.Response().StatusCode()
		if err != nil {
			status = apperrors.ToDomainError(err).HTTPStatus
		}
		path := RoutePattern(c)
		metrics.RecordRequest(path, c.Method(), status, duration)

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("route", path),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("ip", c.IP()),
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
		}
		logger.Info("request", fields...)
		return err
	}
}

// UnmatchedRoute labels requests that reached no registered route.
const UnmatchedRoute = "unmatched"

// RoutePattern returns the registered path of the route that served c,
// such as "/tickets/:id". Requests only matched by global middleware
// collapse into UnmatchedRoute so arbitrary URLs cannot grow the counters.
func RoutePattern(c *fiber.Ctx) string {
	if r := c.Route(); r != nil && r.Path != "" && r.Path != "/" && len(r.Handlers) > 0 {
		return r.Path
	}
	return UnmatchedRoute
}
