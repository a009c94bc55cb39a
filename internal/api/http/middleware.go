package http

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/observability"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(errorEnvelopeMiddleware(logger, metrics))
	app.Use(observability.RequestLogger(logger, metrics))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// errorEnvelopeMiddleware renders every failure as
// {"error":{"code","message","details?"}} and counts it against the
// matched route pattern.
func errorEnvelopeMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					zap.String("route", observability.RoutePattern(c)),
					zap.Any("panic", r),
					zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err == nil {
				return
			}
			domainErr := apperrors.ToDomainError(err)
			route := observability.RoutePattern(c)
			metrics.RecordError(route, c.Method(), domainErr.Code)

			if domainErr.HTTPStatus >= fiber.StatusInternalServerError {
				fields := []zap.Field{
					zap.String("method", c.Method()),
					zap.String("route", route),
					zap.String("code", domainErr.Code),
					zap.Error(domainErr),
				}
				if p, ok := auth.PrincipalFromContext(c); ok {
					fields = append(fields, zap.String("user_id", p.User.ID), zap.String("role", string(p.User.Role)))
				}
				logger.Error("request failed", fields...)
			}

			c.Status(domainErr.HTTPStatus)
			err = c.JSON(errorBody(domainErr))
		}()
		return c.Next()
	}
}

func errorBody(domainErr *apperrors.DomainError) fiber.Map {
	body := fiber.Map{
		"code":    domainErr.Code,
		"message": domainErr.Message,
	}
	if len(domainErr.Details) > 0 {
		body["details"] = domainErr.Details
	}
	return fiber.Map{"error": body}
}
