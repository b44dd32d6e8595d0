package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Alwanly/attribute-poll/pkg/logger"
)

const HeaderCorrelationID = "X-Correlation-ID"

// CanonicalLoggerMiddleware emits one log line per request, carrying every
// field handlers and usecases added to the request's LogContext.
func CanonicalLoggerMiddleware(log *logger.CanonicalLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		logCtx := logger.NewLogContext()
		c.Locals("log_context", logCtx)

		correlationID := c.Get(HeaderCorrelationID)
		if correlationID == "" {
			correlationID = uuid.NewString()
		}
		c.Set(HeaderCorrelationID, correlationID)

		ctx := logger.WithLogContext(c.UserContext(), logCtx)
		c.SetUserContext(logger.WithCorrelationID(ctx, correlationID))

		if id, ok := c.Locals("requestid").(string); ok {
			logCtx.AddField(logger.String(logger.FieldRequestID, id))
		}

		start := time.Now()
		defer func() {
			duration := time.Since(start)
			status := c.Response().StatusCode()

			fields := append([]zap.Field{
				logger.String("method", c.Method()),
				logger.String("path", c.Path()),
				logger.Int("status", status),
				logger.Int64("duration_ms", duration.Milliseconds()),
				logger.String(logger.FieldCorrelationID, correlationID),
			}, logCtx.Fields()...)

			switch {
			case status >= fiber.StatusInternalServerError:
				log.Error("http_request", fields...)
			case status >= fiber.StatusBadRequest:
				log.Info("http_request_client_error", fields...)
			default:
				log.Info("http_request", fields...)
			}
		}()

		return c.Next()
	}
}
