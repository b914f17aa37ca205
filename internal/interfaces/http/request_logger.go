package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/agrocontrol/agrocontrol-api/pkg/logger"
)

// RequestLogger registra cada petición con nivel según el status (5xx error, 4xx warn).
// Si Tracing corre antes, la línea lleva trace_id y span_id.
func RequestLogger(base zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		chainErr := c.Next()
		if chainErr != nil {
			// Deja que el ErrorHandler fije el status antes de registrar.
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		log := logger.WithTrace(c.UserContext(), base)
		status := c.Response().StatusCode()
		var event *zerolog.Event
		switch {
		case status >= 500:
			event = log.Error()
		case status >= 400:
			event = log.Warn()
		default:
			event = log.Info()
		}
		if err, ok := c.Locals(LocalError).(error); ok {
			event = event.Err(err)
		}
		event.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status_code", status).
			Str("client_ip", c.IP()).
			Dur("latency", time.Since(start)).
			Str("user_id", GetUserID(c)).
			Msg("petición procesada")
		return nil
	}
}
