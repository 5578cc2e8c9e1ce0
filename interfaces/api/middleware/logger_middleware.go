package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"task-tracker/pkg/logger"
)

// LoggerMiddleware structured logging สำหรับทุก request (ยกเว้น /health)
func LoggerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Path() == "/health" {
			return c.Next()
		}

		start := time.Now()

		err := c.Next()

		latency := time.Since(start)
		status := c.Response().StatusCode()

		logFunc := logger.InfoContext
		if status >= 500 {
			logFunc = logger.ErrorContext
		} else if status >= 400 {
			logFunc = logger.WarnContext
		}

		logFunc(c.UserContext(), "Request completed",
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"ip", c.IP(),
			"latency", latency.String(),
			"bytes", len(c.Response().Body()),
		)

		return err
	}
}
