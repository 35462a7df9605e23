package middleware

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Logger logs one JSON record per request with request_id, method, path,
// status and latency (milliseconds). Server errors log at error level,
// client errors at warn.
func Logger(logger *slog.Logger) fiber.Handler {
	log := logger.With("component", "http")

	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		rid, _ := c.Locals(RequestIDLocalKey).(string)
		status := statusOf(c, err)

		level := slog.LevelInfo
		switch {
		case status >= fiber.StatusInternalServerError:
			level = slog.LevelError
		case status >= fiber.StatusBadRequest:
			level = slog.LevelWarn
		}

		attrs := []any{
			"request_id", rid,
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency", float64(time.Since(start).Microseconds()) / 1000,
		}
		if uid, ok := c.Locals(UserIDLocalKey).(string); ok {
			attrs = append(attrs, "user_id", uid)
		}
		if err != nil && status >= fiber.StatusInternalServerError {
			attrs = append(attrs, "error", err.Error())
		}
		log.Log(c.UserContext(), level, "http_request", attrs...)

		return err
	}
}

// statusOf is the status the error handler will send for err.
func statusOf(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}
