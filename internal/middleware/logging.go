package middleware

import (
	"log/slog"
	"time"

	"devlink/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// StructuredLogger logs one line per request through the shared slog logger.
// 5xx responses and handler errors log at error level, 4xx at warn.
func StructuredLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		attrs := []any{
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", c.Response().StatusCode()),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
			slog.Int("bytes", len(c.Response().Body())),
			slog.String("ip", c.IP()),
		}
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			attrs = append(attrs, slog.String("request_id", rid))
		}
		if uid, ok := c.Locals("userID").(uint); ok {
			attrs = append(attrs, slog.Uint64("user_id", uint64(uid)))
		}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}

		status := c.Response().StatusCode()
		switch {
		case err != nil || status >= 500:
			observability.Log.Error("request", attrs...)
		case status >= 400:
			observability.Log.Warn("request", attrs...)
		default:
			observability.Log.Info("request", attrs...)
		}
		return err
	}
}
