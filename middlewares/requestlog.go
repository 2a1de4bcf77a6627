package middlewares

import (
	"log/slog"
	"time"

	"payments-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const maxLoggedBody = 5000

// RequestLogger emits one structured log line per request with masked
// request/response bodies and propagates a correlation id: an inbound
// X-Correlation-ID is reused, otherwise a fresh one is issued, and either
// way it is echoed on the response.
//
// Errors from the handler chain are materialized here through
// ErrorHandler so the logged status and body are the ones the client
// actually received. Register this middleware after Metrics, which reads
// the finished response on the way out.
func RequestLogger(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		correlationID := c.Get("X-Correlation-ID")
		if correlationID == "" {
			correlationID = uuid.NewString()
		}
		c.Locals("correlationID", correlationID)
		c.Set("X-Correlation-ID", correlationID)

		reqBody := truncate(utils.MaskSensitive(string(c.Body())))

		start := time.Now()
		err := c.Next()
		if err != nil {
			if herr := ErrorHandler(c, err); herr != nil {
				c.Status(fiber.StatusInternalServerError)
			}
		}
		duration := time.Since(start)

		status := c.Response().StatusCode()
		respBody := truncate(utils.MaskSensitive(string(c.Response().Body())))

		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400, duration > 5*time.Second:
			level = slog.LevelWarn
		}

		logger.LogAttrs(c.UserContext(), level, "http request",
			slog.String("correlation_id", correlationID),
			slog.String("method", c.Method()),
			slog.String("path", c.OriginalURL()),
			slog.Int("status", status),
			slog.Int64("duration_ms", duration.Milliseconds()),
			slog.String("duration_category", durationCategory(duration)),
			slog.String("client_ip", c.IP()),
			slog.String("request_body", reqBody),
			slog.String("response_body", respBody),
		)
		return nil
	}
}

func truncate(s string) string {
	if len(s) > maxLoggedBody {
		return s[:maxLoggedBody] + "... (truncated)"
	}
	return s
}

func durationCategory(d time.Duration) string {
	switch {
	case d < 100*time.Millisecond:
		return "fast"
	case d < time.Second:
		return "normal"
	case d < 5*time.Second:
		return "slow"
	default:
		return "very_slow"
	}
}
