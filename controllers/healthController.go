package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// Snapshotter exposes the accumulated business counters; the Redis
// metrics recorder implements it.
type Snapshotter interface {
	Snapshot() (map[string]map[string]string, error)
}

// Health handles GET /health.
func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// PaymentMetrics serves the business-counter snapshot as JSON.
func PaymentMetrics(snapshots Snapshotter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		data, err := snapshots.Snapshot()
		if err != nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "metrics backend unavailable")
		}
		return c.JSON(data)
	}
}
