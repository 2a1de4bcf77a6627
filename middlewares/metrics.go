package middlewares

import (
	"time"

	"payments-backend/metrics"

	"github.com/gofiber/fiber/v2"
)

// Metrics records request count and latency per route pattern (not the
// raw path, to keep id cardinality out of the metric fields). Register it
// before RequestLogger so it observes the finalized status code.
func Metrics(rec metrics.Recorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		route := c.Route().Path
		rec.RecordRequest(c.Method(), route, c.Response().StatusCode(), time.Since(start))
		return err
	}
}
