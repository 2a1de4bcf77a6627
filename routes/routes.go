package routes

import (
	"github.com/gofiber/fiber/v2"

	"payments-backend/controllers"
)

// Register wires all HTTP routes.
func Register(app *fiber.App, payments *controllers.PaymentController, snapshots controllers.Snapshotter) {
	app.Get("/health", controllers.Health)
	if snapshots != nil {
		app.Get("/metrics/payments", controllers.PaymentMetrics(snapshots))
	}

	v1 := app.Group("/v1/payments")
	v1.Post("/charge", payments.CreateCharge)
	v1.Get("/:id", payments.GetPayment)
	v1.Patch("/:id/capture", payments.CapturePayment)
	v1.Patch("/:id/cancel", payments.CancelPayment)
}
