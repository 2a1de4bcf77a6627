package controllers

import (
	"payments-backend/middlewares"
	"payments-backend/models"
	"payments-backend/services"

	"github.com/gofiber/fiber/v2"
)

// PaymentController translates HTTP requests into charge-service calls.
// Status-code mapping for service errors lives in middlewares.ErrorHandler;
// handlers just return them.
type PaymentController struct {
	payments *services.PaymentService
}

func NewPaymentController(payments *services.PaymentService) *PaymentController {
	return &PaymentController{payments: payments}
}

// CreateCharge handles POST /v1/payments/charge. The Idempotency-Key
// header is mandatory; retries bearing the same key replay the first
// response with is_idempotent set.
func (pc *PaymentController) CreateCharge(c *fiber.Ctx) error {
	var req models.ChargeRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}

	resp, err := pc.payments.CreateCharge(c.Get("Idempotency-Key"), &req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GetPayment handles GET /v1/payments/:id.
func (pc *PaymentController) GetPayment(c *fiber.Ctx) error {
	resp, err := pc.payments.GetCharge(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// CapturePayment handles PATCH /v1/payments/:id/capture.
func (pc *PaymentController) CapturePayment(c *fiber.Ctx) error {
	resp, err := pc.payments.CaptureCharge(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// CancelPayment handles PATCH /v1/payments/:id/cancel.
func (pc *PaymentController) CancelPayment(c *fiber.Ctx) error {
	resp, err := pc.payments.CancelCharge(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
