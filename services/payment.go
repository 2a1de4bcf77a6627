package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"payments-backend/metrics"
	"payments-backend/models"
	"payments-backend/repository"

	"github.com/google/uuid"
)

const defaultCurrency = "USD"

// PaymentService orchestrates the charge lifecycle: idempotent creation,
// lookups, and the capture/cancel transitions. All collaborators are
// injected; the service holds no hidden globals.
type PaymentService struct {
	charges     repository.ChargeRepository
	idempotency *IdempotencyService
	gateway     PaymentGateway
	metrics     metrics.Recorder
	logger      *slog.Logger
}

func NewPaymentService(
	charges repository.ChargeRepository,
	idempotency *IdempotencyService,
	gateway PaymentGateway,
	rec metrics.Recorder,
	logger *slog.Logger,
) *PaymentService {
	return &PaymentService{
		charges:     charges,
		idempotency: idempotency,
		gateway:     gateway,
		metrics:     rec,
		logger:      logger,
	}
}

// CreateCharge validates the request, then runs the charge creation under
// the idempotency guard: a known key replays the first response without
// touching the store or the state machine.
func (s *PaymentService) CreateCharge(key string, req *models.ChargeRequest) (*models.ChargeResponse, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, &ValidationError{Message: "Idempotency-Key header is required"}
	}
	if len(key) > 128 {
		return nil, &ValidationError{Message: "Idempotency-Key too long"}
	}
	if req.Amount <= 0 {
		return nil, &ValidationError{Message: "amount must be greater than 0"}
	}
	if req.Currency == "" {
		req.Currency = defaultCurrency
	}

	resp, _, err := s.idempotency.Do(key, func() (*models.ChargeResponse, error) {
		return s.process(req)
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// process is the miss path: simulated gateway call, initial transition,
// persist, project.
func (s *PaymentService) process(req *models.ChargeRequest) (*models.ChargeResponse, error) {
	if err := s.gateway.Charge(req); err != nil {
		s.metrics.PaymentFailed("processing_error", req.Currency)
		return nil, fmt.Errorf("payment processing failed: %w", err)
	}

	status := models.InitialStatus(req.WantsCapture())
	charge := &models.Charge{
		ID:          uuid.NewString(),
		Status:      status,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Description: req.Description,
		CustomerID:  req.CustomerID,
		CardLast4:   req.CardLast4(),
		CreatedAt:   time.Now().UTC(),
	}
	if req.PaymentMethod != nil {
		charge.PaymentMethodType = req.PaymentMethod.Type
		if charge.PaymentMethodType == "" {
			charge.PaymentMethodType = "card"
		}
	}

	if err := s.charges.Create(charge); err != nil {
		s.metrics.PaymentFailed("storage_error", req.Currency)
		return nil, fmt.Errorf("store charge: %w", err)
	}

	s.metrics.PaymentCreated(charge.Amount, charge.Currency, status == models.StatusSucceeded)
	s.logger.Info("payment created",
		"payment_id", charge.ID,
		"amount", charge.Amount,
		"currency", charge.Currency,
		"status", charge.Status,
		"customer_id", charge.CustomerID)

	return charge.Response(), nil
}

// GetCharge is a pure read-through.
func (s *PaymentService) GetCharge(id string) (*models.ChargeResponse, error) {
	charge, err := s.charges.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{ID: id}
		}
		return nil, fmt.Errorf("load charge: %w", err)
	}
	return charge.Response(), nil
}

// CaptureCharge marks funds as finally collected.
func (s *PaymentService) CaptureCharge(id string) (*models.ChargeResponse, error) {
	charge, err := s.transition(id, models.Capture, "capture")
	if err != nil {
		return nil, err
	}
	s.metrics.PaymentCaptured(charge.Amount, charge.Currency)
	s.logger.Info("payment captured",
		"payment_id", charge.ID, "amount", charge.Amount, "currency", charge.Currency)
	return charge.Response(), nil
}

// CancelCharge voids a charge before capture.
func (s *PaymentService) CancelCharge(id string) (*models.ChargeResponse, error) {
	charge, err := s.transition(id, models.Cancel, "cancel")
	if err != nil {
		return nil, err
	}
	s.metrics.PaymentCanceled(charge.Amount, charge.Currency)
	s.logger.Info("payment canceled",
		"payment_id", charge.ID, "amount", charge.Amount, "currency", charge.Currency)
	return charge.Response(), nil
}

// transition applies a state-machine step as an atomic read-modify-write
// on the stored charge. Rejections leave the charge untouched and are
// translated into the service error taxonomy.
func (s *PaymentService) transition(id string, step func(models.ChargeStatus) (models.ChargeStatus, error), op string) (*models.Charge, error) {
	charge, err := s.charges.UpdateStatus(id, func(c *models.Charge) error {
		next, err := step(c.Status)
		if err != nil {
			return err
		}
		c.Status = next
		return nil
	})
	if err == nil {
		return charge, nil
	}

	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{ID: id}
	}
	var terr *models.TransitionError
	if errors.As(err, &terr) {
		currency := ""
		if charge != nil {
			currency = charge.Currency
		}
		s.metrics.PaymentFailed(failureCode(terr.From), currency)
		return nil, &InvalidStateError{Reason: terr.Reason}
	}
	return nil, fmt.Errorf("%s charge: %w", op, err)
}

func failureCode(from models.ChargeStatus) string {
	switch from {
	case models.StatusCaptured:
		return "already_captured"
	case models.StatusCanceled:
		return "already_canceled"
	default:
		return "invalid_status"
	}
}
