package services

import (
	"io"
	"log/slog"
	"sync"
	"testing"

	"payments-backend/metrics"
	"payments-backend/models"
	"payments-backend/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() (*PaymentService, *repository.MemoryChargeRepository) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	charges := repository.NewMemoryChargeRepository()
	idempotency := NewIdempotencyService(repository.NewMemoryIdempotencyRepository(), metrics.NopRecorder{}, logger)
	gateway := NewSimulatedGateway(0)
	return NewPaymentService(charges, idempotency, gateway, metrics.NopRecorder{}, logger), charges
}

func chargeRequest(amount int64) *models.ChargeRequest {
	return &models.ChargeRequest{
		Amount:     amount,
		Currency:   "USD",
		CustomerID: "cus_123",
	}
}

func boolPtr(b bool) *bool { return &b }

func TestCreateChargeDefaultsToImmediateCapture(t *testing.T) {
	svc, _ := newTestService()

	resp, err := svc.CreateCharge("key-1", chargeRequest(2500))
	require.NoError(t, err)

	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, models.StatusSucceeded, resp.Status)
	assert.Equal(t, int64(2500), resp.Amount)
	assert.Equal(t, "USD", resp.Currency)
	assert.False(t, resp.IsIdempotent)
}

func TestCreateChargeDeferredCaptureStartsPending(t *testing.T) {
	svc, _ := newTestService()

	req := chargeRequest(1000)
	req.Capture = boolPtr(false)

	resp, err := svc.CreateCharge("key-1", req)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, resp.Status)
}

func TestCreateChargeDefaultsCurrency(t *testing.T) {
	svc, _ := newTestService()

	req := &models.ChargeRequest{Amount: 100}
	resp, err := svc.CreateCharge("key-1", req)
	require.NoError(t, err)
	assert.Equal(t, "USD", resp.Currency)
}

func TestCreateChargeValidation(t *testing.T) {
	svc, charges := newTestService()

	tests := []struct {
		name   string
		key    string
		amount int64
	}{
		{name: "missing idempotency key", key: "", amount: 100},
		{name: "blank idempotency key", key: "   ", amount: 100},
		{name: "zero amount", key: "key-1", amount: 0},
		{name: "negative amount", key: "key-2", amount: -1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateCharge(tc.key, chargeRequest(tc.amount))
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}

	// No state mutation on rejected requests.
	n, err := charges.Count()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCreateChargeReplaysFirstResponse(t *testing.T) {
	svc, charges := newTestService()

	first, err := svc.CreateCharge("key-1", chargeRequest(500))
	require.NoError(t, err)

	// A different payload under the same key still replays the original.
	second, err := svc.CreateCharge("key-1", chargeRequest(9999))
	require.NoError(t, err)

	assert.True(t, second.IsIdempotent)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Amount, second.Amount)
	assert.Equal(t, first.Status, second.Status)

	n, err := charges.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestCreateChargeConcurrentSameKey(t *testing.T) {
	svc, charges := newTestService()

	const workers = 50
	responses := make([]*models.ChargeResponse, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := svc.CreateCharge("hot-key", chargeRequest(750))
			assert.NoError(t, err)
			responses[i] = resp
		}(i)
	}
	wg.Wait()

	n, err := charges.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "exactly one charge must be persisted")

	for _, resp := range responses {
		require.NotNil(t, resp)
		assert.Equal(t, responses[0].ID, resp.ID)
		assert.Equal(t, responses[0].Amount, resp.Amount)
		assert.Equal(t, responses[0].Status, resp.Status)
	}
}

func TestGetCharge(t *testing.T) {
	svc, _ := newTestService()

	created, err := svc.CreateCharge("key-1", chargeRequest(100))
	require.NoError(t, err)

	got, err := svc.GetCharge(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = svc.GetCharge("0b828f8c-0000-0000-0000-000000000000")
	var nferr *NotFoundError
	assert.ErrorAs(t, err, &nferr)
}

func TestCaptureCharge(t *testing.T) {
	svc, _ := newTestService()

	created, err := svc.CreateCharge("key-1", chargeRequest(100))
	require.NoError(t, err)

	captured, err := svc.CaptureCharge(created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCaptured, captured.Status)

	// Second capture is rejected and the charge stays captured.
	_, err = svc.CaptureCharge(created.ID)
	var serr *InvalidStateError
	require.ErrorAs(t, err, &serr)
	assert.Contains(t, serr.Reason, "already been captured")

	got, err := svc.GetCharge(created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCaptured, got.Status)
}

func TestCancelCapturedChargeMentionsRefund(t *testing.T) {
	svc, _ := newTestService()

	created, err := svc.CreateCharge("key-1", chargeRequest(100))
	require.NoError(t, err)
	_, err = svc.CaptureCharge(created.ID)
	require.NoError(t, err)

	_, err = svc.CancelCharge(created.ID)
	var serr *InvalidStateError
	require.ErrorAs(t, err, &serr)
	assert.Contains(t, serr.Reason, "refund")

	got, err := svc.GetCharge(created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCaptured, got.Status)
}

func TestCancelCharge(t *testing.T) {
	svc, _ := newTestService()

	created, err := svc.CreateCharge("key-1", chargeRequest(100))
	require.NoError(t, err)

	canceled, err := svc.CancelCharge(created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCanceled, canceled.Status)

	_, err = svc.CancelCharge(created.ID)
	var serr *InvalidStateError
	require.ErrorAs(t, err, &serr)
	assert.Contains(t, serr.Reason, "already been canceled")
}

func TestTransitionsOnUnknownIDAreNotFound(t *testing.T) {
	svc, _ := newTestService()

	var nferr *NotFoundError
	_, err := svc.CaptureCharge("missing")
	assert.ErrorAs(t, err, &nferr)

	_, err = svc.CancelCharge("missing")
	assert.ErrorAs(t, err, &nferr)
}

func TestDeferredCaptureRoundTrip(t *testing.T) {
	svc, _ := newTestService()

	req := chargeRequest(300)
	req.Capture = boolPtr(false)
	created, err := svc.CreateCharge("key-1", req)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, created.Status)

	captured, err := svc.CaptureCharge(created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCaptured, captured.Status)

	_, err = svc.CancelCharge(created.ID)
	var serr *InvalidStateError
	assert.ErrorAs(t, err, &serr)
}

func TestCreateChargeKeepsCardLast4Only(t *testing.T) {
	svc, charges := newTestService()

	req := chargeRequest(100)
	req.PaymentMethod = &models.PaymentMethodDetails{
		CardNumber: "4242424242424242",
		CVV:        "123",
	}

	created, err := svc.CreateCharge("key-1", req)
	require.NoError(t, err)

	stored, err := charges.GetByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "4242", stored.CardLast4)
	assert.Equal(t, "card", stored.PaymentMethodType)
}
