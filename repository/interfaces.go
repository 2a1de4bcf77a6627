package repository

import (
	"errors"

	"payments-backend/models"
)

// ErrNotFound is returned when a requested record does not exist. Callers
// use it to tell a missing charge apart from a storage failure.
var ErrNotFound = errors.New("record not found")

// ErrDuplicateKey is returned when an insert collides with an existing
// unique key. For idempotency records this is the expected outcome of a
// lost race, not a failure.
var ErrDuplicateKey = errors.New("duplicate key")

// ChargeRepository is the durable store for charge records.
type ChargeRepository interface {
	Create(charge *models.Charge) error
	GetByID(id string) (*models.Charge, error)
	// UpdateStatus applies fn to the stored charge as a single atomic
	// read-modify-write on that id. If fn returns an error nothing is
	// persisted and the error is passed through; the charge as read is
	// still returned so callers can report its current state.
	UpdateStatus(id string, fn func(*models.Charge) error) (*models.Charge, error)
	Count() (int64, error)
}

// IdempotencyRepository persists first responses keyed by idempotency key.
// Create must be first-writer-wins: a second insert for the same key
// returns ErrDuplicateKey and leaves the stored record untouched.
type IdempotencyRepository interface {
	Get(key string) (*models.IdempotencyRecord, error)
	Create(rec *models.IdempotencyRecord) error
}
