package models

import "time"

// ChargeStatus is the lifecycle state of a charge.
type ChargeStatus string

const (
	StatusPending   ChargeStatus = "pending"
	StatusSucceeded ChargeStatus = "succeeded"
	StatusCaptured  ChargeStatus = "captured"
	StatusCanceled  ChargeStatus = "canceled"
	// StatusRefunded is reserved; no transition produces it yet.
	StatusRefunded ChargeStatus = "refunded"
)

// Terminal reports whether no further transitions are allowed.
func (s ChargeStatus) Terminal() bool {
	return s == StatusCaptured || s == StatusCanceled || s == StatusRefunded
}

// Charge is the durable record of one payment attempt.
// Only Status ever mutates after creation, and only through the
// transitions in transition.go.
type Charge struct {
	ID                string       `json:"id" gorm:"primaryKey;size:36"`
	Status            ChargeStatus `json:"status" gorm:"size:16;not null;index"`
	Amount            int64        `json:"amount" gorm:"not null"` // minor units (cents)
	Currency          string       `json:"currency" gorm:"size:3;not null"`
	Description       string       `json:"description,omitempty"`
	CustomerID        string       `json:"customer_id,omitempty" gorm:"size:128;index"`
	PaymentMethodType string       `json:"payment_method_type,omitempty" gorm:"size:32"`
	CardLast4         string       `json:"card_last4,omitempty" gorm:"size:4"`
	CreatedAt         time.Time    `json:"created_at"`
}

// ChargeResponse is the externally visible projection of a Charge.
// IsIdempotent marks a response served from the idempotency cache; it is
// per-response and never persisted on the charge.
type ChargeResponse struct {
	ID           string       `json:"id"`
	Status       ChargeStatus `json:"status"`
	Amount       int64        `json:"amount"`
	Currency     string       `json:"currency"`
	Description  string       `json:"description,omitempty"`
	CustomerID   string       `json:"customer_id,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	IsIdempotent bool         `json:"is_idempotent"`
}

// Response projects the charge into its API shape.
func (ch *Charge) Response() *ChargeResponse {
	return &ChargeResponse{
		ID:          ch.ID,
		Status:      ch.Status,
		Amount:      ch.Amount,
		Currency:    ch.Currency,
		Description: ch.Description,
		CustomerID:  ch.CustomerID,
		CreatedAt:   ch.CreatedAt,
	}
}

// Replay returns a copy of the response flagged as an idempotent replay,
// leaving the cached original untouched.
func (r *ChargeResponse) Replay() *ChargeResponse {
	cp := *r
	cp.IsIdempotent = true
	return &cp
}
