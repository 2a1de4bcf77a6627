package models

// ChargeRequest is the charge-creation payload. Amount is in minor units
// (cents); Capture defaults to true (immediate capture).
type ChargeRequest struct {
	Amount        int64                 `json:"amount" validate:"required,gt=0"`
	Currency      string                `json:"currency" validate:"omitempty,len=3,alpha"`
	Description   string                `json:"description" validate:"omitempty,max=255"`
	CustomerID    string                `json:"customer_id" validate:"omitempty,max=128"`
	PaymentMethod *PaymentMethodDetails `json:"payment_method" validate:"omitempty"`
	Capture       *bool                 `json:"capture"`
}

// PaymentMethodDetails carries (simulated) card details. The card number
// is reduced to its last four digits before anything is persisted or
// logged.
type PaymentMethodDetails struct {
	Type           string `json:"type" validate:"omitempty,max=32"`
	CardNumber     string `json:"card_number" validate:"omitempty,numeric,min=12,max=19"`
	CardholderName string `json:"cardholder_name" validate:"omitempty,max=128"`
	ExpiryMonth    int    `json:"expiry_month" validate:"omitempty,min=1,max=12"`
	ExpiryYear     int    `json:"expiry_year" validate:"omitempty,min=2000,max=2100"`
	CVV            string `json:"cvv" validate:"omitempty,numeric,min=3,max=4"`
}

// WantsCapture resolves the optional capture flag (default true).
func (r *ChargeRequest) WantsCapture() bool {
	return r.Capture == nil || *r.Capture
}

// CardLast4 returns the last four digits of the card number, or "" when
// no usable number was supplied.
func (r *ChargeRequest) CardLast4() string {
	if r.PaymentMethod == nil || len(r.PaymentMethod.CardNumber) < 4 {
		return ""
	}
	n := r.PaymentMethod.CardNumber
	return n[len(n)-4:]
}
