package models

import "fmt"

// TransitionError is a rejected status transition. Reason is safe to show
// to API callers.
type TransitionError struct {
	From   ChargeStatus
	Reason string
}

func (e *TransitionError) Error() string { return e.Reason }

// InitialStatus is the state machine's creation transition: deferred
// capture starts the charge as pending, immediate capture as succeeded.
func InitialStatus(capture bool) ChargeStatus {
	if capture {
		return StatusSucceeded
	}
	return StatusPending
}

// Capture moves a pending or succeeded charge to captured.
func Capture(from ChargeStatus) (ChargeStatus, error) {
	switch from {
	case StatusPending, StatusSucceeded:
		return StatusCaptured, nil
	case StatusCaptured:
		return from, &TransitionError{From: from, Reason: "payment has already been captured"}
	case StatusCanceled:
		return from, &TransitionError{From: from, Reason: "cannot capture a canceled payment"}
	default:
		return from, &TransitionError{From: from, Reason: fmt.Sprintf("cannot capture payment with status '%s'", from)}
	}
}

// Cancel voids a pending or succeeded charge. Captured charges must be
// refunded instead, and refund is not implemented here.
func Cancel(from ChargeStatus) (ChargeStatus, error) {
	switch from {
	case StatusPending, StatusSucceeded:
		return StatusCanceled, nil
	case StatusCanceled:
		return from, &TransitionError{From: from, Reason: "payment has already been canceled"}
	case StatusCaptured:
		return from, &TransitionError{From: from, Reason: "cannot cancel a captured payment, please use refund instead"}
	case StatusRefunded:
		return from, &TransitionError{From: from, Reason: "cannot cancel a refunded payment"}
	default:
		return from, &TransitionError{From: from, Reason: fmt.Sprintf("cannot cancel payment with status '%s'", from)}
	}
}
