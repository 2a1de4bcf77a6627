package services

import "fmt"

// ValidationError rejects a request before any persistence or cache
// access. It maps to a 400 response.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NotFoundError reports an unknown charge id. It maps to a 404 response,
// distinct from invalid-state rejections.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("payment with ID '%s' not found", e.ID)
}

// InvalidStateError rejects a capture/cancel whose current status forbids
// it. Reason is the human-readable precondition that failed; no state
// change happens. Maps to a 400 response.
type InvalidStateError struct {
	Reason string
}

func (e *InvalidStateError) Error() string { return e.Reason }
