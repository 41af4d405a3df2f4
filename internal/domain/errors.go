package domain

import (
	"errors"
	"fmt"
)

// ErrTenantNotFound is returned by the registry for unknown tenant ids.
var ErrTenantNotFound = errors.New("tenant not found")

type ValidationKind string

const (
	ValidationBadContentType   ValidationKind = "bad_content_type"
	ValidationMalformedPayload ValidationKind = "malformed_payload"
	ValidationMissingField     ValidationKind = "missing_field"
	ValidationInvalidAction    ValidationKind = "invalid_action"
	ValidationInvalidQuantity  ValidationKind = "invalid_quantity"
)

// ValidationError rejects a webhook payload before any order is attempted.
type ValidationError struct {
	Kind  ValidationKind
	Field string
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case ValidationBadContentType:
		return "request body must be application/json"
	case ValidationMalformedPayload:
		return "malformed or empty payload"
	case ValidationMissingField:
		return fmt.Sprintf("missing required field: %s", e.Field)
	case ValidationInvalidAction:
		return "invalid action"
	case ValidationInvalidQuantity:
		return "invalid quantity"
	}
	return "invalid payload"
}

// OrderExecutionError wraps an exchange failure during order dispatch.
// It is fatal to the request and never retried.
type OrderExecutionError struct {
	Err error
}

func (e *OrderExecutionError) Error() string {
	return fmt.Sprintf("order execution failed: %v", e.Err)
}

func (e *OrderExecutionError) Unwrap() error {
	return e.Err
}
