package domain

import "fmt"

// Error types for consistent error handling across the service.

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrExternalService indicates a failure in an external service call.
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

// ErrCircuitOpen indicates the circuit breaker is open.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}

// ErrValidation indicates a validation error (bad input).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrInsufficientData indicates there is not enough history to fit a trend.
type ErrInsufficientData struct {
	DistinctDays int
	Required     int
}

func (e *ErrInsufficientData) Error() string {
	return fmt.Sprintf("insufficient data: %d distinct days, need at least %d", e.DistinctDays, e.Required)
}

// ErrInvalidBudget indicates a budget whose cap cannot be used as a divisor.
type ErrInvalidBudget struct {
	CategoryID string
	Amount     string
}

func (e *ErrInvalidBudget) Error() string {
	return fmt.Sprintf("invalid budget for category %s: amount %s must be positive", e.CategoryID, e.Amount)
}

// ErrUnauthorized indicates invalid credentials or token.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}
