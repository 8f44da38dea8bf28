package domain

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyTerminal    = errors.New("order is already delivered and cannot change status")
	ErrUnauthorized       = errors.New("role is not allowed to apply this transition")
	ErrTransitionInFlight = errors.New("a status change for this order is already in progress")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrOrderNotFound      = errors.New("order not found")
	ErrNotInCart          = errors.New("request is no longer in the cart")
	ErrInvalidRequest     = errors.New("invalid request")
)

// RepositoryError is a failed call to the shop API.
// Code is the HTTP status, or 0 when no response was received.
type RepositoryError struct {
	Code    int
	Message string
	Err     error
}

func (e *RepositoryError) Error() string {
	if e.Code == 0 {
		return fmt.Sprintf("order repository unavailable: %s", e.Message)
	}
	return fmt.Sprintf("order repository returned %d: %s", e.Code, e.Message)
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}

// TransitionError is returned by every failed transition attempt.
type TransitionError struct {
	OrderID int
	Target  Status
	Err     error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("order %d: change to %q refused: %v", e.OrderID, e.Target, e.Err)
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}

// Reason is a short machine name for the refusal.
func (e *TransitionError) Reason() string {
	var repoErr *RepositoryError
	switch {
	case errors.Is(e.Err, ErrAlreadyTerminal):
		return "already_terminal"
	case errors.Is(e.Err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(e.Err, ErrTransitionInFlight):
		return "in_flight"
	case errors.As(e.Err, &repoErr):
		return "repository_error"
	default:
		return "unknown"
	}
}
