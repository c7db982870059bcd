package domain

import (
	"errors"
	"fmt"
)

// ErrNotFoundOrWrongState is returned when a state-gated write matched zero
// rows: either the id is unknown or a concurrent caller already moved the
// transaction out of the expected status. This is the optimistic concurrency
// signal; there is no lock-based path.
var ErrNotFoundOrWrongState = errors.New("transaction not found or not in the required state")

// ErrNotFound is returned by point reads when the row does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError rejects bad input before any side effect.
type ValidationError struct {
	Reason  string // machine-readable, e.g. "duration_out_of_range"
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed (%s): %s", e.Reason, e.Message)
}

func NewValidationError(reason, format string, args ...any) *ValidationError {
	return &ValidationError{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// Well-known validation reasons.
const (
	ReasonDurationOutOfRange = "duration_out_of_range"
	ReasonAmountTooSmall     = "amount_too_small"
	ReasonInvalidInput       = "invalid_input"
	ReasonListingUnavailable = "listing_unavailable"
	ReasonOwnListing         = "own_listing"
	ReasonNotOverdue         = "not_overdue"
)

// AuthorizationError rejects a caller who is neither borrower nor lender,
// or who lacks the role the action requires.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string { return e.Message }

func NewAuthorizationError(format string, args ...any) *AuthorizationError {
	return &AuthorizationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsAuthorization reports whether err is an AuthorizationError.
func IsAuthorization(err error) bool {
	var ae *AuthorizationError
	return errors.As(err, &ae)
}
