package checkout

import (
	"errors"
	"fmt"
)

var (
	ErrValidation          = errors.New("validation error")
	ErrInvalidDateRange    = errors.New("check-out must be after check-in")
	ErrInvalidPrice        = errors.New("property has no valid nightly price")
	ErrTooManyGuests       = errors.New("guest count exceeds property capacity")
	ErrPropertyNotFound    = errors.New("property not found")
	ErrPropertyUnavailable = errors.New("property is not available for the selected dates")
	ErrForbidden           = errors.New("payment intent belongs to another user")
	ErrAvailabilityLost    = errors.New("dates were taken after payment succeeded")
	ErrTransactionNotFound = errors.New("no transaction for payment intent")
)

// PaymentNotSucceededError carries the provider's status string so the
// caller can see why the confirmation was rejected.
type PaymentNotSucceededError struct {
	Status string
}

func (e *PaymentNotSucceededError) Error() string {
	return fmt.Sprintf("payment has not succeeded (status: %s)", e.Status)
}
