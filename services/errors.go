package services

import (
	"errors"
	"fmt"
)

var (
	ErrReservationNotFound  = errors.New("reservation not found")
	ErrTableNotFound        = errors.New("table not found")
	ErrCapacityExceeded     = errors.New("number of people exceeds table capacity")
	ErrTableUnavailable     = errors.New("table is already assigned to another reservation")
	ErrTableOccupied        = errors.New("table holds a live reservation and cannot be deleted")
	ErrDuplicateTableNumber = errors.New("table number already exists")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidationError reports whether err wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
