package service

import (
	"errors"
	"fmt"

	"github.com/pushkindt/pushkind-orders/internal/repository"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("invalid input")
	ErrStorage      = errors.New("storage failure")

	ErrPriceNotConfigured = errors.New("no price configured for product and price level")
	ErrNoPriceLevel       = errors.New("customer has no approved price level")

	ErrEmptyItems        = errors.New("empty items")
	ErrInvalidQuantity   = errors.New("quantity must be > 0")
	ErrCurrencyMismatch  = errors.New("currency mismatch")
	ErrInvalidTransition = errors.New("order status transition not allowed")
	ErrCategoryCycle     = errors.New("category parent chain would form a cycle")
	ErrAssignmentDecided = errors.New("discount assignment already decided")
)

// storage translates repository failures into domain error kinds. Raw engine
// errors never cross the service boundary.
func storage(err error) error {
	if err == nil {
		return nil
	}
	if repository.IsUniqueViolation(err) {
		return ErrConflict
	}
	return fmt.Errorf("%w: %v", ErrStorage, err)
}

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
