package domain

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart           = errors.New("order must contain at least one item")
	ErrOrderNotFound       = errors.New("order not found")
	ErrConcurrencyConflict = errors.New("order was modified concurrently")
)

type InvalidItemError struct {
	ProductID string
	Quantity  int
}

func (e InvalidItemError) Error() string {
	return fmt.Sprintf("invalid quantity %d for product %s", e.Quantity, e.ProductID)
}

type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %s to %s", e.From, e.To)
}
