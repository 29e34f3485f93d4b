package application

import (
	"context"

	invdomain "github.com/storelab/checkout/internal/inventory/domain"
	"github.com/storelab/checkout/internal/order/domain"
)

type OrderStore interface {
	// Create persists the order and an outbox event row atomically.
	Create(ctx context.Context, o domain.Order, eventType string, payload []byte) error
	Get(ctx context.Context, id string) (domain.Order, error)
	// ListByUser returns the user's orders, newest first.
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	// UpdateStatus is a compare-and-swap on the order's version. It returns
	// domain.ErrConcurrencyConflict when the stored version differs from
	// expectedVersion, and the updated order on success.
	UpdateStatus(ctx context.Context, id string, expectedVersion int64, status domain.Status, eventType string, payload []byte) (domain.Order, error)
	// AppendEvent writes an outbox event without mutating the aggregate.
	AppendEvent(ctx context.Context, aggregateID, eventType string, payload []byte) error
}

type InventoryLedger interface {
	Reserve(ctx context.Context, productID string, qty int) (invdomain.ReservationResult, error)
	Release(ctx context.Context, productID string, qty int) error
}
