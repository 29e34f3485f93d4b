package application

import (
	"context"

	"github.com/storelab/checkout/internal/inventory/domain"
)

type StockRepository interface {
	Reserve(ctx context.Context, productID string, qty int) (domain.ReservationResult, error)
	Release(ctx context.Context, productID string, qty int) error
	Peek(ctx context.Context, productID string) (int, error)
}
