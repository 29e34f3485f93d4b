package application

import (
	"context"
	"log/slog"

	"github.com/storelab/checkout/internal/inventory/domain"
	"github.com/storelab/checkout/pkg/metrics"
)

// Ledger owns per-product stock counters. Check-and-decrement is atomic in
// the repository; releases are not deduplicated here, the order's transition
// history guarantees at-most-once.
type Ledger struct {
	log  *slog.Logger
	repo StockRepository
	mx   *metrics.Checkout
}

func NewLedger(log *slog.Logger, repo StockRepository, mx *metrics.Checkout) *Ledger {
	return &Ledger{log: log, repo: repo, mx: mx}
}

func (l *Ledger) Reserve(ctx context.Context, productID string, qty int) (domain.ReservationResult, error) {
	res, err := l.repo.Reserve(ctx, productID, qty)
	if err != nil {
		return domain.ReservationResult{}, err
	}
	if !res.OK {
		l.mx.ReservationFailures.Inc()
		l.log.Info("reservation rejected",
			"product_id", productID, "requested", qty, "available", res.Available)
		return res, nil
	}
	l.log.Info("stock reserved", "product_id", productID, "qty", qty)
	return res, nil
}

func (l *Ledger) Release(ctx context.Context, productID string, qty int) error {
	if err := l.repo.Release(ctx, productID, qty); err != nil {
		return err
	}
	l.log.Info("stock released", "product_id", productID, "qty", qty)
	return nil
}

func (l *Ledger) Peek(ctx context.Context, productID string) (int, error) {
	return l.repo.Peek(ctx, productID)
}
