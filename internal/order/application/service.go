package application

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"

	"github.com/storelab/checkout/internal/catalog"
	"github.com/storelab/checkout/internal/order/domain"
	"github.com/storelab/checkout/pkg/metrics"
)

type Service struct {
	log     *slog.Logger
	store   OrderStore
	ledger  InventoryLedger
	catalog catalog.Lookup
	mx      *metrics.Checkout
}

func NewService(log *slog.Logger, store OrderStore, ledger InventoryLedger, lookup catalog.Lookup, mx *metrics.Checkout) *Service {
	return &Service{log: log, store: store, ledger: ledger, catalog: lookup, mx: mx}
}

type CartItem struct {
	ProductID string
	Quantity  int
}

// CreateOrder snapshots prices, reserves stock item by item and persists the
// order as pending. On any failure every reservation already made for this
// call is released, in reverse order.
func (s *Service) CreateOrder(ctx context.Context, userID string, items []CartItem, shippingAddress, paymentMethod string) (domain.Order, error) {
	if len(items) == 0 {
		return domain.Order{}, domain.ErrEmptyCart
	}
	for _, it := range items {
		if it.Quantity <= 0 {
			return domain.Order{}, domain.InvalidItemError{ProductID: it.ProductID, Quantity: it.Quantity}
		}
	}

	reserved := make([]domain.OrderItem, 0, len(items))
	rollback := func() {
		for i := len(reserved) - 1; i >= 0; i-- {
			it := reserved[i]
			if err := s.ledger.Release(ctx, it.ProductID, it.Quantity); err != nil {
				s.log.Error("compensating release failed",
					"product_id", it.ProductID, "qty", it.Quantity, "err", err)
			}
		}
	}

	for _, it := range items {
		p, err := s.catalog.Product(ctx, it.ProductID)
		if err != nil {
			rollback()
			return domain.Order{}, err
		}
		res, err := s.ledger.Reserve(ctx, it.ProductID, it.Quantity)
		if err != nil {
			rollback()
			return domain.Order{}, err
		}
		if !res.OK {
			rollback()
			return domain.Order{}, domain.InsufficientStockError{
				ProductID: it.ProductID,
				Requested: it.Quantity,
				Available: res.Available,
			}
		}
		reserved = append(reserved, domain.OrderItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: p.Price,
		})
	}

	o := domain.NewOrder(uuid.NewString(), userID, reserved, shippingAddress, paymentMethod)
	payload, err := json.Marshal(domain.OrderCreated{
		OrderID: o.ID, UserID: o.UserID, Total: o.Total, Items: o.Items,
	})
	if err != nil {
		rollback()
		return domain.Order{}, err
	}
	if err := s.store.Create(ctx, o, "OrderCreated", payload); err != nil {
		rollback()
		return domain.Order{}, err
	}

	s.mx.OrdersCreated.Inc()
	s.log.Info("order created", "order_id", o.ID, "user_id", userID, "total", o.Total.String())
	return o, nil
}

// TransitionStatus validates the change against the transition table and
// commits it under the order's version. Only the CAS winner releases stock
// on cancellation, so a reservation is restored at most once; a release
// that fails is recorded as a StockReleaseFailed outbox event for replay.
func (s *Service) TransitionStatus(ctx context.Context, orderID string, next domain.Status) (domain.Order, error) {
	o, err := s.store.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if !o.Status.CanTransitionTo(next) {
		return domain.Order{}, domain.InvalidTransitionError{From: o.Status, To: next}
	}

	payload, err := json.Marshal(domain.OrderStatusChanged{OrderID: o.ID, From: o.Status, To: next})
	if err != nil {
		return domain.Order{}, err
	}
	updated, err := s.store.UpdateStatus(ctx, orderID, o.Version, next, "OrderStatusChanged", payload)
	if err != nil {
		return domain.Order{}, err
	}

	if next == domain.StatusCancelled {
		var releaseErr error
		for _, it := range updated.Items {
			err := s.ledger.Release(ctx, it.ProductID, it.Quantity)
			if err == nil {
				continue
			}
			releaseErr = err
			s.log.Error("release on cancel failed",
				"order_id", o.ID, "product_id", it.ProductID, "err", err)
			failed, mErr := json.Marshal(domain.StockReleaseFailed{
				OrderID: o.ID, ProductID: it.ProductID, Quantity: it.Quantity,
			})
			if mErr != nil {
				continue
			}
			if aErr := s.store.AppendEvent(ctx, o.ID, "StockReleaseFailed", failed); aErr != nil {
				s.log.Error("recording failed release",
					"order_id", o.ID, "product_id", it.ProductID, "err", aErr)
			}
		}
		if releaseErr != nil {
			return domain.Order{}, releaseErr
		}
		s.mx.OrdersCancelled.Inc()
	}

	s.log.Info("order status changed", "order_id", o.ID, "from", o.Status, "to", next)
	return updated, nil
}

func (s *Service) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	return s.store.Get(ctx, orderID)
}

func (s *Service) ListOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.store.ListByUser(ctx, userID)
}
