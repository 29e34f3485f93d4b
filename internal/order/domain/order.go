package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// transitions is the complete set of allowed status changes. Delivered and
// Cancelled have no outgoing edges.
var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s Status) Terminal() bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

func (s Status) CanTransitionTo(to Status) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

type OrderItem struct {
	ProductID string
	Quantity  int
	// UnitPrice is snapshotted from the catalog at order creation and never
	// changes afterwards, regardless of later catalog price updates.
	UnitPrice decimal.Decimal
}

type Order struct {
	ID              string
	UserID          string
	Items           []OrderItem
	ShippingAddress string
	PaymentMethod   string
	Total           decimal.Decimal
	Status          Status
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func NewOrder(id, userID string, items []OrderItem, shippingAddress, paymentMethod string) Order {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	now := time.Now().UTC()
	return Order{
		ID:              id,
		UserID:          userID,
		Items:           items,
		ShippingAddress: shippingAddress,
		PaymentMethod:   paymentMethod,
		Total:           total,
		Status:          StatusPending,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}
