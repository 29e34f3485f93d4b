package domain

import "github.com/shopspring/decimal"

type OrderCreated struct {
	OrderID string
	UserID  string
	Total   decimal.Decimal
	Items   []OrderItem
}

type OrderStatusChanged struct {
	OrderID string
	From    Status
	To      Status
}

// StockReleaseFailed records a reservation whose release did not go through
// when the order was cancelled, so the restoration can be replayed.
type StockReleaseFailed struct {
	OrderID   string
	ProductID string
	Quantity  int
}
