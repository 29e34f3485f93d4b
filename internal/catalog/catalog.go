// Package catalog is the read-only view of product metadata owned by the
// surrounding storefront. Stock mutation never goes through it; all writes
// run through the inventory ledger.
package catalog

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var ErrProductNotFound = errors.New("product not found")

type Product struct {
	ID    string
	Name  string
	Price decimal.Decimal
	Stock int
}

type Lookup interface {
	Product(ctx context.Context, id string) (Product, error)
}
