package memory

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/storelab/checkout/internal/catalog"
)

type Catalog struct {
	mu       sync.RWMutex
	products map[string]catalog.Product
}

func NewCatalog() *Catalog {
	return &Catalog{products: make(map[string]catalog.Product)}
}

func (c *Catalog) Put(p catalog.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[p.ID] = p
}

func (c *Catalog) SetPrice(id string, price decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.products[id]
	if !ok {
		return
	}
	p.Price = price
	c.products[id] = p
}

func (c *Catalog) Product(ctx context.Context, id string) (catalog.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.products[id]
	if !ok {
		return catalog.Product{}, catalog.ErrProductNotFound
	}
	return p, nil
}
