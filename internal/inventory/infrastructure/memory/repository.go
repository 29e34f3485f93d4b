// Package memory holds the in-process stock repository used by tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/storelab/checkout/internal/inventory/domain"
)

type Repository struct {
	mu    sync.Mutex
	stock map[string]int
}

func NewRepository() *Repository {
	return &Repository{stock: make(map[string]int)}
}

func (r *Repository) Seed(productID string, qty int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stock[productID] = qty
}

func (r *Repository) Reserve(ctx context.Context, productID string, qty int) (domain.ReservationResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	have, ok := r.stock[productID]
	if !ok || have < qty {
		return domain.ReservationResult{Available: have}, nil
	}
	r.stock[productID] = have - qty
	return domain.ReservationResult{OK: true}, nil
}

func (r *Repository) Release(ctx context.Context, productID string, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stock[productID]; !ok {
		return fmt.Errorf("release: unknown product %s", productID)
	}
	r.stock[productID] += qty
	return nil
}

func (r *Repository) Peek(ctx context.Context, productID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stock[productID], nil
}
