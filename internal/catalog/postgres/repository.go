package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/storelab/checkout/internal/catalog"
)

// Repository reads product rows maintained by the admin console. It never
// writes; stock updates go through the inventory repository.
type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) Product(ctx context.Context, id string) (catalog.Product, error) {
	var (
		p     catalog.Product
		price string
	)
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, price::text, stock FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &price, &p.Stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return catalog.Product{}, catalog.ErrProductNotFound
	}
	if err != nil {
		return catalog.Product{}, err
	}
	p.Price, err = decimal.NewFromString(price)
	if err != nil {
		return catalog.Product{}, err
	}
	return p, nil
}
