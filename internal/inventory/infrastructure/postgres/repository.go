package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/storelab/checkout/internal/inventory/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) Migrate(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		price NUMERIC(12,2) NOT NULL,
		stock INT NOT NULL CHECK (stock >= 0)
	)`)
	return err
}

// Reserve decrements stock in a single conditional update; the check and
// the decrement are one statement.
func (r *Repository) Reserve(ctx context.Context, productID string, qty int) (domain.ReservationResult, error) {
	ct, err := r.pool.Exec(ctx,
		`UPDATE products SET stock = stock - $2 WHERE id = $1 AND stock >= $2`,
		productID, qty)
	if err != nil {
		return domain.ReservationResult{}, err
	}
	if ct.RowsAffected() == 1 {
		return domain.ReservationResult{OK: true}, nil
	}

	var available int
	err = r.pool.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1`, productID).Scan(&available)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ReservationResult{Available: 0}, nil
	}
	if err != nil {
		return domain.ReservationResult{}, err
	}
	return domain.ReservationResult{Available: available}, nil
}

func (r *Repository) Release(ctx context.Context, productID string, qty int) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE products SET stock = stock + $2 WHERE id = $1`,
		productID, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("release: unknown product %s", productID)
	}
	return nil
}

func (r *Repository) Peek(ctx context.Context, productID string) (int, error) {
	var stock int
	err := r.pool.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1`, productID).Scan(&stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("peek: unknown product %s", productID)
	}
	return stock, err
}
