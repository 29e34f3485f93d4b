package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/storelab/checkout/internal/order/domain"
	"github.com/storelab/checkout/pkg/tracing"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) Migrate(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS orders (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			shipping_address TEXT NOT NULL,
			payment_method TEXT NOT NULL,
			total NUMERIC(12,2) NOT NULL,
			status TEXT NOT NULL,
			version BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS orders_user_created ON orders (user_id, created_at DESC);
		CREATE TABLE IF NOT EXISTS order_items (
			order_id TEXT NOT NULL REFERENCES orders(id),
			product_id TEXT NOT NULL,
			quantity INT NOT NULL,
			unit_price NUMERIC(12,2) NOT NULL,
			PRIMARY KEY (order_id, product_id)
		);
		CREATE TABLE IF NOT EXISTS outbox (
			id BIGSERIAL PRIMARY KEY,
			aggregate_type TEXT NOT NULL,
			aggregate_id TEXT NOT NULL,
			type TEXT NOT NULL,
			payload JSONB NOT NULL,
			traceparent TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'pending',
			relay_id TEXT,
			lease_until TIMESTAMPTZ,
			retry_count INT NOT NULL DEFAULT 0,
			last_error TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	return err
}

func (r *Repository) Create(ctx context.Context, o domain.Order, eventType string, payload []byte) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx, `INSERT INTO orders
			(id, user_id, shipping_address, payment_method, total, status, version, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		o.ID, o.UserID, o.ShippingAddress, o.PaymentMethod, o.Total.String(),
		o.Status, o.Version, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, item := range o.Items {
		batch.Queue(`INSERT INTO order_items (order_id, product_id, quantity, unit_price)
			VALUES ($1,$2,$3,$4)`,
			o.ID, item.ProductID, item.Quantity, item.UnitPrice.String())
	}
	if err = tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `INSERT INTO outbox (aggregate_type, aggregate_id, type, payload, traceparent)
		VALUES ('order',$1,$2,$3,$4)`,
		o.ID, eventType, payload, tracing.Traceparent(ctx))
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repository) Get(ctx context.Context, id string) (domain.Order, error) {
	o, err := r.scanOrder(ctx, r.pool.QueryRow(ctx, `SELECT id, user_id, shipping_address,
			payment_method, total::text, status, version, created_at, updated_at
		FROM orders WHERE id = $1`, id))
	if err != nil {
		return domain.Order{}, err
	}
	items, err := r.loadItems(ctx, []string{id})
	if err != nil {
		return domain.Order{}, err
	}
	o.Items = items[id]
	return o, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, user_id, shipping_address,
			payment_method, total::text, status, version, created_at, updated_at
		FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		orders []domain.Order
		ids    []string
	)
	for rows.Next() {
		o, err := r.scanOrder(ctx, rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return orders, nil
	}

	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}
	return orders, nil
}

// UpdateStatus commits the transition and its outbox event in one
// transaction, guarded by the stored version.
func (r *Repository) UpdateStatus(ctx context.Context, id string, expectedVersion int64, status domain.Status, eventType string, payload []byte) (domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Order{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	o, err := r.scanOrder(ctx, tx.QueryRow(ctx, `UPDATE orders
			SET status = $2, version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $3
		RETURNING id, user_id, shipping_address, payment_method, total::text, status, version, created_at, updated_at`,
		id, status, expectedVersion))
	if errors.Is(err, domain.ErrOrderNotFound) {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
			return domain.Order{}, err
		}
		if !exists {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, domain.ErrConcurrencyConflict
	}
	if err != nil {
		return domain.Order{}, err
	}

	_, err = tx.Exec(ctx, `INSERT INTO outbox (aggregate_type, aggregate_id, type, payload, traceparent)
		VALUES ('order',$1,$2,$3,$4)`,
		id, eventType, payload, tracing.Traceparent(ctx))
	if err != nil {
		return domain.Order{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Order{}, err
	}

	items, err := r.loadItems(ctx, []string{id})
	if err != nil {
		return domain.Order{}, err
	}
	o.Items = items[id]
	return o, nil
}

func (r *Repository) AppendEvent(ctx context.Context, aggregateID, eventType string, payload []byte) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO outbox (aggregate_type, aggregate_id, type, payload, traceparent)
		VALUES ('order',$1,$2,$3,$4)`,
		aggregateID, eventType, payload, tracing.Traceparent(ctx))
	return err
}

func (r *Repository) scanOrder(ctx context.Context, row pgx.Row) (domain.Order, error) {
	var (
		o     domain.Order
		total string
	)
	err := row.Scan(&o.ID, &o.UserID, &o.ShippingAddress, &o.PaymentMethod,
		&total, &o.Status, &o.Version, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	if err != nil {
		return domain.Order{}, err
	}
	o.Total, err = decimal.NewFromString(total)
	return o, err
}

func (r *Repository) loadItems(ctx context.Context, orderIDs []string) (map[string][]domain.OrderItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT order_id, product_id, quantity, unit_price::text
		FROM order_items WHERE order_id = ANY($1)`, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make(map[string][]domain.OrderItem)
	for rows.Next() {
		var (
			orderID string
			item    domain.OrderItem
			price   string
		)
		if err := rows.Scan(&orderID, &item.ProductID, &item.Quantity, &price); err != nil {
			return nil, err
		}
		if item.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, err
		}
		items[orderID] = append(items[orderID], item)
	}
	return items, rows.Err()
}
