package integration

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogpg "github.com/storelab/checkout/internal/catalog/postgres"
	invapp "github.com/storelab/checkout/internal/inventory/application"
	invpg "github.com/storelab/checkout/internal/inventory/infrastructure/postgres"
	"github.com/storelab/checkout/internal/order/application"
	"github.com/storelab/checkout/internal/order/domain"
	orderpg "github.com/storelab/checkout/internal/order/infrastructure/postgres"
	"github.com/storelab/checkout/pkg/metrics"
)

// Requires docker; run with INTEGRATION=1 go test ./test/integration/...
func TestOrderFlowAgainstPostgres(t *testing.T) {
	if os.Getenv("INTEGRATION") == "" {
		t.Skip("set INTEGRATION=1 to run container-backed tests")
	}

	ctx := context.Background()
	env, err := Setup(ctx)
	require.NoError(t, err)
	defer env.Teardown(ctx)

	pool, err := pgxpool.New(ctx, env.PGURL)
	require.NoError(t, err)
	defer pool.Close()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	mx := metrics.NewCheckout(prometheus.NewRegistry())

	orderRepo := orderpg.NewRepository(log, pool)
	invRepo := invpg.NewRepository(log, pool)
	require.NoError(t, orderRepo.Migrate(ctx))
	require.NoError(t, invRepo.Migrate(ctx))

	_, err = pool.Exec(ctx,
		`INSERT INTO products (id, name, price, stock) VALUES ('p1', 'Widget', 19.99, 5)`)
	require.NoError(t, err)

	ledger := invapp.NewLedger(log, invRepo, mx)
	svc := application.NewService(log, orderRepo, ledger, catalogpg.NewRepository(log, pool), mx)

	o, err := svc.CreateOrder(ctx, "u1",
		[]application.CartItem{{ProductID: "p1", Quantity: 3}}, "12 Main St", "card")
	require.NoError(t, err)
	assert.True(t, o.Total.Equal(decimal.RequireFromString("59.97")))

	stock, err := ledger.Peek(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, stock)

	// Stale-version write loses.
	_, err = svc.TransitionStatus(ctx, o.ID, domain.StatusProcessing)
	require.NoError(t, err)
	_, err = orderRepo.UpdateStatus(ctx, o.ID, o.Version, domain.StatusCancelled, "OrderStatusChanged", []byte(`{}`))
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)

	// Cancel from processing restores the reservation.
	cancelled, err := svc.TransitionStatus(ctx, o.ID, domain.StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)

	stock, err = ledger.Peek(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 5, stock)

	// Creation and both committed transitions left outbox rows behind.
	var pending int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT count(*) FROM outbox WHERE aggregate_id = $1`, o.ID).Scan(&pending))
	assert.Equal(t, 3, pending)
}
