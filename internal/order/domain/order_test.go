package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionTable(t *testing.T) {
	allowed := []struct {
		from, to Status
	}{
		{StatusPending, StatusProcessing},
		{StatusPending, StatusCancelled},
		{StatusProcessing, StatusShipped},
		{StatusProcessing, StatusCancelled},
		{StatusShipped, StatusDelivered},
	}
	for _, tc := range allowed {
		assert.True(t, tc.from.CanTransitionTo(tc.to), "%s -> %s should be allowed", tc.from, tc.to)
	}

	rejected := []struct {
		from, to Status
	}{
		{StatusPending, StatusShipped},
		{StatusPending, StatusDelivered},
		{StatusProcessing, StatusDelivered},
		{StatusShipped, StatusCancelled},
		{StatusShipped, StatusProcessing},
		{StatusDelivered, StatusProcessing},
		{StatusDelivered, StatusCancelled},
		{StatusCancelled, StatusPending},
		{StatusCancelled, StatusCancelled},
	}
	for _, tc := range rejected {
		assert.False(t, tc.from.CanTransitionTo(tc.to), "%s -> %s should be rejected", tc.from, tc.to)
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, StatusDelivered.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusProcessing.Terminal())
	assert.False(t, StatusShipped.Terminal())
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusPending.Valid())
	assert.False(t, Status("refunded").Valid())
	assert.False(t, Status("").Valid())
}

func TestNewOrderTotal(t *testing.T) {
	items := []OrderItem{
		{ProductID: "p1", Quantity: 3, UnitPrice: decimal.RequireFromString("19.99")},
		{ProductID: "p2", Quantity: 1, UnitPrice: decimal.RequireFromString("5.50")},
	}
	o := NewOrder("o1", "u1", items, "12 Main St", "card")

	require.Equal(t, StatusPending, o.Status)
	require.EqualValues(t, 1, o.Version)
	assert.True(t, o.Total.Equal(decimal.RequireFromString("65.47")),
		"expected 65.47, got %s", o.Total)
	assert.Equal(t, o.CreatedAt, o.UpdatedAt)
}
