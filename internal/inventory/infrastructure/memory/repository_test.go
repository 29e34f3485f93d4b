package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReserveAndRelease(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()
	repo.Seed("p1", 5)

	res, err := repo.Reserve(ctx, "p1", 3)
	require.NoError(t, err)
	require.True(t, res.OK)

	stock, err := repo.Peek(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, stock)

	res, err = repo.Reserve(ctx, "p1", 3)
	require.NoError(t, err)
	require.False(t, res.OK)
	assert.Equal(t, 2, res.Available)

	require.NoError(t, repo.Release(ctx, "p1", 3))
	stock, _ = repo.Peek(ctx, "p1")
	assert.Equal(t, 5, stock)
}

func TestReserveUnknownProduct(t *testing.T) {
	repo := NewRepository()
	res, err := repo.Reserve(context.Background(), "missing", 1)
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, 0, res.Available)

	assert.Error(t, repo.Release(context.Background(), "missing", 1))
}

// Stock must never go negative: with 1 unit and 50 concurrent single-unit
// reservations, exactly one may succeed.
func TestConcurrentReserveSingleUnit(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()
	repo.Seed("p1", 1)

	const attempts = 50
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := repo.Reserve(ctx, "p1", 1)
			assert.NoError(t, err)
			if res.OK {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	stock, _ := repo.Peek(ctx, "p1")
	assert.Equal(t, 0, stock)
}
