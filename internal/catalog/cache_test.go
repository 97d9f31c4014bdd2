package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ghufronakbar/hasmart-pos/internal/catalog"
)

type countingLookup struct {
	calls int
	item  catalog.Item
	err   error
}

func (c *countingLookup) ItemByCode(ctx context.Context, code string) (catalog.Item, error) {
	c.calls++
	if c.err != nil {
		return catalog.Item{}, c.err
	}
	return c.item, nil
}

func TestCachedLookupHitsSourceOnce(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	source := &countingLookup{item: catalog.Item{
		ID:       42,
		Code:     "8991002100015",
		Name:     "Mineral Water 600ml",
		IsActive: true,
		Variants: []catalog.Variant{{ID: 7, Unit: "pcs", Amount: 1, IsBaseUnit: true, SellPrice: decimal.NewFromInt(4000)}},
	}}
	lookup := catalog.CachedLookup{Source: source, Cache: catalog.NewCache(rdb, time.Minute)}

	ctx := context.Background()
	first, err := lookup.ItemByCode(ctx, "8991002100015")
	require.NoError(t, err)
	second, err := lookup.ItemByCode(ctx, "8991002100015")
	require.NoError(t, err)

	require.Equal(t, 1, source.calls)
	require.Equal(t, first.ID, second.ID)
	require.True(t, first.Variants[0].SellPrice.Equal(second.Variants[0].SellPrice))
}

func TestCachedLookupDoesNotCacheErrors(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	source := &countingLookup{err: catalog.ErrNotFound}
	lookup := catalog.CachedLookup{Source: source, Cache: catalog.NewCache(rdb, time.Minute)}

	ctx := context.Background()
	_, err = lookup.ItemByCode(ctx, "unknown")
	require.ErrorIs(t, err, catalog.ErrNotFound)
	_, err = lookup.ItemByCode(ctx, "unknown")
	require.ErrorIs(t, err, catalog.ErrNotFound)
	require.Equal(t, 2, source.calls)
}

func TestCachedLookupWithoutRedisFallsThrough(t *testing.T) {
	source := &countingLookup{item: catalog.Item{ID: 1, IsActive: true}}
	lookup := catalog.CachedLookup{Source: source}

	_, err := lookup.ItemByCode(context.Background(), "any")
	require.NoError(t, err)
	_, err = lookup.ItemByCode(context.Background(), "any")
	require.NoError(t, err)
	require.Equal(t, 2, source.calls)
}
