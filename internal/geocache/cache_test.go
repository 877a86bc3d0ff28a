package geocache_test

import (
	"testing"

	"github.com/fornelloapp/dispatch/internal/geocache"
	"github.com/fornelloapp/dispatch/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetMany(t *testing.T) {
	t.Parallel()

	t.Run("stores new entries", func(t *testing.T) {
		t.Parallel()
		cache := geocache.New()
		orderID := uuid.New()

		applied := cache.SetMany(map[uuid.UUID]models.Coordinates{
			orderID: {Latitude: 45.46, Longitude: 9.19},
		})

		assert.Equal(t, 1, applied)
		coords, ok := cache.Get(orderID)
		require.True(t, ok)
		assert.InDelta(t, 45.46, coords.Latitude, 1e-9)
		assert.InDelta(t, 9.19, coords.Longitude, 1e-9)
	})

	t.Run("skips updates within tolerance", func(t *testing.T) {
		t.Parallel()
		cache := geocache.New()
		orderID := uuid.New()
		cache.SetMany(map[uuid.UUID]models.Coordinates{orderID: {Latitude: 45.46, Longitude: 9.19}})

		applied := cache.SetMany(map[uuid.UUID]models.Coordinates{
			orderID: {Latitude: 45.46 + 5e-7, Longitude: 9.19 - 5e-7},
		})

		assert.Zero(t, applied)
		coords, _ := cache.Get(orderID)
		assert.InDelta(t, 45.46, coords.Latitude, 1e-9)
	})

	t.Run("replaces entries beyond tolerance", func(t *testing.T) {
		t.Parallel()
		cache := geocache.New()
		orderID := uuid.New()
		cache.SetMany(map[uuid.UUID]models.Coordinates{orderID: {Latitude: 45.46, Longitude: 9.19}})

		applied := cache.SetMany(map[uuid.UUID]models.Coordinates{
			orderID: {Latitude: 45.47, Longitude: 9.19},
		})

		assert.Equal(t, 1, applied)
		coords, _ := cache.Get(orderID)
		assert.InDelta(t, 45.47, coords.Latitude, 1e-9)
	})
}

func TestDelete(t *testing.T) {
	t.Parallel()
	cache := geocache.New()
	orderID := uuid.New()
	cache.SetMany(map[uuid.UUID]models.Coordinates{orderID: {Latitude: 45.46, Longitude: 9.19}})

	cache.Delete(orderID)

	_, ok := cache.Get(orderID)
	assert.False(t, ok)
	assert.Zero(t, cache.Len())
}

func TestSnapshot(t *testing.T) {
	t.Parallel()
	cache := geocache.New()
	first, second := uuid.New(), uuid.New()
	cache.SetMany(map[uuid.UUID]models.Coordinates{
		first:  {Latitude: 45.46, Longitude: 9.19},
		second: {Latitude: 45.48, Longitude: 9.21},
	})

	snapshot := cache.Snapshot()
	require.Len(t, snapshot, 2)

	// Mutating the snapshot must not touch the cache.
	delete(snapshot, first)
	assert.Equal(t, 2, cache.Len())
}
