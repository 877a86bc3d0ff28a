// Package geocache holds the last-known coordinate per order id. It is the
// source of truth for map markers and zone lookups for the screen's session.
package geocache

import (
	"sync"

	"github.com/fornelloapp/dispatch/internal/models"
	"github.com/google/uuid"
)

// Tolerance is the coordinate change threshold in degrees. A new geocode
// result within this distance of the cached value is considered identical and
// does not rewrite the entry, so downstream views are not re-rendered for
// provider jitter.
const Tolerance = 1e-6

// Cache maps order ids to their last-known coordinates. Entries are replaced,
// never merged, on each successful geocode and removed when the address
// signature changes. There is no TTL; the cache lives for the session.
type Cache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]models.Coordinates
}

// New returns an empty Cache.
func New() *Cache {
	return &Cache{entries: make(map[uuid.UUID]models.Coordinates)}
}

// Get returns the cached coordinates for an order id, if present.
func (c *Cache) Get(orderID uuid.UUID) (models.Coordinates, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	coords, ok := c.entries[orderID]
	return coords, ok
}

// SetMany merges a batch of coordinate updates in a single state transition
// and returns the number of entries that actually changed. Updates within
// Tolerance of the cached value are dropped.
func (c *Cache) SetMany(updates map[uuid.UUID]models.Coordinates) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	applied := 0
	for orderID, coords := range updates {
		if existing, ok := c.entries[orderID]; ok && existing.CloseTo(coords, Tolerance) {
			continue
		}
		c.entries[orderID] = coords
		applied++
	}
	return applied
}

// Delete removes the cached entry for an order id, if any.
func (c *Cache) Delete(orderID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, orderID)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Snapshot returns a copy of all cached entries, for feeding map markers.
func (c *Cache) Snapshot() map[uuid.UUID]models.Coordinates {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[uuid.UUID]models.Coordinates, len(c.entries))
	for orderID, coords := range c.entries {
		out[orderID] = coords
	}
	return out
}
