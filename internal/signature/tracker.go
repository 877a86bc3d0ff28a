// Package signature detects whether an order's delivery address changed since
// it was last geocoded, so unchanged orders never trigger redundant lookups.
package signature

import (
	"strings"
	"time"

	"github.com/fornelloapp/dispatch/internal/models"
	"github.com/google/uuid"
)

// Change classifies the outcome of observing an order snapshot.
type Change int

const (
	// Unchanged means the address signature matches the previously seen one.
	Unchanged Change = iota
	// New means the order id has never been observed before.
	New
	// Changed means the address signature differs from the stored one; any
	// cached location for the order is stale and must be dropped.
	Changed
)

// Fingerprint derives the address signature of an order: the trimmed address
// fields plus a freshness token (updated-at when present, created-at
// otherwise). Two snapshots with the same fingerprint need no re-geocode.
func Fingerprint(order models.Order) string {
	freshness := order.UpdatedAt
	if freshness.IsZero() {
		freshness = order.CreatedAt
	}

	return strings.Join([]string{
		strings.TrimSpace(order.Street),
		strings.TrimSpace(order.City),
		strings.TrimSpace(order.PostalCode),
		freshness.UTC().Format(time.RFC3339Nano),
	}, "|")
}

// Tracker stores the last observed address signature per order id. It is owned
// exclusively by the dashboard orchestrator and is not safe for concurrent use.
type Tracker struct {
	signatures map[uuid.UUID]string
}

// NewTracker returns an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{signatures: make(map[uuid.UUID]string)}
}

// Observe records the order's current signature and reports how it compares to
// the previously stored one. The caller is responsible for invalidating any
// cached location when Changed is returned.
func (t *Tracker) Observe(order models.Order) Change {
	next := Fingerprint(order)
	prev, seen := t.signatures[order.ID]
	t.signatures[order.ID] = next

	switch {
	case !seen:
		return New
	case prev != next:
		return Changed
	default:
		return Unchanged
	}
}

// Forget drops the stored signature for an order id, so the next observation
// treats it as new again.
func (t *Tracker) Forget(orderID uuid.UUID) {
	delete(t.signatures, orderID)
}

// Len returns the number of tracked order ids.
func (t *Tracker) Len() int {
	return len(t.signatures)
}
