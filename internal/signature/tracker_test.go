package signature_test

import (
	"testing"
	"time"

	"github.com/fornelloapp/dispatch/internal/models"
	"github.com/fornelloapp/dispatch/internal/signature"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deliveryOrder(street string) models.Order {
	return models.Order{
		ID:           uuid.New(),
		DeliveryType: models.DeliveryTypeDelivery,
		Street:       street,
		City:         "Milano",
		PostalCode:   "20121",
		CreatedAt:    time.Date(2025, 3, 10, 18, 30, 0, 0, time.UTC),
	}
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	t.Run("trims address fields", func(t *testing.T) {
		t.Parallel()
		order := deliveryOrder("Via Roma 1")
		padded := order
		padded.Street = "  Via Roma 1  "
		padded.City = " Milano "

		assert.Equal(t, signature.Fingerprint(order), signature.Fingerprint(padded))
	})

	t.Run("uses updated-at as freshness token when present", func(t *testing.T) {
		t.Parallel()
		order := deliveryOrder("Via Roma 1")
		touched := order
		touched.UpdatedAt = order.CreatedAt.Add(5 * time.Minute)

		assert.NotEqual(t, signature.Fingerprint(order), signature.Fingerprint(touched))
	})

	t.Run("differs when any address field changes", func(t *testing.T) {
		t.Parallel()
		order := deliveryOrder("Via Roma 1")
		moved := order
		moved.Street = "Via Torino 5"

		assert.NotEqual(t, signature.Fingerprint(order), signature.Fingerprint(moved))
	})
}

func TestTrackerObserve(t *testing.T) {
	t.Parallel()

	t.Run("first sight is new", func(t *testing.T) {
		t.Parallel()
		tracker := signature.NewTracker()
		order := deliveryOrder("Via Roma 1")

		assert.Equal(t, signature.New, tracker.Observe(order))
		assert.Equal(t, 1, tracker.Len())
	})

	t.Run("identical snapshot is unchanged", func(t *testing.T) {
		t.Parallel()
		tracker := signature.NewTracker()
		order := deliveryOrder("Via Roma 1")

		tracker.Observe(order)

		// Status changes alone must not look like an address change.
		next := order
		next.Status = models.StatusDelivering
		assert.Equal(t, signature.Unchanged, tracker.Observe(next))
	})

	t.Run("address change is detected", func(t *testing.T) {
		t.Parallel()
		tracker := signature.NewTracker()
		order := deliveryOrder("Via Roma 1")

		tracker.Observe(order)

		moved := order
		moved.Street = "Via Torino 5"
		assert.Equal(t, signature.Changed, tracker.Observe(moved))

		// The new signature is now the stored one.
		assert.Equal(t, signature.Unchanged, tracker.Observe(moved))
	})

	t.Run("forget resets the order to new", func(t *testing.T) {
		t.Parallel()
		tracker := signature.NewTracker()
		order := deliveryOrder("Via Roma 1")

		require.Equal(t, signature.New, tracker.Observe(order))
		tracker.Forget(order.ID)
		assert.Equal(t, signature.New, tracker.Observe(order))
	})
}
