package repository_test

import (
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/fornelloapp/dispatch/internal/models"
	"github.com/fornelloapp/dispatch/internal/repository"
	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	listOrdersQuery = `
			SELECT
				id, order_number, customer_name, delivery_type,
				street, city, postal_code,
				latitude, longitude, assigned_driver_id, status,
				created_at, updated_at
			FROM orders
			WHERE created_at >= $1 AND created_at < $2
			ORDER BY created_at DESC;
		`
	listDriversQuery = `
			SELECT id, first_name, last_name, phone
			FROM staff
			WHERE role = $1 AND is_active = true
			ORDER BY first_name, last_name;
		`
	listZonesQuery = `
			SELECT id, name, color, kind, polygon, center_lat, center_lng, radius_km
			FROM delivery_zones
			ORDER BY priority ASC;
		`
	updateAssignedQuery = `
			UPDATE orders
			SET assigned_driver_id = $1
			WHERE id = $2;
		`
)

var orderColumns = []string{
	"id", "order_number", "customer_name", "delivery_type",
	"street", "city", "postal_code",
	"latitude", "longitude", "assigned_driver_id", "status",
	"created_at", "updated_at",
}

func newRepository(t *testing.T) (*repository.Repository, pgxmock.PgxPoolIface) {
	t.Helper()
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockDB.Close)
	return repository.NewRepository(mockDB, slog.Default()), mockDB
}

func TestListOrdersByDate(t *testing.T) {
	t.Parallel()

	date := time.Date(2025, 3, 10, 18, 30, 0, 0, time.UTC)
	dayStart := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	t.Run("successful listing with nullable columns", func(t *testing.T) {
		t.Parallel()
		repo, mockDB := newRepository(t)

		withCoords := uuid.New()
		bare := uuid.New()
		driverID := uuid.New()
		lat, lng := 45.4640, 9.1900
		created := date.Add(-2 * time.Hour)
		updated := date.Add(-1 * time.Hour)

		rows := pgxmock.NewRows(orderColumns).
			AddRow(
				withCoords, "1042", "Giulia Ferri", models.DeliveryTypeDelivery,
				"Via Roma 1", "Milano", "20121",
				&lat, &lng, &driverID, models.StatusDelivering,
				created, &updated,
			).
			AddRow(
				bare, "1043", "Marco Riva", models.DeliveryTypePickup,
				"", "", "",
				(*float64)(nil), (*float64)(nil), (*uuid.UUID)(nil), models.StatusPending,
				created, (*time.Time)(nil),
			)

		mockDB.ExpectQuery(regexp.QuoteMeta(listOrdersQuery)).
			WithArgs(dayStart, dayEnd).
			WillReturnRows(rows)

		orders, err := repo.ListOrdersByDate(t.Context(), date)

		require.NoError(t, err)
		require.Len(t, orders, 2)

		first := orders[0]
		assert.Equal(t, withCoords, first.ID)
		require.NotNil(t, first.Latitude)
		assert.InDelta(t, 45.4640, *first.Latitude, 1e-9)
		require.NotNil(t, first.AssignedDriverID)
		assert.Equal(t, driverID, *first.AssignedDriverID)
		assert.Equal(t, updated, first.UpdatedAt)

		second := orders[1]
		assert.Equal(t, bare, second.ID)
		assert.Nil(t, second.Latitude)
		assert.Nil(t, second.AssignedDriverID)
		assert.True(t, second.UpdatedAt.IsZero())

		require.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("query error", func(t *testing.T) {
		t.Parallel()
		repo, mockDB := newRepository(t)

		mockDB.ExpectQuery(regexp.QuoteMeta(listOrdersQuery)).
			WithArgs(dayStart, dayEnd).
			WillReturnError(assert.AnError)

		_, err := repo.ListOrdersByDate(t.Context(), date)

		require.ErrorIs(t, err, assert.AnError)
		require.NoError(t, mockDB.ExpectationsWereMet())
	})
}

func TestListActiveDrivers(t *testing.T) {
	t.Parallel()

	t.Run("successful listing", func(t *testing.T) {
		t.Parallel()
		repo, mockDB := newRepository(t)

		driverID := uuid.New()
		rows := pgxmock.NewRows([]string{"id", "first_name", "last_name", "phone"}).
			AddRow(driverID, "Luca", "Bianchi", "+39 333 1234567")

		mockDB.ExpectQuery(regexp.QuoteMeta(listDriversQuery)).
			WithArgs(models.RoleDelivery).
			WillReturnRows(rows)

		drivers, err := repo.ListActiveDrivers(t.Context(), models.RoleDelivery)

		require.NoError(t, err)
		require.Len(t, drivers, 1)
		assert.Equal(t, driverID, drivers[0].ID)
		assert.Equal(t, "Luca Bianchi", drivers[0].FullName())
		assert.True(t, drivers[0].Active)
		require.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("query error", func(t *testing.T) {
		t.Parallel()
		repo, mockDB := newRepository(t)

		mockDB.ExpectQuery(regexp.QuoteMeta(listDriversQuery)).
			WithArgs(models.RoleDelivery).
			WillReturnError(assert.AnError)

		_, err := repo.ListActiveDrivers(t.Context(), models.RoleDelivery)

		require.ErrorIs(t, err, assert.AnError)
		require.NoError(t, mockDB.ExpectationsWereMet())
	})
}

func TestListZones(t *testing.T) {
	t.Parallel()

	zoneColumns := []string{"id", "name", "color", "kind", "polygon", "center_lat", "center_lng", "radius_km"}

	t.Run("polygon and radial zones", func(t *testing.T) {
		t.Parallel()
		repo, mockDB := newRepository(t)

		polygonID := uuid.New()
		radialID := uuid.New()
		centerLat, centerLng, radius := 45.4642, 9.19, 3.0
		polygonJSON := []byte(`[[45.45, 9.15], [45.45, 9.23], [45.49, 9.23], [45.49, 9.15]]`)

		rows := pgxmock.NewRows(zoneColumns).
			AddRow(
				polygonID, "Centro", "#E53935", models.ZoneKindPolygon,
				polygonJSON, (*float64)(nil), (*float64)(nil), (*float64)(nil),
			).
			AddRow(
				radialID, "Raggio 3km", "#1E88E5", models.ZoneKindRadial,
				[]byte(nil), &centerLat, &centerLng, &radius,
			)

		mockDB.ExpectQuery(regexp.QuoteMeta(listZonesQuery)).WillReturnRows(rows)

		zoneList, err := repo.ListZones(t.Context())

		require.NoError(t, err)
		require.Len(t, zoneList, 2)

		polygon := zoneList[0]
		assert.Equal(t, "Centro", polygon.Name)
		require.Len(t, polygon.Polygon, 4)
		assert.InDelta(t, 45.45, polygon.Polygon[0].Latitude, 1e-9)
		assert.InDelta(t, 9.15, polygon.Polygon[0].Longitude, 1e-9)

		radial := zoneList[1]
		assert.Equal(t, models.ZoneKindRadial, radial.Kind)
		assert.InDelta(t, 45.4642, radial.Center.Latitude, 1e-9)
		assert.InDelta(t, 3.0, radial.RadiusKM, 1e-9)

		require.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("malformed polygon json", func(t *testing.T) {
		t.Parallel()
		repo, mockDB := newRepository(t)

		rows := pgxmock.NewRows(zoneColumns).
			AddRow(
				uuid.New(), "Centro", "#E53935", models.ZoneKindPolygon,
				[]byte(`{"not": "pairs"}`), (*float64)(nil), (*float64)(nil), (*float64)(nil),
			)

		mockDB.ExpectQuery(regexp.QuoteMeta(listZonesQuery)).WillReturnRows(rows)

		_, err := repo.ListZones(t.Context())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decode zone polygon")
		require.NoError(t, mockDB.ExpectationsWereMet())
	})
}

func TestUpdateOrderAssignedDriver(t *testing.T) {
	t.Parallel()

	t.Run("assign a driver", func(t *testing.T) {
		t.Parallel()
		repo, mockDB := newRepository(t)
		orderID := uuid.New()
		driverID := uuid.New()

		mockDB.ExpectExec(regexp.QuoteMeta(updateAssignedQuery)).
			WithArgs(&driverID, orderID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, repo.UpdateOrderAssignedDriver(t.Context(), orderID, &driverID))
		require.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("clear the assignment", func(t *testing.T) {
		t.Parallel()
		repo, mockDB := newRepository(t)
		orderID := uuid.New()

		mockDB.ExpectExec(regexp.QuoteMeta(updateAssignedQuery)).
			WithArgs((*uuid.UUID)(nil), orderID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, repo.UpdateOrderAssignedDriver(t.Context(), orderID, nil))
		require.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("unknown order", func(t *testing.T) {
		t.Parallel()
		repo, mockDB := newRepository(t)
		orderID := uuid.New()

		mockDB.ExpectExec(regexp.QuoteMeta(updateAssignedQuery)).
			WithArgs((*uuid.UUID)(nil), orderID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.UpdateOrderAssignedDriver(t.Context(), orderID, nil)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
		require.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("exec error", func(t *testing.T) {
		t.Parallel()
		repo, mockDB := newRepository(t)
		orderID := uuid.New()

		mockDB.ExpectExec(regexp.QuoteMeta(updateAssignedQuery)).
			WithArgs((*uuid.UUID)(nil), orderID).
			WillReturnError(assert.AnError)

		require.ErrorIs(t, repo.UpdateOrderAssignedDriver(t.Context(), orderID, nil), assert.AnError)
		require.NoError(t, mockDB.ExpectationsWereMet())
	})
}
