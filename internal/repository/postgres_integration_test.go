package repository_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/fornelloapp/dispatch/internal/models"
	"github.com/fornelloapp/dispatch/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const schema = `
	CREATE TABLE orders (
		id UUID PRIMARY KEY,
		order_number TEXT NOT NULL,
		customer_name TEXT NOT NULL,
		delivery_type TEXT NOT NULL,
		street TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		postal_code TEXT NOT NULL DEFAULT '',
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION,
		assigned_driver_id UUID,
		status TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ
	);

	CREATE TABLE staff (
		id UUID PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT true
	);

	CREATE TABLE delivery_zones (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		color TEXT NOT NULL DEFAULT '',
		kind TEXT NOT NULL,
		polygon JSONB,
		center_lat DOUBLE PRECISION,
		center_lng DOUBLE PRECISION,
		radius_km DOUBLE PRECISION,
		priority INT NOT NULL DEFAULT 0
	);
`

func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("dispatch"),
		postgres.WithUsername("dispatch"),
		postgres.WithPassword("dispatch"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, container.Terminate(context.Background()))
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, schema)
	require.NoError(t, err)

	return pool
}

func TestRepositoryIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	pool := setupPostgres(t)
	repo := repository.NewRepository(pool, slog.Default())
	ctx := context.Background()

	serviceDate := time.Date(2025, 3, 10, 19, 0, 0, 0, time.UTC)
	todayID := uuid.New()
	yesterdayID := uuid.New()
	driverID := uuid.New()

	_, err := pool.Exec(ctx, `
		INSERT INTO orders (id, order_number, customer_name, delivery_type, street, city, postal_code, status, created_at)
		VALUES
			($1, '1042', 'Giulia Ferri', 'delivery', 'Via Roma 1', 'Milano', '20121', 'pending', $2),
			($3, '0991', 'Marco Riva', 'delivery', 'Via Torino 5', 'Milano', '20123', 'completed', $4);
	`, todayID, serviceDate, yesterdayID, serviceDate.AddDate(0, 0, -1))
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `
		INSERT INTO staff (id, first_name, last_name, phone, role, is_active)
		VALUES
			($1, 'Luca', 'Bianchi', '+39 333 1234567', 'delivery', true),
			($2, 'Sara', 'Colombo', '', 'delivery', false),
			($3, 'Anna', 'Greco', '', 'kitchen', true);
	`, driverID, uuid.New(), uuid.New())
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `
		INSERT INTO delivery_zones (id, name, color, kind, polygon, priority)
		VALUES ($1, 'Centro', '#E53935', 'polygon', '[[45.45, 9.15], [45.45, 9.23], [45.49, 9.23], [45.49, 9.15]]', 1);
	`, uuid.New())
	require.NoError(t, err)

	t.Run("list orders scoped to the service date", func(t *testing.T) {
		orders, err := repo.ListOrdersByDate(ctx, serviceDate)
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, todayID, orders[0].ID)
		assert.Equal(t, "Via Roma 1, Milano, 20121", orders[0].Address())
		assert.True(t, orders[0].UpdatedAt.IsZero())
	})

	t.Run("list only active delivery drivers", func(t *testing.T) {
		drivers, err := repo.ListActiveDrivers(ctx, models.RoleDelivery)
		require.NoError(t, err)
		require.Len(t, drivers, 1)
		assert.Equal(t, "Luca Bianchi", drivers[0].FullName())
	})

	t.Run("list zones with decoded polygons", func(t *testing.T) {
		zoneList, err := repo.ListZones(ctx)
		require.NoError(t, err)
		require.Len(t, zoneList, 1)
		assert.Equal(t, models.ZoneKindPolygon, zoneList[0].Kind)
		assert.Len(t, zoneList[0].Polygon, 4)
	})

	t.Run("assign and clear a driver without touching updated_at", func(t *testing.T) {
		require.NoError(t, repo.UpdateOrderAssignedDriver(ctx, todayID, &driverID))

		orders, err := repo.ListOrdersByDate(ctx, serviceDate)
		require.NoError(t, err)
		require.Len(t, orders, 1)
		require.NotNil(t, orders[0].AssignedDriverID)
		assert.Equal(t, driverID, *orders[0].AssignedDriverID)
		assert.True(t, orders[0].UpdatedAt.IsZero())

		require.NoError(t, repo.UpdateOrderAssignedDriver(ctx, todayID, nil))

		orders, err = repo.ListOrdersByDate(ctx, serviceDate)
		require.NoError(t, err)
		assert.Nil(t, orders[0].AssignedDriverID)
	})

	t.Run("unknown order is reported", func(t *testing.T) {
		err := repo.UpdateOrderAssignedDriver(ctx, uuid.New(), &driverID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}
