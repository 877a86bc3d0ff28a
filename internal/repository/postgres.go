package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fornelloapp/dispatch/internal/models"
	"github.com/google/uuid"
)

// ListOrdersByDate retrieves all orders created on the given service date,
// newest first. Stored coordinates, the assigned driver, and the last-modified
// timestamp come back as nullable columns.
func (r *Repository) ListOrdersByDate(ctx context.Context, date time.Time) ([]models.Order, error) {
	query := `
		SELECT
			id, order_number, customer_name, delivery_type,
			street, city, postal_code,
			latitude, longitude, assigned_driver_id, status,
			created_at, updated_at
		FROM orders
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at DESC;
	`

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	rows, err := r.db.Query(ctx, query, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders by date: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var order models.Order
		var updatedAt *time.Time
		if errScan := rows.Scan(
			&order.ID, &order.Number, &order.CustomerName, &order.DeliveryType,
			&order.Street, &order.City, &order.PostalCode,
			&order.Latitude, &order.Longitude, &order.AssignedDriverID, &order.Status,
			&order.CreatedAt, &updatedAt,
		); errScan != nil {
			return nil, fmt.Errorf("failed to scan order row: %w", errScan)
		}
		if updatedAt != nil {
			order.UpdatedAt = *updatedAt
		}
		orders = append(orders, order)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read order rows: %w", err)
	}

	return orders, nil
}

// ListActiveDrivers retrieves the active staff members with the given role,
// ordered by name. Loaded once per dashboard session.
func (r *Repository) ListActiveDrivers(ctx context.Context, role string) ([]models.Driver, error) {
	query := `
		SELECT id, first_name, last_name, phone
		FROM staff
		WHERE role = $1 AND is_active = true
		ORDER BY first_name, last_name;
	`

	rows, err := r.db.Query(ctx, query, role)
	if err != nil {
		return nil, fmt.Errorf("failed to query active drivers: %w", err)
	}
	defer rows.Close()

	var drivers []models.Driver
	for rows.Next() {
		driver := models.Driver{Active: true}
		if errScan := rows.Scan(&driver.ID, &driver.Name, &driver.Surname, &driver.Phone); errScan != nil {
			return nil, fmt.Errorf("failed to scan driver row: %w", errScan)
		}
		drivers = append(drivers, driver)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read driver rows: %w", err)
	}

	return drivers, nil
}

// ListZones retrieves the delivery zone geometries in priority order. Polygon
// vertices are stored as a JSON array of [lat, lng] pairs.
func (r *Repository) ListZones(ctx context.Context) ([]models.Zone, error) {
	query := `
		SELECT id, name, color, kind, polygon, center_lat, center_lng, radius_km
		FROM delivery_zones
		ORDER BY priority ASC;
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query delivery zones: %w", err)
	}
	defer rows.Close()

	var zoneList []models.Zone
	for rows.Next() {
		var zone models.Zone
		var polygonJSON []byte
		var centerLat, centerLng, radiusKM *float64
		if errScan := rows.Scan(
			&zone.ID, &zone.Name, &zone.Color, &zone.Kind,
			&polygonJSON, &centerLat, &centerLng, &radiusKM,
		); errScan != nil {
			return nil, fmt.Errorf("failed to scan zone row: %w", errScan)
		}

		if len(polygonJSON) > 0 {
			var pairs [][2]float64
			if errJSON := json.Unmarshal(polygonJSON, &pairs); errJSON != nil {
				return nil, fmt.Errorf("failed to decode zone polygon: %w", errJSON)
			}
			zone.Polygon = make([]models.Coordinates, 0, len(pairs))
			for _, pair := range pairs {
				zone.Polygon = append(zone.Polygon, models.Coordinates{Latitude: pair[0], Longitude: pair[1]})
			}
		}
		if centerLat != nil && centerLng != nil {
			zone.Center = models.Coordinates{Latitude: *centerLat, Longitude: *centerLng}
		}
		if radiusKM != nil {
			zone.RadiusKM = *radiusKM
		}

		zoneList = append(zoneList, zone)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read zone rows: %w", err)
	}

	return zoneList, nil
}

// UpdateOrderAssignedDriver sets or clears the assigned driver of an order. A
// nil driverID clears the assignment. The last-modified timestamp is left
// untouched so the mutation does not look like an address change downstream.
func (r *Repository) UpdateOrderAssignedDriver(ctx context.Context, orderID uuid.UUID, driverID *uuid.UUID) error {
	query := `
		UPDATE orders
		SET assigned_driver_id = $1
		WHERE id = $2;
	`

	tag, err := r.db.Exec(ctx, query, driverID, orderID)
	if err != nil {
		return fmt.Errorf("failed to update assigned driver: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %s not found", orderID)
	}

	return nil
}
