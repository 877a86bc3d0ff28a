package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DeliveryType describes how an order reaches the customer.
type DeliveryType string

const (
	// DeliveryTypeDelivery marks orders delivered by a driver.
	DeliveryTypeDelivery DeliveryType = "delivery"
	// DeliveryTypePickup marks orders collected by the customer.
	DeliveryTypePickup DeliveryType = "pickup"
	// DeliveryTypeDineIn marks orders consumed on premises.
	DeliveryTypeDineIn DeliveryType = "dine_in"
)

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusPreparing  OrderStatus = "preparing"
	StatusDelivering OrderStatus = "delivering"
	StatusCompleted  OrderStatus = "completed"
	StatusCancelled  OrderStatus = "cancelled"
)

// Order is an order snapshot as delivered by the backend order stream.
// This service only reads orders and requests driver-assignment mutations;
// everything else is owned by the backend store.
type Order struct {
	ID               uuid.UUID    // ID is the unique order identifier.
	Number           string       // Number is the human-facing order number.
	CustomerName     string       // CustomerName is the name on the order.
	DeliveryType     DeliveryType // DeliveryType distinguishes delivery from pickup/dine-in.
	Street           string       // Street is the delivery address line.
	City             string       // City of the delivery address.
	PostalCode       string       // PostalCode of the delivery address.
	Latitude         *float64     // Latitude previously stored by the backend, if any.
	Longitude        *float64     // Longitude previously stored by the backend, if any.
	AssignedDriverID *uuid.UUID   // AssignedDriverID is nil while the order is unassigned.
	Status           OrderStatus  // Status is the current lifecycle state.
	CreatedAt        time.Time    // CreatedAt is the backend creation timestamp.
	UpdatedAt        time.Time    // UpdatedAt is zero if the order was never modified.
}

// Address joins the non-empty address fields into a single free-text line.
func (o Order) Address() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{o.Street, o.City, o.PostalCode} {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, ", ")
}

// HasAddress reports whether the order carries any address text at all.
func (o Order) HasAddress() bool {
	return o.Address() != ""
}

// StoredCoordinates returns the backend-stored coordinates, if both components
// are present.
func (o Order) StoredCoordinates() (Coordinates, bool) {
	if o.Latitude == nil || o.Longitude == nil {
		return Coordinates{}, false
	}
	return Coordinates{Latitude: *o.Latitude, Longitude: *o.Longitude}, true
}

// IsDeliverable reports whether the order is eligible for the geocoding and
// zone pipeline: a delivery order is, a pickup or dine-in order never is.
func (o Order) IsDeliverable() bool {
	return o.DeliveryType == DeliveryTypeDelivery
}
