package geocoding

import (
	"context"
	"strings"

	"github.com/fornelloapp/dispatch/internal/models"
)

// Query describes a single geocoding request: the structured address fields of
// an order plus an optional proximity hint that biases results toward the
// locally relevant area (the pizzeria's own location).
type Query struct {
	Street     string
	City       string
	PostalCode string
	Proximity  *models.Coordinates
}

// FreeText joins the non-empty address fields into a single request line.
func (q Query) FreeText() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{q.Street, q.City, q.PostalCode} {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, ", ")
}

// Provider is an interface that defines a method for geocoding an address.
// The Geocode method takes a context and a query, and returns the
// corresponding coordinates and an error if any occurs. Implementations must
// be safe for concurrent use.
type Provider interface {
	Geocode(ctx context.Context, query Query) (*models.Coordinates, error)
}
