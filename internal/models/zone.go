package models

import "github.com/google/uuid"

// ZoneKind distinguishes the two delivery zone geometries the platform uses.
type ZoneKind string

const (
	// ZoneKindPolygon is a zone bounded by an arbitrary polygon.
	ZoneKindPolygon ZoneKind = "polygon"
	// ZoneKindRadial is a circular tier around a center point.
	ZoneKindRadial ZoneKind = "radial"
)

// Zone is a delivery zone geometry plus its display attributes. Zones are
// owned by the backend; this service only runs point-in-zone tests on them.
type Zone struct {
	ID       uuid.UUID     // ID is the unique zone identifier.
	Name     string        // Name is the display name of the zone.
	Color    string        // Color is the map display color (hex).
	Kind     ZoneKind      // Kind selects the geometry interpretation.
	Polygon  []Coordinates // Polygon vertices, used when Kind is polygon.
	Center   Coordinates   // Center of the circle, used when Kind is radial.
	RadiusKM float64       // RadiusKM is the circle radius, used when Kind is radial.
}
