package models

import "math"

// Coordinates represents a geographical point defined by its latitude and longitude.
type Coordinates struct {
	Latitude  float64 // Latitude of the geographical point.
	Longitude float64 // Longitude of the geographical point.
}

// CloseTo reports whether both components of the point are within eps degrees
// of the other point. Used to suppress cache writes for geocode results that
// only differ by provider jitter.
func (c Coordinates) CloseTo(other Coordinates, eps float64) bool {
	return math.Abs(c.Latitude-other.Latitude) <= eps && math.Abs(c.Longitude-other.Longitude) <= eps
}
