// Package zones answers point-in-zone queries against the delivery zone
// geometries owned by the backend.
package zones

import (
	"math"

	"github.com/fornelloapp/dispatch/internal/models"
)

// EarthRadiusKM is Earth's radius in kilometers for the Haversine calculation.
const EarthRadiusKM = 6371.0

// Match returns the first zone whose geometry contains the point. The zone
// list order is the backend's priority order. An empty zone list matches
// nothing.
func Match(point models.Coordinates, zoneList []models.Zone) (models.Zone, bool) {
	for _, zone := range zoneList {
		if Contains(zone, point) {
			return zone, true
		}
	}
	return models.Zone{}, false
}

// Contains reports whether a zone's geometry contains the point.
func Contains(zone models.Zone, point models.Coordinates) bool {
	switch zone.Kind {
	case models.ZoneKindRadial:
		return HaversineKM(zone.Center, point) <= zone.RadiusKM
	case models.ZoneKindPolygon:
		return polygonContains(zone.Polygon, point)
	default:
		return false
	}
}

// HaversineKM calculates the great-circle distance between two points on
// Earth in kilometers using the Haversine formula.
func HaversineKM(a, b models.Coordinates) float64 {
	const degToRad = math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * degToRad
	dLng := (b.Longitude - a.Longitude) * degToRad
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Latitude*degToRad)*math.Cos(b.Latitude*degToRad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKM * c
}

// polygonContains runs a ray-casting test in plate-carree space, which is
// accurate enough at delivery zone scale. Polygons with fewer than three
// vertices contain nothing.
func polygonContains(polygon []models.Coordinates, point models.Coordinates) bool {
	if len(polygon) < 3 {
		return false
	}

	inside := false
	j := len(polygon) - 1
	for i := 0; i < len(polygon); i++ {
		pi, pj := polygon[i], polygon[j]
		intersects := (pi.Latitude > point.Latitude) != (pj.Latitude > point.Latitude) &&
			point.Longitude < (pj.Longitude-pi.Longitude)*(point.Latitude-pi.Latitude)/
				(pj.Latitude-pi.Latitude)+pi.Longitude
		if intersects {
			inside = !inside
		}
		j = i
	}
	return inside
}
