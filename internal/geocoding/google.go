package geocoding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fornelloapp/dispatch/internal/models"
	"googlemaps.github.io/maps"
)

// proximityBiasDegrees is the half-size of the viewport bias box placed around
// the proximity hint. Roughly a 50km box at mid latitudes, enough to prefer
// the pizzeria's own city over namesakes elsewhere.
const proximityBiasDegrees = 0.25

// GoogleProvider is a struct that holds the client for Google Maps API
// and a logger for logging purposes. It is used to interact with the
// Google Maps geocoding services.
type GoogleProvider struct {
	client GoogleAPIClient // client is the Google Maps API client
	log    *slog.Logger    // log is the logger for logging operations
}

type GoogleAPIClient interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// ErrEmptyResponse is returned when the Google Maps API responds with an empty result.
var ErrEmptyResponse = errors.New("get empty response from Google Maps API")

// NewGoogleProvider initializes a new GoogleProvider with the given API client and logger.
func NewGoogleProvider(client GoogleAPIClient, log *slog.Logger) *GoogleProvider {
	return &GoogleProvider{client: client, log: log}
}

// Geocode resolves the query's address into geographical coordinates using the
// Google Maps Geocoding API. When the query carries a proximity hint, the
// request is biased with a viewport around it. If the address cannot be
// geocoded or the response is empty, an appropriate error is returned.
func (gp *GoogleProvider) Geocode(ctx context.Context, query Query) (*models.Coordinates, error) {
	address := query.FreeText()
	gp.log.DebugContext(ctx, "Geocoding using Google Maps", "address", address)

	req := maps.GeocodingRequest{Address: address}
	if query.Proximity != nil {
		req.Bounds = &maps.LatLngBounds{
			SouthWest: maps.LatLng{
				Lat: query.Proximity.Latitude - proximityBiasDegrees,
				Lng: query.Proximity.Longitude - proximityBiasDegrees,
			},
			NorthEast: maps.LatLng{
				Lat: query.Proximity.Latitude + proximityBiasDegrees,
				Lng: query.Proximity.Longitude + proximityBiasDegrees,
			},
		}
	}

	geocodeResponse, err := gp.client.Geocode(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("failed to geocode address: %w", err)
	}

	if len(geocodeResponse) == 0 {
		return nil, ErrEmptyResponse
	}
	coords := geocodeResponse[0].Geometry.Location

	return &models.Coordinates{Latitude: coords.Lat, Longitude: coords.Lng}, nil
}
