package maps

import (
	"context"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"

	"ridefare/internal/types"
)

// Geocoder resolves a free-form address to coordinates.
type Geocoder interface {
	Locate(ctx context.Context, address string) (types.GeoPoint, error)
}

// GeocodeService handles interactions with the Google Geocoding API.
type GeocodeService struct {
	client   *maps.Client
	language string
	region   string
}

func NewGeocodeService(client *maps.Client, opts Options) *GeocodeService {
	return &GeocodeService{client: client, language: opts.Language, region: opts.Region}
}

// Locate returns the first result's location. Partial matches are accepted;
// the postal code in the address still drives package matching.
func (s *GeocodeService) Locate(ctx context.Context, address string) (types.GeoPoint, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return types.GeoPoint{}, fmt.Errorf("%w: empty address", ErrNoGeocode)
	}

	results, err := s.client.Geocode(ctx, &maps.GeocodingRequest{
		Address:  address,
		Language: s.language,
		Region:   s.region,
	})
	if isZeroResults(err) {
		return types.GeoPoint{}, fmt.Errorf("%w: %q", ErrNoGeocode, address)
	}
	if err != nil {
		return types.GeoPoint{}, fmt.Errorf("geocoding api error: %w", err)
	}
	if len(results) == 0 {
		return types.GeoPoint{}, fmt.Errorf("%w: %q", ErrNoGeocode, address)
	}

	loc := results[0].Geometry.Location
	return types.GeoPoint{Lat: loc.Lat, Lon: loc.Lng}, nil
}
