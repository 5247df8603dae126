package maps

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"

	"ridefare/internal/types"
)

// DistanceProvider returns the driving distance between two points.
type DistanceProvider interface {
	DistanceKm(ctx context.Context, from, to types.GeoPoint) (float64, error)
}

// RouteService handles interactions with the Google Directions API.
type RouteService struct {
	client   *maps.Client
	language string
	region   string
}

func NewRouteService(client *maps.Client, opts Options) *RouteService {
	return &RouteService{client: client, language: opts.Language, region: opts.Region}
}

// DistanceKm returns the length of the first driving route, summed over its legs.
func (s *RouteService) DistanceKm(ctx context.Context, from, to types.GeoPoint) (float64, error) {
	r := &maps.DirectionsRequest{
		Origin:      from.String(),
		Destination: to.String(),
		Mode:        maps.TravelModeDriving,
		Language:    s.language,
		Region:      s.region,
	}

	routes, _, err := s.client.Directions(ctx, r)
	if isZeroResults(err) {
		return 0, fmt.Errorf("%w: %s -> %s", ErrNoRoute, from, to)
	}
	if err != nil {
		return 0, fmt.Errorf("maps api error: %w", err)
	}

	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return 0, fmt.Errorf("%w: %s -> %s", ErrNoRoute, from, to)
	}

	meters := 0
	for _, leg := range routes[0].Legs {
		meters += leg.Distance.Meters
	}
	return float64(meters) / 1000, nil
}
