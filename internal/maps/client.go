// README: Google Maps client shared by the route and geocoding services.
package maps

import (
	"errors"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"
)

var (
	ErrNoRoute       = errors.New("no route found")
	ErrNoGeocode     = errors.New("address not found")
	ErrMissingAPIKey = errors.New("maps api key missing")
)

// Options carries the request defaults applied to every Maps call.
type Options struct {
	APIKey   string
	Language string
	Region   string
}

// NewClient creates a Maps client. Extra options are appended after the API
// key, e.g. maps.WithBaseURL in tests.
func NewClient(apiKey string, extra ...maps.ClientOption) (*maps.Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	opts := append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, extra...)
	client, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return client, nil
}

// isZeroResults reports the API's ZERO_RESULTS status surfaced as an error.
// The maps library has no typed status error, only "maps: <STATUS> - <message>"
// text. v1.7.0 returns ZERO_RESULTS as an empty result instead, which callers
// also map to their not-found errors.
func isZeroResults(err error) bool {
	return err != nil && strings.Contains(err.Error(), "ZERO_RESULTS")
}
