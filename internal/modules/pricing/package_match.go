package pricing

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"ridefare/internal/types"
)

// PointMatchRadiusKm is how close an endpoint must be to a point matcher.
const PointMatchRadiusKm = 1.0

var postalCodePattern = regexp.MustCompile(`\b\d{5}\b`)

// ZoneMatcher is one entry of a package's departure or arrival list.
// Implementations are PostalPrefix, PostalCode and PointMatcher.
type ZoneMatcher interface {
	Matches(e Endpoint) bool
	String() string
	isZoneMatcher()
}

// PostalPrefix is a two-digit department prefix such as "75".
type PostalPrefix string

// PostalCode is a full five-digit postal code such as "75015".
type PostalCode string

// PointMatcher matches endpoints within PointMatchRadiusKm of a named place.
type PointMatcher struct {
	Name  string
	Point types.GeoPoint
}

func (p PostalPrefix) Matches(e Endpoint) bool {
	for _, code := range postalCodePattern.FindAllString(e.Address, -1) {
		if strings.HasPrefix(code, string(p)) {
			return true
		}
	}
	return false
}

func (c PostalCode) Matches(e Endpoint) bool {
	return strings.Contains(e.Address, string(c))
}

func (m PointMatcher) Matches(e Endpoint) bool {
	if e.Coords == nil {
		return false
	}
	return haversineKm(*e.Coords, m.Point) <= PointMatchRadiusKm
}

func (p PostalPrefix) String() string { return string(p) }
func (c PostalCode) String() string   { return string(c) }
func (m PointMatcher) String() string { return m.Name }

func (PostalPrefix) isZoneMatcher() {}
func (PostalCode) isZoneMatcher()   {}
func (PointMatcher) isZoneMatcher() {}

// ParseZoneMatcher turns a configured string into a postal matcher. Point
// matchers are built directly from their coordinates.
func ParseZoneMatcher(s string) (ZoneMatcher, error) {
	s = strings.TrimSpace(s)
	if isDigits(s) {
		switch len(s) {
		case 2:
			return PostalPrefix(s), nil
		case 5:
			return PostalCode(s), nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidZoneMatcher, s)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// MatchPackage returns the first enabled package, in configuration order,
// serving the vehicle and matching both trip endpoints. Nil means no match.
func MatchPackage(departure, arrival Endpoint, vehicleID string, packages []Package) *Package {
	for i := range packages {
		p := &packages[i]
		if !p.Enabled {
			continue
		}
		if len(p.VehicleTypes) > 0 && !slices.Contains(p.VehicleTypes, vehicleID) {
			continue
		}
		if anyMatches(p.DepartureZones, departure) && anyMatches(p.ArrivalZones, arrival) {
			return p
		}
	}
	return nil
}

func anyMatches(matchers []ZoneMatcher, e Endpoint) bool {
	for _, m := range matchers {
		if m != nil && m.Matches(e) {
			return true
		}
	}
	return false
}
