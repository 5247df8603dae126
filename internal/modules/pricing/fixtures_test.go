package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"ridefare/internal/types"
)

var (
	paris = types.GeoPoint{Lat: 48.8566, Lon: 2.3522}
	cdg   = types.GeoPoint{Lat: 49.0097, Lon: 2.5479}
	lyon  = types.GeoPoint{Lat: 45.7640, Lon: 4.8357}
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func nullDec(s string) decimal.NullDecimal { return decimal.NewNullDecimal(dec(s)) }

func pt(p types.GeoPoint) *types.GeoPoint { return &p }

func assertAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "amount = %s, want %s", got.String(), want)
}

// sedan is the vehicle of the reference pricing scenarios.
func sedan() VehicleProfile {
	return VehicleProfile{
		ID:            "sedan",
		Name:          "Sedan",
		MaxPassengers: 4,
		Luggage:       LuggagePolicy{IncludedFree: 2, MaxCapacity: 4, PricePerExtra: dec("5")},
		Tariff:        &Tariff{MinPrice: dec("15"), KmThreshold: dec("5"), PricePerKm: dec("1.8")},
	}
}

func parisZone(overrides ...ZoneVehiclePricing) ServiceZone {
	return ServiceZone{
		ID:               "paris",
		Name:             "Paris",
		Enabled:          true,
		Geography:        Radius{Center: paris, RadiusKm: 10},
		VehicleOverrides: overrides,
	}
}

func airportPackage() Package {
	return Package{
		ID:             "cdg-paris",
		Name:           "CDG → Paris",
		Price:          dec("50"),
		Enabled:        true,
		DepartureZones: []ZoneMatcher{PointMatcher{Name: "CDG", Point: cdg}},
		ArrivalZones:   []ZoneMatcher{PostalPrefix("75")},
		VehicleTypes:   []string{"van"},
	}
}

func nightSurcharge() Surcharge {
	return Surcharge{ID: "night", Name: "Night", Enabled: true, Window: Hourly{StartHour: 22, EndHour: 6}, Amount: dec("15")}
}
