// README: Pricing configuration (vehicles, zones, packages, surcharges), trip request and breakdown types.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"ridefare/internal/types"
)

// Tariff governs distance-based pricing for a vehicle.
type Tariff struct {
	MinPrice    decimal.Decimal
	KmThreshold decimal.Decimal
	PricePerKm  decimal.Decimal
}

type LuggagePolicy struct {
	IncludedFree  int
	MaxCapacity   int
	PricePerExtra decimal.Decimal
}

// VehicleProfile is the per-vehicle configuration. A nil Tariff means the
// profile is incomplete and cannot be priced.
type VehicleProfile struct {
	ID            string
	Name          string
	MaxPassengers int
	Luggage       LuggagePolicy
	Tariff        *Tariff
}

// Geography is the area covered by a service zone. Implementations are
// Radius and Region.
type Geography interface {
	Contains(p types.GeoPoint) bool
	isGeography()
}

type Radius struct {
	Center   types.GeoPoint
	RadiusKm float64
}

type Region struct {
	Box types.BoundingBox
}

// CustomTariff replaces tariff fields for one vehicle inside a zone. Fields
// left invalid fall back to the vehicle's own tariff.
type CustomTariff struct {
	MinPrice    decimal.NullDecimal
	KmThreshold decimal.NullDecimal
	PricePerKm  decimal.NullDecimal
	BasePrice   decimal.NullDecimal
}

// ZoneVehiclePricing enables a vehicle inside a zone. Custom == nil means the
// vehicle keeps its default tariff.
type ZoneVehiclePricing struct {
	VehicleID string
	Enabled   bool
	Custom    *CustomTariff
}

type ServiceZone struct {
	ID               string
	Name             string
	Enabled          bool
	Geography        Geography
	VehicleOverrides []ZoneVehiclePricing
}

// Package is a fixed price for trips between two sets of zones.
type Package struct {
	ID             string
	Name           string
	Price          decimal.Decimal
	Enabled        bool
	DepartureZones []ZoneMatcher
	ArrivalZones   []ZoneMatcher
	VehicleTypes   []string
}

// Window decides whether a surcharge applies at a given hour and weekday.
// Implementations are Hourly and Weekly.
type Window interface {
	Applies(hour int, day time.Weekday) bool
	isWindow()
}

type Hourly struct {
	StartHour int
	EndHour   int
}

type Weekly struct {
	Days []time.Weekday
}

type Surcharge struct {
	ID      string
	Name    string
	Enabled bool
	Window  Window
	Amount  decimal.Decimal
}

// Endpoint is one side of a trip.
type Endpoint struct {
	Address string
	Coords  *types.GeoPoint
}

// TripRequest describes the ride being priced. DistanceKm is supplied by the
// routing collaborator; Date is "2006-01-02" and Time is "15:04" or "15:04:05".
type TripRequest struct {
	DistanceKm   float64
	Date         string
	Time         string
	Departure    Endpoint
	Arrival      Endpoint
	LuggageCount int
	VehicleID    string
}

// Input bundles everything one computation reads. Skipped lists
// configuration entries dropped before pricing; they are only traced.
type Input struct {
	Trip       TripRequest
	Vehicle    VehicleProfile
	Zones      []ServiceZone
	Packages   []Package
	Surcharges []Surcharge
	Currency   string
	Skipped    []string
}

type LineItem struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

type AppliedPackage struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type AppliedZone struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	CustomTariff bool   `json:"custom_tariff"`
}

type LuggageInfo struct {
	Total      int  `json:"total"`
	Included   int  `json:"included"`
	Paid       int  `json:"paid"`
	Max        int  `json:"max"`
	ExceedsMax bool `json:"exceeds_max"`
}

type Stage string

const (
	StageConfig    Stage = "config"
	StageVehicle   Stage = "vehicle"
	StageZone      Stage = "zone"
	StagePackage   Stage = "package"
	StageDistance  Stage = "distance"
	StageLuggage   Stage = "luggage"
	StageSurcharge Stage = "surcharge"
	StageMinimum   Stage = "minimum"
	StageFinalize  Stage = "finalize"
)

type TraceEntry struct {
	Stage  Stage  `json:"stage"`
	Detail string `json:"detail"`
}

// PriceBreakdown is the result of one computation.
type PriceBreakdown struct {
	Lines                    []LineItem      `json:"details"`
	Subtotal                 decimal.Decimal `json:"subtotal"`
	Total                    decimal.Decimal `json:"total"`
	Currency                 string          `json:"currency"`
	AppliedPackage           *AppliedPackage `json:"applied_package,omitempty"`
	AppliedZone              *AppliedZone    `json:"applied_zone,omitempty"`
	UsedMinimumDistanceFloor bool            `json:"used_minimum_distance_floor"`
	Luggage                  *LuggageInfo    `json:"luggage,omitempty"`
	Error                    ErrorKind       `json:"error,omitempty"`
	Trace                    []TraceEntry    `json:"trace"`
}

// Bookable reports whether the breakdown may be confirmed as a booking.
// Non-fatal kinds such as LuggageCapacityExceeded still block it.
func (b PriceBreakdown) Bookable() bool {
	return b.Error == ""
}
