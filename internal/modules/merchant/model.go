// README: Merchant pricing configuration as stored (raw documents) and as priced (normalized Config).
package merchant

import (
	"errors"

	"ridefare/internal/modules/pricing"
)

var (
	ErrNotFound        = errors.New("merchant not found")
	ErrVehicleNotFound = errors.New("vehicle not found")
	ErrInvalidDocument = errors.New("invalid merchant document")
)

// MerchantDoc is merchants/{id}.
type MerchantDoc struct {
	Name     string `firestore:"name" json:"name"`
	Currency string `firestore:"currency" json:"currency" validate:"omitempty,len=3"`
	Enabled  bool   `firestore:"enabled" json:"enabled"`
}

// LuggageDoc accepts the legacy "max" field when maxCapacity is missing.
type LuggageDoc struct {
	IncludedFree  int     `firestore:"includedFree" json:"includedFree"`
	MaxCapacity   *int    `firestore:"maxCapacity" json:"maxCapacity,omitempty"`
	Max           *int    `firestore:"max" json:"max,omitempty"`
	PricePerExtra float64 `firestore:"pricePerExtra" json:"pricePerExtra" validate:"gte=0"`
}

// VehicleDoc is merchants/{id}/vehicles/{vehicleID}. Tariff fields are
// optional here; a vehicle missing one is priced as InvalidVehicleConfig.
type VehicleDoc struct {
	ID            string     `firestore:"-" json:"id" validate:"required"`
	Name          string     `firestore:"name" json:"name"`
	MaxPassengers int        `firestore:"maxPassengers" json:"maxPassengers" validate:"gte=0"`
	Luggage       LuggageDoc `firestore:"luggage" json:"luggage"`
	MinPrice      *float64   `firestore:"minPrice" json:"minPrice,omitempty"`
	KmThreshold   *float64   `firestore:"kmThreshold" json:"kmThreshold,omitempty"`
	PricePerKm    *float64   `firestore:"pricePerKm" json:"pricePerKm,omitempty"`
	Position      int        `firestore:"position" json:"position,omitempty"`
}

// PointDoc is a coordinate pair; older documents spell longitude "lng".
type PointDoc struct {
	Name string   `firestore:"name" json:"name,omitempty"`
	Lat  float64  `firestore:"lat" json:"lat" validate:"gte=-90,lte=90"`
	Lon  *float64 `firestore:"lon" json:"lon,omitempty"`
	Lng  *float64 `firestore:"lng" json:"lng,omitempty"`
}

type BoundingBoxDoc struct {
	MinLat float64 `firestore:"minLat" json:"minLat" validate:"gte=-90,lte=90"`
	MinLon float64 `firestore:"minLon" json:"minLon" validate:"gte=-180,lte=180"`
	MaxLat float64 `firestore:"maxLat" json:"maxLat" validate:"gte=-90,lte=90,gtefield=MinLat"`
	MaxLon float64 `firestore:"maxLon" json:"maxLon" validate:"gte=-180,lte=180"`
}

// ZoneVehicleDoc enables one vehicle inside a zone. Custom tariff fields are
// ignored when UseDefault is set.
type ZoneVehicleDoc struct {
	VehicleID   string   `firestore:"vehicleId" json:"vehicleId" validate:"required"`
	Enabled     bool     `firestore:"enabled" json:"enabled"`
	UseDefault  bool     `firestore:"useDefault" json:"useDefault"`
	MinPrice    *float64 `firestore:"minPrice" json:"minPrice,omitempty" validate:"omitempty,gte=0"`
	KmThreshold *float64 `firestore:"kmThreshold" json:"kmThreshold,omitempty" validate:"omitempty,gte=0"`
	PricePerKm  *float64 `firestore:"pricePerKm" json:"pricePerKm,omitempty" validate:"omitempty,gte=0"`
	BasePrice   *float64 `firestore:"basePrice" json:"basePrice,omitempty" validate:"omitempty,gte=0"`
}

// ZoneDoc is merchants/{id}/zones/{zoneID}. Type selects Center+RadiusKm or BoundingBox.
type ZoneDoc struct {
	ID               string           `firestore:"-" json:"id" validate:"required"`
	Name             string           `firestore:"name" json:"name"`
	Enabled          bool             `firestore:"enabled" json:"enabled"`
	Type             string           `firestore:"type" json:"type" validate:"oneof=radius region"`
	Center           *PointDoc        `firestore:"center" json:"center,omitempty" validate:"required_if=Type radius"`
	RadiusKm         float64          `firestore:"radiusKm" json:"radiusKm,omitempty" validate:"gte=0"`
	BoundingBox      *BoundingBoxDoc  `firestore:"boundingBox" json:"boundingBox,omitempty" validate:"required_if=Type region"`
	VehicleOverrides []ZoneVehicleDoc `firestore:"vehicleOverrides" json:"vehicleOverrides,omitempty" validate:"dive"`
	Position         int              `firestore:"position" json:"position,omitempty"`
}

type PackagePricingDoc struct {
	Price  *float64 `firestore:"price" json:"price,omitempty"`
	Amount *float64 `firestore:"amount" json:"amount,omitempty"`
}

// PackageDoc is merchants/{id}/packages/{packageID}. The price may live in
// any of price, fixedPrice, pricing.price or pricing.amount. Zone entries are
// postal strings or {name, lat, lon} maps.
type PackageDoc struct {
	ID             string             `firestore:"-" json:"id" validate:"required"`
	Name           string             `firestore:"name" json:"name"`
	Enabled        bool               `firestore:"enabled" json:"enabled"`
	Price          *float64           `firestore:"price" json:"price,omitempty"`
	FixedPrice     *float64           `firestore:"fixedPrice" json:"fixedPrice,omitempty"`
	Pricing        *PackagePricingDoc `firestore:"pricing" json:"pricing,omitempty"`
	DepartureZones []any              `firestore:"departureZones" json:"departureZones"`
	ArrivalZones   []any              `firestore:"arrivalZones" json:"arrivalZones"`
	VehicleTypes   []string           `firestore:"vehicleTypes" json:"vehicleTypes,omitempty"`
	Position       int                `firestore:"position" json:"position,omitempty"`
}

// SurchargeDoc is merchants/{id}/surcharges/{surchargeID}. Days use 0=Sunday.
type SurchargeDoc struct {
	ID        string  `firestore:"-" json:"id" validate:"required"`
	Name      string  `firestore:"name" json:"name"`
	Enabled   bool    `firestore:"enabled" json:"enabled"`
	Type      string  `firestore:"type" json:"type" validate:"oneof=hourly weekly"`
	StartHour int     `firestore:"startHour" json:"startHour,omitempty" validate:"gte=0,lte=23"`
	EndHour   int     `firestore:"endHour" json:"endHour,omitempty" validate:"gte=0,lte=24"`
	Days      []int   `firestore:"days" json:"days,omitempty" validate:"dive,gte=0,lte=6"`
	Amount    float64 `firestore:"amount" json:"amount"`
	Position  int     `firestore:"position" json:"position,omitempty"`
}

// RawConfig is everything stored for one merchant, in configuration order.
type RawConfig struct {
	MerchantID string         `json:"merchantId"`
	Merchant   MerchantDoc    `json:"merchant"`
	Vehicles   []VehicleDoc   `json:"vehicles" validate:"dive"`
	Zones      []ZoneDoc      `json:"zones"`
	Packages   []PackageDoc   `json:"packages"`
	Surcharges []SurchargeDoc `json:"surcharges"`
}

// Config is a merchant's configuration in the engine's canonical shape.
// Skipped describes enabled entries left out because they failed validation.
type Config struct {
	MerchantID string
	Currency   string
	Vehicles   map[string]pricing.VehicleProfile
	Zones      []pricing.ServiceZone
	Packages   []pricing.Package
	Surcharges []pricing.Surcharge
	Skipped    []string
}

func (c Config) Vehicle(id string) (pricing.VehicleProfile, bool) {
	v, ok := c.Vehicles[id]
	return v, ok
}
