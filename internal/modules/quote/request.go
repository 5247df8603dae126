package quote

import (
	"fmt"
	"math"

	"ridefare/internal/modules/merchant"
	"ridefare/internal/modules/pricing"
	"ridefare/internal/types"
)

// ComputeRequest is the self-contained pricing input: the trip plus the full
// configuration it is priced against, in stored document shape.
type ComputeRequest struct {
	DistanceKm       float64                 `json:"distanceKm"`
	VehicleConfig    merchant.VehicleDoc     `json:"vehicleConfig"`
	Date             string                  `json:"date"`
	Time             string                  `json:"time"`
	TotalLuggage     int                     `json:"totalLuggage"`
	DepartureAddress string                  `json:"departureAddress"`
	ArrivalAddress   string                  `json:"arrivalAddress"`
	DepartureCoords  *types.GeoPoint         `json:"departureCoords,omitempty"`
	ArrivalCoords    *types.GeoPoint         `json:"arrivalCoords,omitempty"`
	Surcharges       []merchant.SurchargeDoc `json:"surcharges"`
	Packages         []merchant.PackageDoc   `json:"packages"`
	ServiceZones     []merchant.ZoneDoc      `json:"serviceZones"`
	Currency         string                  `json:"currency,omitempty"`
}

func (r ComputeRequest) toInput() (pricing.Input, error) {
	if r.TotalLuggage < 0 {
		return pricing.Input{}, fmt.Errorf("%w: totalLuggage must not be negative", ErrBadRequest)
	}
	if r.DistanceKm < 0 || math.IsNaN(r.DistanceKm) || math.IsInf(r.DistanceKm, 0) {
		return pricing.Input{}, fmt.Errorf("%w: invalid distanceKm", ErrBadRequest)
	}
	for _, c := range []*types.GeoPoint{r.DepartureCoords, r.ArrivalCoords} {
		if c != nil && !c.Valid() {
			return pricing.Input{}, fmt.Errorf("%w: coordinates %s out of range", ErrBadRequest, c)
		}
	}

	cfg, err := merchant.Normalize(merchant.RawConfig{
		Merchant:   merchant.MerchantDoc{Currency: r.Currency},
		Vehicles:   []merchant.VehicleDoc{r.VehicleConfig},
		Zones:      r.ServiceZones,
		Packages:   r.Packages,
		Surcharges: r.Surcharges,
	})
	if err != nil {
		return pricing.Input{}, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	vehicle, _ := cfg.Vehicle(r.VehicleConfig.ID)

	return pricing.Input{
		Trip: pricing.TripRequest{
			DistanceKm:   r.DistanceKm,
			Date:         r.Date,
			Time:         r.Time,
			Departure:    pricing.Endpoint{Address: r.DepartureAddress, Coords: r.DepartureCoords},
			Arrival:      pricing.Endpoint{Address: r.ArrivalAddress, Coords: r.ArrivalCoords},
			LuggageCount: r.TotalLuggage,
			VehicleID:    r.VehicleConfig.ID,
		},
		Vehicle:    vehicle,
		Zones:      cfg.Zones,
		Packages:   cfg.Packages,
		Surcharges: cfg.Surcharges,
		Currency:   cfg.Currency,
		Skipped:    cfg.Skipped,
	}, nil
}
