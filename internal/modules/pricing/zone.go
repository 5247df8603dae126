package pricing

import (
	"github.com/shopspring/decimal"

	"ridefare/internal/types"
)

type ZoneStatus int

const (
	// ZoneNotApplicable: no zones configured or no departure coordinates.
	ZoneNotApplicable ZoneStatus = iota
	ZoneMatched
	ZoneOutOfService
	ZoneVehicleUnavailable
)

func (s ZoneStatus) String() string {
	switch s {
	case ZoneNotApplicable:
		return "not_applicable"
	case ZoneMatched:
		return "matched"
	case ZoneOutOfService:
		return "out_of_service"
	case ZoneVehicleUnavailable:
		return "vehicle_unavailable"
	default:
		return "unknown"
	}
}

// ZoneResolution is the outcome of ResolveZone. Zone is set for ZoneMatched
// and ZoneVehicleUnavailable. Override is nil when the default tariff applies.
type ZoneResolution struct {
	Status   ZoneStatus
	Zone     *ServiceZone
	Override *CustomTariff
}

// ResolveZone finds the first enabled zone, in configuration order, that
// contains the departure point and checks that the vehicle may run there.
func ResolveZone(departure *types.GeoPoint, zones []ServiceZone, vehicleID string) ZoneResolution {
	if len(zones) == 0 || departure == nil {
		return ZoneResolution{Status: ZoneNotApplicable}
	}

	active := 0
	for i := range zones {
		z := &zones[i]
		if !z.Enabled || z.Geography == nil {
			continue
		}
		active++
		if !z.Geography.Contains(*departure) {
			continue
		}
		ov, ok := z.overrideFor(vehicleID)
		if !ok {
			return ZoneResolution{Status: ZoneVehicleUnavailable, Zone: z}
		}
		return ZoneResolution{Status: ZoneMatched, Zone: z, Override: ov.Custom}
	}

	// Every zone disabled: the merchant has switched restrictions off.
	if active == 0 {
		return ZoneResolution{Status: ZoneNotApplicable}
	}
	return ZoneResolution{Status: ZoneOutOfService}
}

func (z *ServiceZone) overrideFor(vehicleID string) (ZoneVehiclePricing, bool) {
	for _, ov := range z.VehicleOverrides {
		if ov.Enabled && ov.VehicleID == vehicleID {
			return ov, true
		}
	}
	return ZoneVehiclePricing{}, false
}

// EffectiveTariff merges the zone override onto the vehicle's tariff.
func (r ZoneResolution) EffectiveTariff(def Tariff) Tariff {
	if r.Override == nil {
		return def
	}
	t := def
	if r.Override.MinPrice.Valid {
		t.MinPrice = r.Override.MinPrice.Decimal
	}
	if r.Override.KmThreshold.Valid {
		t.KmThreshold = r.Override.KmThreshold.Decimal
	}
	if r.Override.PricePerKm.Valid {
		t.PricePerKm = r.Override.PricePerKm.Decimal
	}
	return t
}

// BasePrice is the flat pickup fee of a custom override, zero otherwise.
func (r ZoneResolution) BasePrice() decimal.Decimal {
	if r.Override == nil || !r.Override.BasePrice.Valid {
		return decimal.Zero
	}
	return r.Override.BasePrice.Decimal
}
