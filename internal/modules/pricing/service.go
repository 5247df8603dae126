// README: Price assembler; runs the pricing stages in order and builds the itemized breakdown.
package pricing

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

const (
	DefaultCurrency = "EUR"

	LabelBaseFare          = "Base fare"
	LabelMinimumAdjustment = "Minimum fare adjustment"
)

// Compute prices one trip. It reads only its input and always returns a
// breakdown; failures are reported through PriceBreakdown.Error.
func Compute(in Input) PriceBreakdown {
	a := assembler{in: in}
	a.run()
	return a.b
}

type assembler struct {
	in Input
	b  PriceBreakdown
}

func (a *assembler) run() {
	trip := a.in.Trip
	vehicle := a.in.Vehicle
	vehicleID := trip.VehicleID
	if vehicleID == "" {
		vehicleID = vehicle.ID
	}

	a.b = PriceBreakdown{
		Lines:    []LineItem{},
		Subtotal: decimal.Zero,
		Total:    decimal.Zero,
		Currency: a.in.Currency,
		Trace:    []TraceEntry{},
	}
	if a.b.Currency == "" {
		a.b.Currency = DefaultCurrency
	}

	for _, note := range a.in.Skipped {
		a.trace(StageConfig, "skipped "+note)
	}

	if reason := checkVehicle(vehicle); reason != "" {
		a.fail(StageVehicle, ErrInvalidVehicleConfig, reason)
		return
	}
	tariff := *vehicle.Tariff

	zone := ResolveZone(trip.Departure.Coords, a.in.Zones, vehicleID)
	if zone.Zone != nil {
		a.b.AppliedZone = &AppliedZone{ID: zone.Zone.ID, Name: zone.Zone.Name, CustomTariff: zone.Override != nil}
	}
	switch zone.Status {
	case ZoneOutOfService:
		a.fail(StageZone, ErrOutOfServiceArea, "departure outside every enabled zone")
		return
	case ZoneVehicleUnavailable:
		a.fail(StageZone, ErrVehicleUnavailableInZone, fmt.Sprintf("vehicle %q not enabled in zone %q", vehicleID, zone.Zone.ID))
		return
	case ZoneMatched:
		tariff = zone.EffectiveTariff(tariff)
		a.trace(StageZone, fmt.Sprintf("matched zone %q, custom tariff=%t", zone.Zone.ID, zone.Override != nil))
	default:
		a.trace(StageZone, "no zone restriction")
	}

	pkg := MatchPackage(trip.Departure, trip.Arrival, vehicleID, a.in.Packages)
	if pkg != nil {
		a.add(StagePackage, "Package: "+pkg.Name, pkg.Price)
		a.b.AppliedPackage = &AppliedPackage{ID: pkg.ID, Name: pkg.Name, Price: pkg.Price.Round(2)}
		// Capacity still matters for the booking even though bags are not billed.
		a.checkLuggage(LuggageCharge(trip.LuggageCount, vehicle.Luggage))
	} else {
		a.trace(StagePackage, "no package matched")
		a.priceDistance(trip.DistanceKm, tariff, zone.BasePrice())
		lug := LuggageCharge(trip.LuggageCount, vehicle.Luggage)
		if lug.Amount.IsPositive() {
			a.add(StageLuggage, fmt.Sprintf("Extra luggage (%d × %s)", lug.Info.Paid, vehicle.Luggage.PricePerExtra.StringFixed(2)), lug.Amount)
		}
		a.checkLuggage(lug)
	}

	sur := TimeSurcharges(trip.Date, trip.Time, a.in.Surcharges)
	if !sur.Parsed {
		a.trace(StageSurcharge, "date or time unreadable, surcharges skipped")
	}
	for _, line := range sur.Lines {
		a.add(StageSurcharge, line.Label, line.Amount)
	}

	if pkg == nil && a.b.Subtotal.LessThan(tariff.MinPrice) {
		a.add(StageMinimum, LabelMinimumAdjustment, tariff.MinPrice.Sub(a.b.Subtotal))
	}

	a.b.Total = a.b.Subtotal
	a.trace(StageFinalize, "total "+a.b.Total.StringFixed(2)+" "+a.b.Currency)
}

func (a *assembler) priceDistance(distanceKm float64, tariff Tariff, base decimal.Decimal) {
	if math.IsNaN(distanceKm) || math.IsInf(distanceKm, 0) || distanceKm < 0 {
		a.trace(StageDistance, "invalid distance treated as 0 km")
	}
	if base.IsPositive() {
		a.add(StageDistance, LabelBaseFare, base)
	}
	res := DistanceCharge(distanceKm, tariff)
	a.b.UsedMinimumDistanceFloor = res.UsedThresholdFloor
	label := fmt.Sprintf("Distance (%s km)", kilometres(distanceKm).StringFixed(2))
	if res.UsedThresholdFloor {
		label = fmt.Sprintf("Minimum distance fare (under %s km)", tariff.KmThreshold.String())
	}
	a.add(StageDistance, label, res.Amount)
}

func (a *assembler) checkLuggage(lug LuggageResult) {
	info := lug.Info
	a.b.Luggage = &info
	if info.ExceedsMax {
		a.b.Error = ErrLuggageCapacityExceeded
		a.trace(StageLuggage, fmt.Sprintf("%d bags requested, capacity %d", info.Total, info.Max))
	}
}

func (a *assembler) add(stage Stage, label string, amount decimal.Decimal) {
	amount = amount.Round(2)
	a.b.Lines = append(a.b.Lines, LineItem{Label: label, Amount: amount})
	a.b.Subtotal = a.b.Subtotal.Add(amount)
	a.trace(stage, label+" "+amount.StringFixed(2))
}

func (a *assembler) fail(stage Stage, kind ErrorKind, detail string) {
	a.b.Error = kind
	a.b.Lines = []LineItem{}
	a.b.Subtotal = decimal.Zero
	a.b.Total = decimal.Zero
	a.trace(stage, string(kind)+": "+detail)
}

func (a *assembler) trace(stage Stage, detail string) {
	a.b.Trace = append(a.b.Trace, TraceEntry{Stage: stage, Detail: detail})
}

// checkVehicle returns why the profile cannot be priced, or "" when it can.
func checkVehicle(v VehicleProfile) string {
	if v.Tariff == nil {
		return "tariff missing"
	}
	t := v.Tariff
	if t.MinPrice.IsNegative() || t.KmThreshold.IsNegative() || t.PricePerKm.IsNegative() {
		return "negative tariff field"
	}
	l := v.Luggage
	if l.IncludedFree < 0 || l.MaxCapacity < l.IncludedFree {
		return fmt.Sprintf("luggage policy requires max >= included >= 0, got max=%d included=%d", l.MaxCapacity, l.IncludedFree)
	}
	if l.PricePerExtra.IsNegative() {
		return "negative luggage price"
	}
	return ""
}
