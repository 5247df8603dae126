package merchant

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"ridefare/internal/modules/pricing"
	"ridefare/internal/types"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Normalize validates raw documents and converts them to the engine's shape.
// Every fallback between legacy field spellings is resolved here. Only the
// merchant and vehicle documents are required to be valid; a zone, package or
// surcharge that fails is left out, and listed in Skipped when it was enabled.
func Normalize(raw RawConfig) (Config, error) {
	if err := validate.Struct(raw); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	cfg := Config{
		MerchantID: raw.MerchantID,
		Currency:   strings.ToUpper(raw.Merchant.Currency),
		Vehicles:   make(map[string]pricing.VehicleProfile, len(raw.Vehicles)),
	}
	for _, v := range raw.Vehicles {
		cfg.Vehicles[v.ID] = normalizeVehicle(v)
	}
	for _, z := range raw.Zones {
		zone, err := normalizeZone(z)
		if err != nil {
			cfg.skip("zone", z.ID, z.Enabled, err)
			continue
		}
		cfg.Zones = append(cfg.Zones, zone)
	}
	for _, p := range raw.Packages {
		pkg, err := normalizePackage(p)
		if err != nil {
			cfg.skip("package", p.ID, p.Enabled, err)
			continue
		}
		cfg.Packages = append(cfg.Packages, pkg)
	}
	for _, s := range raw.Surcharges {
		sur, err := normalizeSurcharge(s)
		if err != nil {
			cfg.skip("surcharge", s.ID, s.Enabled, err)
			continue
		}
		cfg.Surcharges = append(cfg.Surcharges, sur)
	}
	return cfg, nil
}

// skip records a dropped entry. Disabled entries never price anything, so
// dropping them is silent.
func (c *Config) skip(kind, id string, enabled bool, err error) {
	if !enabled {
		return
	}
	c.Skipped = append(c.Skipped, fmt.Sprintf("%s %q: %v", kind, id, err))
}

func invalid(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
}

func normalizeVehicle(v VehicleDoc) pricing.VehicleProfile {
	maxCapacity := v.Luggage.IncludedFree
	switch {
	case v.Luggage.MaxCapacity != nil:
		maxCapacity = *v.Luggage.MaxCapacity
	case v.Luggage.Max != nil:
		maxCapacity = *v.Luggage.Max
	}

	profile := pricing.VehicleProfile{
		ID:            v.ID,
		Name:          v.Name,
		MaxPassengers: v.MaxPassengers,
		Luggage: pricing.LuggagePolicy{
			IncludedFree:  v.Luggage.IncludedFree,
			MaxCapacity:   maxCapacity,
			PricePerExtra: decimal.NewFromFloat(v.Luggage.PricePerExtra),
		},
	}
	// Incomplete tariffs stay nil so the engine reports InvalidVehicleConfig.
	if v.MinPrice != nil && v.KmThreshold != nil && v.PricePerKm != nil {
		profile.Tariff = &pricing.Tariff{
			MinPrice:    decimal.NewFromFloat(*v.MinPrice),
			KmThreshold: decimal.NewFromFloat(*v.KmThreshold),
			PricePerKm:  decimal.NewFromFloat(*v.PricePerKm),
		}
	}
	return profile
}

func normalizeZone(z ZoneDoc) (pricing.ServiceZone, error) {
	if err := validate.Struct(z); err != nil {
		return pricing.ServiceZone{}, invalid(err)
	}
	zone := pricing.ServiceZone{ID: z.ID, Name: z.Name, Enabled: z.Enabled}

	switch z.Type {
	case "radius":
		center, err := z.Center.GeoPoint()
		if err != nil {
			return pricing.ServiceZone{}, invalid(err)
		}
		zone.Geography = pricing.Radius{Center: center, RadiusKm: z.RadiusKm}
	case "region":
		b := z.BoundingBox
		zone.Geography = pricing.Region{Box: types.BoundingBox{MinLat: b.MinLat, MinLon: b.MinLon, MaxLat: b.MaxLat, MaxLon: b.MaxLon}}
	}

	for _, ov := range z.VehicleOverrides {
		zone.VehicleOverrides = append(zone.VehicleOverrides, pricing.ZoneVehiclePricing{
			VehicleID: ov.VehicleID,
			Enabled:   ov.Enabled,
			Custom:    customTariff(ov),
		})
	}
	return zone, nil
}

func customTariff(ov ZoneVehicleDoc) *pricing.CustomTariff {
	if ov.UseDefault {
		return nil
	}
	if ov.MinPrice == nil && ov.KmThreshold == nil && ov.PricePerKm == nil && ov.BasePrice == nil {
		return nil
	}
	return &pricing.CustomTariff{
		MinPrice:    nullDecimal(ov.MinPrice),
		KmThreshold: nullDecimal(ov.KmThreshold),
		PricePerKm:  nullDecimal(ov.PricePerKm),
		BasePrice:   nullDecimal(ov.BasePrice),
	}
}

func nullDecimal(f *float64) decimal.NullDecimal {
	if f == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.NewFromFloat(*f))
}

// GeoPoint prefers lon over the legacy lng spelling.
func (p *PointDoc) GeoPoint() (types.GeoPoint, error) {
	if p == nil {
		return types.GeoPoint{}, fmt.Errorf("point missing")
	}
	var lon float64
	switch {
	case p.Lon != nil:
		lon = *p.Lon
	case p.Lng != nil:
		lon = *p.Lng
	default:
		return types.GeoPoint{}, fmt.Errorf("point %q has no longitude", p.Name)
	}
	gp := types.GeoPoint{Lat: p.Lat, Lon: lon}
	if !gp.Valid() {
		return types.GeoPoint{}, fmt.Errorf("point %s out of range", gp)
	}
	return gp, nil
}

func normalizePackage(p PackageDoc) (pricing.Package, error) {
	if err := validate.Struct(p); err != nil {
		return pricing.Package{}, invalid(err)
	}
	price, ok := p.price()
	if !ok {
		return pricing.Package{}, fmt.Errorf("%w: no price", ErrInvalidDocument)
	}
	dep, err := parseMatchers(p.DepartureZones)
	if err != nil {
		return pricing.Package{}, fmt.Errorf("%w: departure: %v", ErrInvalidDocument, err)
	}
	arr, err := parseMatchers(p.ArrivalZones)
	if err != nil {
		return pricing.Package{}, fmt.Errorf("%w: arrival: %v", ErrInvalidDocument, err)
	}
	return pricing.Package{
		ID:             p.ID,
		Name:           p.Name,
		Price:          decimal.NewFromFloat(price),
		Enabled:        p.Enabled,
		DepartureZones: dep,
		ArrivalZones:   arr,
		VehicleTypes:   p.VehicleTypes,
	}, nil
}

// price resolves price, fixedPrice, pricing.price then pricing.amount.
func (p PackageDoc) price() (float64, bool) {
	candidates := []*float64{p.Price, p.FixedPrice}
	if p.Pricing != nil {
		candidates = append(candidates, p.Pricing.Price, p.Pricing.Amount)
	}
	for _, c := range candidates {
		if c != nil {
			return *c, true
		}
	}
	return 0, false
}

func parseMatchers(entries []any) ([]pricing.ZoneMatcher, error) {
	out := make([]pricing.ZoneMatcher, 0, len(entries))
	for _, e := range entries {
		m, err := parseMatcher(e)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func parseMatcher(e any) (pricing.ZoneMatcher, error) {
	switch v := e.(type) {
	case string:
		return pricing.ParseZoneMatcher(v)
	case map[string]any:
		return parsePointMatcher(v)
	default:
		if n, ok := toFloat(v); ok && n == float64(int64(n)) && n >= 0 {
			return pricing.ParseZoneMatcher(padPostal(strconv.FormatInt(int64(n), 10)))
		}
		return nil, fmt.Errorf("%w: unsupported entry %v", pricing.ErrInvalidZoneMatcher, e)
	}
}

// padPostal restores the leading zero lost when a code was stored as a number.
func padPostal(s string) string {
	if len(s) == 1 || len(s) == 4 {
		return "0" + s
	}
	return s
}

func parsePointMatcher(m map[string]any) (pricing.ZoneMatcher, error) {
	lat, ok := toFloat(m["lat"])
	if !ok {
		return nil, fmt.Errorf("%w: point without lat", pricing.ErrInvalidZoneMatcher)
	}
	lon, ok := toFloat(m["lon"])
	if !ok {
		if lon, ok = toFloat(m["lng"]); !ok {
			return nil, fmt.Errorf("%w: point without lon", pricing.ErrInvalidZoneMatcher)
		}
	}
	name, _ := m["name"].(string)
	point := types.GeoPoint{Lat: lat, Lon: lon}
	if !point.Valid() {
		return nil, fmt.Errorf("%w: point %s out of range", pricing.ErrInvalidZoneMatcher, point)
	}
	return pricing.PointMatcher{Name: name, Point: point}, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func normalizeSurcharge(s SurchargeDoc) (pricing.Surcharge, error) {
	if err := validate.Struct(s); err != nil {
		return pricing.Surcharge{}, invalid(err)
	}
	sur := pricing.Surcharge{
		ID:      s.ID,
		Name:    s.Name,
		Enabled: s.Enabled,
		Amount:  decimal.NewFromFloat(s.Amount),
	}
	switch s.Type {
	case "hourly":
		sur.Window = pricing.Hourly{StartHour: s.StartHour, EndHour: s.EndHour}
	case "weekly":
		days := make([]time.Weekday, 0, len(s.Days))
		for _, d := range s.Days {
			days = append(days, time.Weekday(d))
		}
		sur.Window = pricing.Weekly{Days: days}
	}
	return sur, nil
}
