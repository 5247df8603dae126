// README: Quote service; resolves merchant config, routing distance and coordinates, then runs the pricing engine.
package quote

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ridefare/internal/maps"
	"ridefare/internal/modules/merchant"
	"ridefare/internal/modules/pricing"
	"ridefare/internal/types"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"

	defaultListLimit = 20
	maxListLimit     = 100
)

type QuoteStore interface {
	Create(ctx context.Context, q *Quote) error
	Get(ctx context.Context, id types.ID) (*Quote, error)
	ListByMerchant(ctx context.Context, merchantID string, limit int) ([]*Quote, error)
}

type MerchantConfigs interface {
	Vehicle(ctx context.Context, merchantID, vehicleID string) (merchant.Config, pricing.VehicleProfile, error)
}

// Service prices trips. Distances and geocoder may be nil when no Maps key
// is configured; callers must then send distanceKm themselves.
type Service struct {
	store     QuoteStore
	merchants MerchantConfigs
	distances maps.DistanceProvider
	geocoder  maps.Geocoder
	currency  string
	loc       *time.Location
	now       func() time.Time
	log       *zap.Logger
}

type Deps struct {
	Store     QuoteStore
	Merchants MerchantConfigs
	Distances maps.DistanceProvider
	Geocoder  maps.Geocoder
	Currency  string
	Location  *time.Location
	Log       *zap.Logger
}

func NewService(d Deps) *Service {
	loc := d.Location
	if loc == nil {
		loc = time.UTC
	}
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:     d.Store,
		merchants: d.Merchants,
		distances: d.Distances,
		geocoder:  d.Geocoder,
		currency:  d.Currency,
		loc:       loc,
		now:       time.Now,
		log:       log,
	}
}

type PreviewCommand struct {
	MerchantID   string
	VehicleID    string
	DistanceKm   *float64
	Date         string
	Time         string
	Departure    pricing.Endpoint
	Arrival      pricing.Endpoint
	LuggageCount int
	RequestedBy  string
}

// Preview prices a trip against the merchant's stored configuration and
// records the result in the quote log. Engine error kinds come back inside
// the quote; only infrastructure and input problems are returned as errors.
func (s *Service) Preview(ctx context.Context, cmd PreviewCommand) (*Quote, error) {
	if cmd.MerchantID == "" || cmd.VehicleID == "" {
		return nil, fmt.Errorf("%w: merchant and vehicle are required", ErrBadRequest)
	}
	if cmd.LuggageCount < 0 {
		return nil, fmt.Errorf("%w: luggage count must not be negative", ErrBadRequest)
	}
	if cmd.DistanceKm != nil && (*cmd.DistanceKm < 0 || math.IsNaN(*cmd.DistanceKm) || math.IsInf(*cmd.DistanceKm, 0)) {
		return nil, fmt.Errorf("%w: invalid distance", ErrBadRequest)
	}

	cfg, vehicle, err := s.merchants.Vehicle(ctx, cmd.MerchantID, cmd.VehicleID)
	if err != nil {
		return nil, err
	}

	now := s.now().In(s.loc)
	trip := pricing.TripRequest{
		Date:         cmd.Date,
		Time:         cmd.Time,
		Departure:    s.locate(ctx, cmd.Departure),
		Arrival:      s.locate(ctx, cmd.Arrival),
		LuggageCount: cmd.LuggageCount,
		VehicleID:    cmd.VehicleID,
	}
	if trip.Date == "" {
		trip.Date = now.Format(dateLayout)
	}
	if trip.Time == "" {
		trip.Time = now.Format(timeLayout)
	}
	if trip.DistanceKm, err = s.distance(ctx, cmd.DistanceKm, trip); err != nil {
		return nil, err
	}

	currency := cfg.Currency
	if currency == "" {
		currency = s.currency
	}
	breakdown := pricing.Compute(pricing.Input{
		Trip:       trip,
		Vehicle:    vehicle,
		Zones:      cfg.Zones,
		Packages:   cfg.Packages,
		Surcharges: cfg.Surcharges,
		Currency:   currency,
		Skipped:    cfg.Skipped,
	})

	q := &Quote{
		ID:          types.ID(uuid.NewString()),
		MerchantID:  cmd.MerchantID,
		VehicleID:   cmd.VehicleID,
		Trip:        trip,
		Breakdown:   breakdown,
		RequestedBy: cmd.RequestedBy,
		CreatedAt:   now.UTC(),
	}
	s.logBreakdown("quote priced", breakdown, zap.String("quote_id", string(q.ID)), zap.String("merchant_id", q.MerchantID), zap.String("vehicle_id", q.VehicleID))

	if err := s.store.Create(ctx, q); err != nil {
		return nil, fmt.Errorf("store quote: %w", err)
	}
	return q, nil
}

// locate fills missing coordinates from the address. Geocoding failures
// leave the endpoint as is; zone checks then do not apply.
func (s *Service) locate(ctx context.Context, e pricing.Endpoint) pricing.Endpoint {
	if e.Coords != nil || s.geocoder == nil || e.Address == "" {
		return e
	}
	p, err := s.geocoder.Locate(ctx, e.Address)
	if err != nil {
		s.log.Warn("geocoding failed", zap.String("address", e.Address), zap.Error(err))
		return e
	}
	e.Coords = &p
	return e
}

func (s *Service) distance(ctx context.Context, given *float64, trip pricing.TripRequest) (float64, error) {
	if given != nil {
		return *given, nil
	}
	if s.distances == nil || trip.Departure.Coords == nil || trip.Arrival.Coords == nil {
		return 0, fmt.Errorf("%w: distanceKm is required when the route cannot be resolved", ErrBadRequest)
	}
	km, err := s.distances.DistanceKm(ctx, *trip.Departure.Coords, *trip.Arrival.Coords)
	if errors.Is(err, maps.ErrNoRoute) {
		return 0, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRoutingUnavailable, err)
	}
	return km, nil
}

// Compute prices a self-contained request without touching any store.
func (s *Service) Compute(req ComputeRequest) (pricing.PriceBreakdown, error) {
	in, err := req.toInput()
	if err != nil {
		return pricing.PriceBreakdown{}, err
	}
	if in.Currency == "" {
		in.Currency = s.currency
	}
	if len(in.Skipped) > 0 {
		s.log.Warn("preview config entries skipped", zap.Strings("entries", in.Skipped))
	}
	breakdown := pricing.Compute(in)
	s.logBreakdown("preview priced", breakdown, zap.String("vehicle_id", in.Vehicle.ID))
	return breakdown, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Quote, error) {
	if _, err := uuid.Parse(string(id)); err != nil {
		return nil, ErrNotFound
	}
	return s.store.Get(ctx, id)
}

func (s *Service) ListByMerchant(ctx context.Context, merchantID string, limit int) ([]*Quote, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.store.ListByMerchant(ctx, merchantID, min(limit, maxListLimit))
}

func (s *Service) logBreakdown(msg string, b pricing.PriceBreakdown, fields ...zap.Field) {
	fields = append(fields,
		zap.Stringer("total", types.NewMoney(b.Total, b.Currency)),
		zap.Int("lines", len(b.Lines)),
	)
	if b.AppliedPackage != nil {
		fields = append(fields, zap.String("package_id", b.AppliedPackage.ID))
	}
	if b.AppliedZone != nil {
		fields = append(fields, zap.String("zone_id", b.AppliedZone.ID))
	}
	if b.Error != "" {
		fields = append(fields, zap.String("error_kind", string(b.Error)))
		s.log.Warn(msg, fields...)
		return
	}
	s.log.Info(msg, fields...)
}
