// README: Merchant configuration service; loads, normalizes and invalidates per-merchant pricing config.
package merchant

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"ridefare/internal/modules/pricing"
)

type invalidator interface {
	Invalidate(ctx context.Context, merchantID string) error
}

type Service struct {
	source Source
	log    *zap.Logger
}

func NewService(source Source, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{source: source, log: log}
}

// Config returns the normalized configuration of an enabled merchant.
func (s *Service) Config(ctx context.Context, merchantID string) (Config, error) {
	if merchantID == "" {
		return Config{}, ErrNotFound
	}
	raw, err := s.source.Load(ctx, merchantID)
	if err != nil {
		return Config{}, err
	}
	if !raw.Merchant.Enabled {
		return Config{}, ErrNotFound
	}
	cfg, err := Normalize(raw)
	if err != nil {
		s.log.Error("merchant config rejected", zap.String("merchant_id", merchantID), zap.Error(err))
		return Config{}, err
	}
	for _, note := range cfg.Skipped {
		s.log.Warn("merchant config entry skipped", zap.String("merchant_id", merchantID), zap.String("entry", note))
	}
	return cfg, nil
}

// Vehicle returns the merchant configuration together with one of its vehicles.
func (s *Service) Vehicle(ctx context.Context, merchantID, vehicleID string) (Config, pricing.VehicleProfile, error) {
	cfg, err := s.Config(ctx, merchantID)
	if err != nil {
		return Config{}, pricing.VehicleProfile{}, err
	}
	v, ok := cfg.Vehicle(vehicleID)
	if !ok {
		return Config{}, pricing.VehicleProfile{}, fmt.Errorf("%w: %s", ErrVehicleNotFound, vehicleID)
	}
	return cfg, v, nil
}

// Invalidate is a no-op for uncached sources.
func (s *Service) Invalidate(ctx context.Context, merchantID string) error {
	inv, ok := s.source.(invalidator)
	if !ok {
		return nil
	}
	return inv.Invalidate(ctx, merchantID)
}
