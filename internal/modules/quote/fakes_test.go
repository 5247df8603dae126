package quote

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"ridefare/internal/modules/merchant"
	"ridefare/internal/modules/pricing"
	"ridefare/internal/types"
)

type memStore struct {
	mu     sync.Mutex
	quotes map[types.ID]*Quote
	err    error
}

func newMemStore() *memStore { return &memStore{quotes: map[types.ID]*Quote{}} }

func (m *memStore) Create(_ context.Context, q *Quote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	cp := *q
	m.quotes[q.ID] = &cp
	return nil
}

func (m *memStore) Get(_ context.Context, id types.ID) (*Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quotes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return q, nil
}

func (m *memStore) ListByMerchant(_ context.Context, merchantID string, limit int) ([]*Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Quote
	for _, q := range m.quotes {
		if q.MerchantID == merchantID {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type staticMerchants struct {
	cfg merchant.Config
}

func (s staticMerchants) Vehicle(_ context.Context, merchantID, vehicleID string) (merchant.Config, pricing.VehicleProfile, error) {
	if merchantID != s.cfg.MerchantID {
		return merchant.Config{}, pricing.VehicleProfile{}, merchant.ErrNotFound
	}
	v, ok := s.cfg.Vehicle(vehicleID)
	if !ok {
		return merchant.Config{}, pricing.VehicleProfile{}, merchant.ErrVehicleNotFound
	}
	return s.cfg, v, nil
}

type fixedDistance struct {
	km    float64
	err   error
	calls int
}

func (f *fixedDistance) DistanceKm(context.Context, types.GeoPoint, types.GeoPoint) (float64, error) {
	f.calls++
	return f.km, f.err
}

type addressBook map[string]types.GeoPoint

func (a addressBook) Locate(_ context.Context, address string) (types.GeoPoint, error) {
	p, ok := a[address]
	if !ok {
		return types.GeoPoint{}, context.DeadlineExceeded
	}
	return p, nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
