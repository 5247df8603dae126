// README: Quote log backed by PostgreSQL; the breakdown is kept as JSONB.
package quote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ridefare/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, q *Quote) error {
	breakdown, err := json.Marshal(q.Breakdown)
	if err != nil {
		return fmt.Errorf("encode breakdown: %w", err)
	}
	depLat, depLon := coordColumns(q.Trip.Departure.Coords)
	arrLat, arrLon := coordColumns(q.Trip.Arrival.Coords)
	_, err = s.db.Exec(ctx, `
		INSERT INTO quotes (
			id, merchant_id, vehicle_id, distance_km,
			trip_date, trip_time, departure, arrival, luggage,
			departure_lat, departure_lon, arrival_lat, arrival_lon,
			total, currency, error_kind, breakdown, requested_by, created_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8, $9,
			$10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19
		)`,
		string(q.ID), q.MerchantID, q.VehicleID, q.Trip.DistanceKm,
		q.Trip.Date, q.Trip.Time, q.Trip.Departure.Address, q.Trip.Arrival.Address, q.Trip.LuggageCount,
		depLat, depLon, arrLat, arrLon,
		q.Breakdown.Total.InexactFloat64(), q.Breakdown.Currency, nullIfEmpty(string(q.Breakdown.Error)),
		breakdown, nullIfEmpty(q.RequestedBy), q.CreatedAt,
	)
	return err
}

const selectQuote = `
	SELECT id::text, merchant_id, vehicle_id, distance_km,
	       trip_date, trip_time, departure, arrival, luggage,
	       departure_lat, departure_lon, arrival_lat, arrival_lon,
	       breakdown, requested_by, created_at
	FROM quotes`

func (s *Store) Get(ctx context.Context, id types.ID) (*Quote, error) {
	row := s.db.QueryRow(ctx, selectQuote+` WHERE id = $1`, string(id))
	q, err := scanQuote(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return q, nil
}

// ListByMerchant returns the most recent quotes first.
func (s *Store) ListByMerchant(ctx context.Context, merchantID string, limit int) ([]*Quote, error) {
	rows, err := s.db.Query(ctx, selectQuote+` WHERE merchant_id = $1 ORDER BY created_at DESC LIMIT $2`, merchantID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func scanQuote(row pgx.Row) (*Quote, error) {
	var q Quote
	var id string
	var breakdown []byte
	var requestedBy *string
	var depLat, depLon, arrLat, arrLon *float64

	err := row.Scan(
		&id, &q.MerchantID, &q.VehicleID, &q.Trip.DistanceKm,
		&q.Trip.Date, &q.Trip.Time, &q.Trip.Departure.Address, &q.Trip.Arrival.Address, &q.Trip.LuggageCount,
		&depLat, &depLon, &arrLat, &arrLon,
		&breakdown, &requestedBy, &q.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(breakdown, &q.Breakdown); err != nil {
		return nil, fmt.Errorf("decode breakdown of quote %s: %w", id, err)
	}
	q.ID = types.ID(id)
	q.Trip.VehicleID = q.VehicleID
	q.Trip.Departure.Coords = pointFromColumns(depLat, depLon)
	q.Trip.Arrival.Coords = pointFromColumns(arrLat, arrLon)
	if requestedBy != nil {
		q.RequestedBy = *requestedBy
	}
	return &q, nil
}

// coordColumns splits a point into nullable lat/lon columns.
func coordColumns(p *types.GeoPoint) (lat, lon *float64) {
	if p == nil {
		return nil, nil
	}
	return &p.Lat, &p.Lon
}

func pointFromColumns(lat, lon *float64) *types.GeoPoint {
	if lat == nil || lon == nil {
		return nil
	}
	return &types.GeoPoint{Lat: *lat, Lon: *lon}
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
