// README: Benchmark cases; environment checks, pricing scenarios against /api/quotes/compute and a load run.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"ridefare/internal/infra"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client
}

type Result struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name  string
	Focus string
	Run   func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))

	for _, tc := range tests {
		res := tc.Run(ctx, r)
		res.Name = tc.Name
		results = append(results, res)
		fmt.Printf("%-7s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}

	return results
}

func (r *Runner) cases() []TestCase {
	base := r.cfg.BaseURL
	compute := base + "/api/quotes/compute"
	return []TestCase{
		{
			Name:  "Env: Postgres connect",
			Focus: "quote log database reachable",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: "FAIL", Note: "db not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.db.Ping(ctx); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name:  "Env: Redis connect",
			Focus: "config and distance cache reachable",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: "FAIL", Note: "redis not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.redis.Ping(ctx).Err(); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name:  "Migration: apply (optional)",
			Focus: "embedded migrations run to head",
			Run: func(_ context.Context, r *Runner) Result {
				if !r.cfg.ApplyMigration {
					return Result{Status: "SKIP", Note: "apply-migration=false"}
				}
				if err := infra.Migrate(r.cfg.DSN, zap.NewNop()); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name:  "Migration: quotes table exists",
			Focus: "quote log schema present",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: "FAIL", Note: "db not configured"}
				}
				var exists bool
				err := r.db.QueryRow(ctx,
					"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)",
					"quotes",
				).Scan(&exists)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				if !exists {
					return Result{Status: "FAIL", Note: "missing table: quotes"}
				}
				return Result{Status: "PASS"}
			},
		},
		httpCaseMethod("API: health", http.MethodGet, base+"/health", nil, []int{200}, nil),
		httpCase("API: compute without token -> 401", compute, nil, []int{401}, nil).withoutToken(),

		computeCase("Pricing: distance and luggage", compute, distanceTrip(15, 3), "32"),
		computeCase("Pricing: minimum distance fare", compute, distanceTrip(3, 0), "15"),
		computeCase("Pricing: airport package", compute, airportTrip("14:00"), "50"),
		computeCase("Pricing: airport package at night", compute, airportTrip("23:00"), "65"),
		httpCase("Pricing: malformed body -> 400", compute, "not an object", []int{400}, nil),
		{
			Name:  "Pricing: deterministic",
			Focus: "same request, same breakdown",
			Run: func(ctx context.Context, r *Runner) Result {
				first, _, err := r.postJSON(ctx, compute, airportTrip("23:00"))
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				second, _, err := r.postJSON(ctx, compute, airportTrip("23:00"))
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				if !bytes.Equal(first, second) {
					return Result{Status: "FAIL", Note: "responses differ"}
				}
				return Result{Status: "PASS"}
			},
		},

		{
			Name:  "Perf: compute",
			Focus: "sustained stateless pricing",
			Run: func(ctx context.Context, r *Runner) Result {
				return perfLoad(ctx, r, compute, distanceTrip(15, 3))
			},
		},
	}
}

func sedan() map[string]any {
	return map[string]any{
		"id":          "sedan",
		"minPrice":    15,
		"kmThreshold": 5,
		"pricePerKm":  1.8,
		"luggage":     map[string]any{"includedFree": 2, "max": 4, "pricePerExtra": 5},
	}
}

func distanceTrip(km float64, bags int) map[string]any {
	return map[string]any{
		"distanceKm":       km,
		"vehicleConfig":    sedan(),
		"date":             "2025-03-12",
		"time":             "14:00",
		"totalLuggage":     bags,
		"departureAddress": "10 Rue de Rivoli, 75004 Paris",
		"arrivalAddress":   "1 Avenue des Champs-Élysées, 75008 Paris",
	}
}

func airportTrip(at string) map[string]any {
	van := sedan()
	van["id"] = "van"
	return map[string]any{
		"distanceKm":       34,
		"vehicleConfig":    van,
		"date":             "2025-03-12",
		"time":             at,
		"totalLuggage":     2,
		"departureAddress": "Aéroport Charles de Gaulle, 95700 Roissy-en-France",
		"departureCoords":  map[string]any{"lat": 49.0050, "lon": 2.5500},
		"arrivalAddress":   "12 Rue de Vaugirard, 75015 Paris",
		"packages": []map[string]any{{
			"id":             "cdg-paris",
			"name":           "CDG to Paris",
			"enabled":        true,
			"price":          50,
			"departureZones": []any{map[string]any{"name": "CDG", "lat": 49.0097, "lon": 2.5479}},
			"arrivalZones":   []any{"75"},
			"vehicleTypes":   []string{"van"},
		}},
		"surcharges": []map[string]any{{
			"id":        "night",
			"name":      "Night",
			"enabled":   true,
			"type":      "hourly",
			"startHour": 22,
			"endHour":   6,
			"amount":    15,
		}},
	}
}

// computeCase posts body and checks the breakdown total.
func computeCase(name, url string, body any, wantTotal string) TestCase {
	return TestCase{
		Name:  name,
		Focus: "pricing",
		Run: func(ctx context.Context, r *Runner) Result {
			start := time.Now()
			raw, status, err := r.postJSON(ctx, url, body)
			latency := time.Since(start)
			if err != nil {
				return Result{Status: "FAIL", Note: err.Error()}
			}
			if status != http.StatusOK {
				return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("status=%d", status)}
			}
			var got struct {
				Total string `json:"total"`
			}
			if err := json.Unmarshal(raw, &got); err != nil {
				return Result{Status: "FAIL", Latency: latency, Note: err.Error()}
			}
			if got.Total != wantTotal {
				return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("total=%s want %s", got.Total, wantTotal)}
			}
			return Result{Status: "PASS", Latency: latency, Note: "total=" + got.Total}
		},
	}
}

// withoutToken sends the case's requests with no Authorization header.
func (tc TestCase) withoutToken() TestCase {
	run := tc.Run
	tc.Run = func(ctx context.Context, r *Runner) Result {
		anon := *r
		anon.cfg.Token = ""
		return run(ctx, &anon)
	}
	return tc
}

func httpCase(name, url string, body any, okStatuses, pendingStatuses []int) TestCase {
	return httpCaseMethod(name, http.MethodPost, url, body, okStatuses, pendingStatuses)
}

func httpCaseMethod(name, method, url string, body any, okStatuses, pendingStatuses []int) TestCase {
	return TestCase{
		Name:  name,
		Focus: "HTTP API",
		Run: func(ctx context.Context, r *Runner) Result {
			start := time.Now()
			_, status, err := r.do(ctx, method, url, body)
			if err != nil {
				return Result{Status: "FAIL", Note: err.Error()}
			}
			latency := time.Since(start)

			note := fmt.Sprintf("status=%d", status)
			if slices.Contains(okStatuses, status) {
				return Result{Status: "PASS", Latency: latency, Note: note}
			}
			if slices.Contains(pendingStatuses, status) {
				return Result{Status: "PENDING", Latency: latency, Note: note}
			}
			return Result{Status: "FAIL", Latency: latency, Note: note}
		},
	}
}

func (r *Runner) postJSON(ctx context.Context, url string, body any) ([]byte, int, error) {
	return r.do(ctx, http.MethodPost, url, body)
}

func (r *Runner) do(ctx context.Context, method, url string, body any) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, 0, err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if r.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+r.cfg.Token)
	}
	resp, err := r.httpc.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	return raw, resp.StatusCode, err
}

func perfLoad(ctx context.Context, r *Runner, url string, payload any) Result {
	end := time.Now().Add(r.cfg.Duration)
	var count, errCount atomic.Int64
	wg := sync.WaitGroup{}

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) && ctx.Err() == nil {
				_, status, err := r.postJSON(ctx, url, payload)
				if err != nil || status != http.StatusOK {
					errCount.Add(1)
					continue
				}
				count.Add(1)
			}
		}()
	}
	wg.Wait()

	if count.Load() == 0 {
		return Result{Status: "FAIL", Note: fmt.Sprintf("no requests completed, errors=%d", errCount.Load())}
	}
	rps := float64(count.Load()) / r.cfg.Duration.Seconds()
	return Result{Status: "PASS", Note: fmt.Sprintf("rps=%.1f errors=%d", rps, errCount.Load())}
}
