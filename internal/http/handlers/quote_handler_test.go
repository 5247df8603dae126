// README: Handler tests for quote endpoints and error mapping.
package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridefare/internal/http/handlers"
	httpmiddleware "ridefare/internal/http/middleware"
	"ridefare/internal/infra"
	"ridefare/internal/modules/merchant"
	"ridefare/internal/modules/pricing"
	"ridefare/internal/modules/quote"
	"ridefare/internal/types"
)

type stubTokenVerifier struct {
	token *infra.FirebaseToken
}

func (s *stubTokenVerifier) VerifyIDToken(_ context.Context, _ string) (*infra.FirebaseToken, error) {
	return s.token, nil
}

type stubQuotes struct {
	breakdown  pricing.PriceBreakdown
	quote      *quote.Quote
	err        error
	lastCmd    quote.PreviewCommand
	lastLimit  int
	computeReq quote.ComputeRequest
}

func (s *stubQuotes) Compute(req quote.ComputeRequest) (pricing.PriceBreakdown, error) {
	s.computeReq = req
	return s.breakdown, s.err
}

func (s *stubQuotes) Preview(_ context.Context, cmd quote.PreviewCommand) (*quote.Quote, error) {
	s.lastCmd = cmd
	return s.quote, s.err
}

func (s *stubQuotes) Get(_ context.Context, _ types.ID) (*quote.Quote, error) {
	return s.quote, s.err
}

func (s *stubQuotes) ListByMerchant(_ context.Context, _ string, limit int) ([]*quote.Quote, error) {
	s.lastLimit = limit
	if s.quote == nil {
		return nil, s.err
	}
	return []*quote.Quote{s.quote}, s.err
}

func makeVerifier(uid, role, merchantID string) *stubTokenVerifier {
	claims := map[string]interface{}{}
	if role != "" {
		claims["role"] = role
	}
	if merchantID != "" {
		claims["merchant_id"] = merchantID
	}
	return &stubTokenVerifier{token: &infra.FirebaseToken{UID: uid, Claims: claims}}
}

func buildTestRouter(svc handlers.QuoteService, verifier infra.TokenVerifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(httpmiddleware.Auth(verifier))
	h := handlers.NewQuoteHandler(svc)
	r.POST("/api/quotes/compute", h.Compute)
	r.GET("/api/quotes/:id", h.Get)
	r.POST("/api/merchants/:merchantID/quotes", h.Create)
	r.GET("/api/merchants/:merchantID/quotes", httpmiddleware.RequireMerchantAccess(), h.List)
	return r
}

func doRequest(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sampleBreakdown() pricing.PriceBreakdown {
	return pricing.PriceBreakdown{
		Lines: []pricing.LineItem{
			{Label: "Distance (15.00 km)", Amount: decimal.NewFromInt(27)},
			{Label: "Extra luggage (1 × 5.00)", Amount: decimal.NewFromInt(5)},
		},
		Subtotal: decimal.NewFromInt(32),
		Total:    decimal.NewFromInt(32),
		Currency: "EUR",
		Trace:    []pricing.TraceEntry{},
	}
}

func sampleQuote() *quote.Quote {
	return &quote.Quote{
		ID:          "5b0d3c1e-8a2f-4a53-9d2e-3b4f6f0d9c11",
		MerchantID:  "m1",
		VehicleID:   "sedan",
		Trip:        pricing.TripRequest{DistanceKm: 15, Date: "2025-03-12", Time: "14:00"},
		Breakdown:   sampleBreakdown(),
		RequestedBy: "customer-1",
		CreatedAt:   time.Date(2025, 3, 12, 13, 0, 0, 0, time.UTC),
	}
}

func TestCompute_ReturnsBreakdown(t *testing.T) {
	svc := &stubQuotes{breakdown: sampleBreakdown()}
	r := buildTestRouter(svc, makeVerifier("admin-1", "admin", ""))

	w := doRequest(r, http.MethodPost, "/api/quotes/compute", `{"distanceKm": 15, "totalLuggage": 3, "vehicleConfig": {"id": "sedan"}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "32", got["total"])
	assert.Equal(t, true, got["bookable"])
	assert.Len(t, got["details"], 2)
	assert.Equal(t, 15.0, svc.computeReq.DistanceKm)
	assert.Equal(t, "sedan", svc.computeReq.VehicleConfig.ID)
}

func TestCompute_ErrorKindMessage(t *testing.T) {
	b := pricing.PriceBreakdown{Lines: []pricing.LineItem{}, Currency: "EUR", Error: pricing.ErrOutOfServiceArea}
	r := buildTestRouter(&stubQuotes{breakdown: b}, makeVerifier("admin-1", "admin", ""))

	w := doRequest(r, http.MethodPost, "/api/quotes/compute", `{}`)
	require.Equal(t, http.StatusOK, w.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "OutOfServiceArea", got["error"])
	assert.Equal(t, false, got["bookable"])
	assert.Equal(t, "address outside service area", got["message"])
}

func TestCompute_InvalidJSON(t *testing.T) {
	r := buildTestRouter(&stubQuotes{}, makeVerifier("admin-1", "admin", ""))
	w := doRequest(r, http.MethodPost, "/api/quotes/compute", `{"distanceKm": "far"`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreate_PassesCaller(t *testing.T) {
	svc := &stubQuotes{quote: sampleQuote()}
	r := buildTestRouter(svc, makeVerifier("customer-1", "", ""))

	w := doRequest(r, http.MethodPost, "/api/merchants/m1/quotes", map[string]any{
		"vehicleId":    "sedan",
		"date":         "2025-03-12",
		"time":         "14:00",
		"departure":    map[string]any{"address": "75001 Paris", "coords": map[string]any{"lat": 48.86, "lon": 2.34}},
		"arrival":      map[string]any{"address": "75011 Paris"},
		"totalLuggage": 3,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	assert.Equal(t, "m1", svc.lastCmd.MerchantID)
	assert.Equal(t, "customer-1", svc.lastCmd.RequestedBy)
	assert.Nil(t, svc.lastCmd.DistanceKm)
	require.NotNil(t, svc.lastCmd.Departure.Coords)
	assert.Equal(t, 3, svc.lastCmd.LuggageCount)

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "5b0d3c1e-8a2f-4a53-9d2e-3b4f6f0d9c11", got["quote_id"])
}

func TestCreate_Validation(t *testing.T) {
	r := buildTestRouter(&stubQuotes{quote: sampleQuote()}, makeVerifier("customer-1", "", ""))

	for _, body := range []string{
		`{}`,
		`{"vehicleId": "sedan", "totalLuggage": -1}`,
		`{"vehicleId": "sedan", "distanceKm": -2}`,
		`{"vehicleId": "sedan", "date": "12/03/2025"}`,
	} {
		w := doRequest(r, http.MethodPost, "/api/merchants/m1/quotes", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestCreate_ErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: distanceKm is required", quote.ErrBadRequest), http.StatusBadRequest},
		{merchant.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: limo", merchant.ErrVehicleNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: zone z1", merchant.ErrInvalidDocument), http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: quota", quote.ErrRoutingUnavailable), http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		r := buildTestRouter(&stubQuotes{err: tt.err}, makeVerifier("customer-1", "", ""))
		w := doRequest(r, http.MethodPost, "/api/merchants/m1/quotes", `{"vehicleId": "sedan"}`)
		assert.Equal(t, tt.want, w.Code, tt.err.Error())
	}
}

func TestGet_Visibility(t *testing.T) {
	tests := []struct {
		name     string
		verifier *stubTokenVerifier
		want     int
	}{
		{"requester", makeVerifier("customer-1", "", ""), http.StatusOK},
		{"merchant staff", makeVerifier("staff", "merchant", "m1"), http.StatusOK},
		{"admin", makeVerifier("root", "admin", ""), http.StatusOK},
		{"other customer", makeVerifier("customer-2", "", ""), http.StatusNotFound},
		{"other merchant", makeVerifier("staff", "merchant", "m9"), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := buildTestRouter(&stubQuotes{quote: sampleQuote()}, tt.verifier)
			w := doRequest(r, http.MethodGet, "/api/quotes/5b0d3c1e-8a2f-4a53-9d2e-3b4f6f0d9c11", nil)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestGet_ReturnsEndpoints(t *testing.T) {
	q := sampleQuote()
	q.Trip.Departure = pricing.Endpoint{Address: "CDG Terminal 2", Coords: &types.GeoPoint{Lat: 49.005, Lon: 2.55}}
	q.Trip.Arrival = pricing.Endpoint{Address: "75015 Paris"}
	r := buildTestRouter(&stubQuotes{quote: q}, makeVerifier("customer-1", "", ""))

	w := doRequest(r, http.MethodGet, "/api/quotes/"+string(q.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got struct {
		Departure struct {
			Address string          `json:"address"`
			Coords  *types.GeoPoint `json:"coords"`
		} `json:"departure"`
		Arrival struct {
			Address string          `json:"address"`
			Coords  *types.GeoPoint `json:"coords"`
		} `json:"arrival"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "CDG Terminal 2", got.Departure.Address)
	require.NotNil(t, got.Departure.Coords)
	assert.Equal(t, types.GeoPoint{Lat: 49.005, Lon: 2.55}, *got.Departure.Coords)
	assert.Equal(t, "75015 Paris", got.Arrival.Address)
	assert.Nil(t, got.Arrival.Coords)
}

func TestList(t *testing.T) {
	svc := &stubQuotes{quote: sampleQuote()}
	r := buildTestRouter(svc, makeVerifier("staff", "merchant", "m1"))

	w := doRequest(r, http.MethodGet, "/api/merchants/m1/quotes?limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, svc.lastLimit)

	var got struct {
		Quotes []map[string]any `json:"quotes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got.Quotes, 1)

	w = doRequest(r, http.MethodGet, "/api/merchants/m1/quotes?limit=lots", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, http.MethodGet, "/api/merchants/m2/quotes", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
