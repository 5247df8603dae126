package http

import (
	"context"
	"errors"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"ridefare/internal/infra"
	"ridefare/internal/modules/pricing"
	"ridefare/internal/modules/quote"
	"ridefare/internal/types"
)

type allowAll struct{}

func (allowAll) VerifyIDToken(context.Context, string) (*infra.FirebaseToken, error) {
	return &infra.FirebaseToken{UID: "staff", Claims: map[string]interface{}{"role": "merchant", "merchant_id": "m1"}}, nil
}

type noQuotes struct{}

func (noQuotes) Compute(quote.ComputeRequest) (pricing.PriceBreakdown, error) {
	return pricing.PriceBreakdown{}, quote.ErrBadRequest
}
func (noQuotes) Preview(context.Context, quote.PreviewCommand) (*quote.Quote, error) {
	return nil, quote.ErrBadRequest
}
func (noQuotes) Get(context.Context, types.ID) (*quote.Quote, error) { return nil, quote.ErrNotFound }
func (noQuotes) ListByMerchant(context.Context, string, int) ([]*quote.Quote, error) {
	return nil, nil
}

type recordingCache struct {
	invalidated []string
	err         error
}

func (r *recordingCache) Invalidate(_ context.Context, merchantID string) error {
	r.invalidated = append(r.invalidated, merchantID)
	return r.err
}

func serve(h nethttp.Handler, method, path string, auth bool) int {
	req := httptest.NewRequest(method, path, nil)
	if auth {
		req.Header.Set("Authorization", "Bearer t")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w.Code
}

func TestRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cache := &recordingCache{}
	r := NewRouter(RouterDeps{Quotes: noQuotes{}, Configs: cache, Verifier: allowAll{}, Log: zap.NewNop()})

	assert.Equal(t, nethttp.StatusOK, serve(r, nethttp.MethodGet, "/health", false))
	assert.Equal(t, nethttp.StatusUnauthorized, serve(r, nethttp.MethodGet, "/api/quotes/x", false))
	assert.Equal(t, nethttp.StatusNotFound, serve(r, nethttp.MethodGet, "/api/quotes/x", true))
	assert.Equal(t, nethttp.StatusOK, serve(r, nethttp.MethodGet, "/api/merchants/m1/quotes", true))

	assert.Equal(t, nethttp.StatusNoContent, serve(r, nethttp.MethodDelete, "/api/merchants/m1/config-cache", true))
	assert.Equal(t, nethttp.StatusForbidden, serve(r, nethttp.MethodDelete, "/api/merchants/m2/config-cache", true))
	assert.Equal(t, []string{"m1"}, cache.invalidated)

	cache.err = errors.New("redis down")
	assert.Equal(t, nethttp.StatusInternalServerError, serve(r, nethttp.MethodDelete, "/api/merchants/m1/config-cache", true))
}
