// README: Tests for Firebase auth middleware and merchant access checks.
package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"ridefare/internal/http/middleware"
	"ridefare/internal/infra"
)

// stubVerifier is a test double for infra.TokenVerifier.
type stubVerifier struct {
	token *infra.FirebaseToken
	err   error
}

func (s *stubVerifier) VerifyIDToken(_ context.Context, _ string) (*infra.FirebaseToken, error) {
	return s.token, s.err
}

func newTestRouter(verifier infra.TokenVerifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.Auth(verifier))
	r.GET("/test", func(c *gin.Context) {
		uid := middleware.CallerUID(c)
		role := middleware.CallerRole(c)
		c.JSON(http.StatusOK, gin.H{"uid": uid, "role": role})
	})
	r.GET("/merchants/:merchantID/admin", middleware.RequireMerchantAccess(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func get(r *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth_MissingHeader(t *testing.T) {
	r := newTestRouter(&stubVerifier{token: &infra.FirebaseToken{UID: "user1"}})
	if w := get(r, "/test", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuth_InvalidBearerPrefix(t *testing.T) {
	r := newTestRouter(&stubVerifier{token: &infra.FirebaseToken{UID: "user1"}})
	if w := get(r, "/test", "Token sometoken"); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuth_VerifierError(t *testing.T) {
	r := newTestRouter(&stubVerifier{err: errors.New("bad token")})
	if w := get(r, "/test", "Bearer invalidtoken"); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuth_ValidToken_UIDAndRolePopulated(t *testing.T) {
	token := &infra.FirebaseToken{
		UID:    "dispatcher123",
		Claims: map[string]interface{}{"role": "merchant"},
	}
	w := get(newTestRouter(&stubVerifier{token: token}), "/test", "Bearer validtoken")
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "dispatcher123") {
		t.Errorf("expected uid dispatcher123 in body, got %s", body)
	}
	if !strings.Contains(body, "merchant") {
		t.Errorf("expected role merchant in body, got %s", body)
	}
}

func TestAuth_ValidToken_NoRoleClaim(t *testing.T) {
	token := &infra.FirebaseToken{
		UID:    "customer456",
		Claims: map[string]interface{}{},
	}
	w := get(newTestRouter(&stubVerifier{token: token}), "/test", "Bearer validtoken")
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "customer456") {
		t.Errorf("expected uid customer456 in body")
	}
}

func TestRequireMerchantAccess(t *testing.T) {
	tests := []struct {
		name   string
		claims map[string]interface{}
		path   string
		want   int
	}{
		{"admin", map[string]interface{}{"role": "admin"}, "/merchants/m1/admin", http.StatusNoContent},
		{"own merchant", map[string]interface{}{"role": "merchant", "merchant_id": "m1"}, "/merchants/m1/admin", http.StatusNoContent},
		{"listed merchant", map[string]interface{}{"role": "merchant", "merchants": []interface{}{"m0", "m2"}}, "/merchants/m2/admin", http.StatusNoContent},
		{"other merchant", map[string]interface{}{"role": "merchant", "merchant_id": "m1"}, "/merchants/m2/admin", http.StatusForbidden},
		{"customer", map[string]interface{}{"merchant_id": "m1"}, "/merchants/m1/admin", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(&stubVerifier{token: &infra.FirebaseToken{UID: "u", Claims: tt.claims}})
			if w := get(r, tt.path, "Bearer ok"); w.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}
