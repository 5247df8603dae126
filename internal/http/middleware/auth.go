// README: Firebase bearer-token auth and merchant access checks.
package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"ridefare/internal/infra"
)

const (
	ctxCallerUID       = "caller_uid"
	ctxCallerRole      = "caller_role"
	ctxCallerMerchants = "caller_merchants"

	RoleAdmin    = "admin"
	RoleMerchant = "merchant"
)

// Auth verifies the Firebase ID token in the Authorization header and stores
// the caller's uid, role claim and merchant claims on the context.
func Auth(verifier infra.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		token, err := verifier.VerifyIDToken(c.Request.Context(), strings.TrimSpace(raw))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		role, _ := token.Claims["role"].(string)
		c.Set(ctxCallerUID, token.UID)
		c.Set(ctxCallerRole, role)
		c.Set(ctxCallerMerchants, merchantClaims(token.Claims))
		c.Next()
	}
}

// merchantClaims reads "merchant_id" (string) and "merchants" (list) claims.
func merchantClaims(claims map[string]interface{}) []string {
	var out []string
	if id, ok := claims["merchant_id"].(string); ok && id != "" {
		out = append(out, id)
	}
	if list, ok := claims["merchants"].([]interface{}); ok {
		for _, v := range list {
			if id, ok := v.(string); ok && id != "" {
				out = append(out, id)
			}
		}
	}
	return out
}

func CallerUID(c *gin.Context) string {
	return c.GetString(ctxCallerUID)
}

func CallerRole(c *gin.Context) string {
	return c.GetString(ctxCallerRole)
}

// CanAccessMerchant reports whether the caller administers merchantID.
// Admins administer every merchant.
func CanAccessMerchant(c *gin.Context, merchantID string) bool {
	switch CallerRole(c) {
	case RoleAdmin:
		return true
	case RoleMerchant:
		ids, _ := c.Get(ctxCallerMerchants)
		list, _ := ids.([]string)
		return slices.Contains(list, merchantID)
	default:
		return false
	}
}

// RequireMerchantAccess guards routes carrying a :merchantID parameter.
func RequireMerchantAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CanAccessMerchant(c, c.Param("merchantID")) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
