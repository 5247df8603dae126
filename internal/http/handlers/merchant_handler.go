// README: Merchant admin handlers.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

type ConfigCache interface {
	Invalidate(ctx context.Context, merchantID string) error
}

type MerchantHandler struct {
	cache ConfigCache
}

func NewMerchantHandler(cache ConfigCache) *MerchantHandler {
	return &MerchantHandler{cache: cache}
}

// InvalidateConfig drops the cached configuration after an edit so the next
// quote reads the store.
func (h *MerchantHandler) InvalidateConfig(c *gin.Context) {
	if err := h.cache.Invalidate(c.Request.Context(), c.Param("merchantID")); err != nil {
		_ = c.Error(err)
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	c.Status(http.StatusNoContent)
}
