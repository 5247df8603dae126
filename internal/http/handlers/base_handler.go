// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ridefare/internal/modules/merchant"
	"ridefare/internal/modules/quote"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

func writeQuoteError(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, quote.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, quote.ErrNotFound), errors.Is(err, merchant.ErrNotFound), errors.Is(err, merchant.ErrVehicleNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, merchant.ErrInvalidDocument):
		writeError(c, http.StatusUnprocessableEntity, "merchant pricing configuration is invalid")
	case errors.Is(err, quote.ErrRoutingUnavailable):
		writeError(c, http.StatusBadGateway, "routing unavailable")
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
