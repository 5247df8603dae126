// README: Quote handlers; stateless compute, priced quotes from merchant config, quote lookup.
package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"ridefare/internal/http/middleware"
	"ridefare/internal/modules/pricing"
	"ridefare/internal/modules/quote"
	"ridefare/internal/types"
)

type QuoteService interface {
	Compute(req quote.ComputeRequest) (pricing.PriceBreakdown, error)
	Preview(ctx context.Context, cmd quote.PreviewCommand) (*quote.Quote, error)
	Get(ctx context.Context, id types.ID) (*quote.Quote, error)
	ListByMerchant(ctx context.Context, merchantID string, limit int) ([]*quote.Quote, error)
}

type QuoteHandler struct {
	quotes QuoteService
}

func NewQuoteHandler(svc QuoteService) *QuoteHandler {
	return &QuoteHandler{quotes: svc}
}

type endpointReq struct {
	Address string          `json:"address"`
	Coords  *types.GeoPoint `json:"coords,omitempty"`
}

func (e endpointReq) endpoint() pricing.Endpoint {
	return pricing.Endpoint{Address: e.Address, Coords: e.Coords}
}

type createQuoteReq struct {
	VehicleID    string      `json:"vehicleId" binding:"required"`
	DistanceKm   *float64    `json:"distanceKm" binding:"omitempty,gte=0"`
	Date         string      `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Time         string      `json:"time"`
	Departure    endpointReq `json:"departure"`
	Arrival      endpointReq `json:"arrival"`
	TotalLuggage int         `json:"totalLuggage" binding:"gte=0"`
}

// breakdownResponse adds what a client needs to render the error kind.
type breakdownResponse struct {
	pricing.PriceBreakdown
	Bookable bool   `json:"bookable"`
	Message  string `json:"message,omitempty"`
}

type quoteResponse struct {
	QuoteID    types.ID          `json:"quote_id"`
	MerchantID string            `json:"merchant_id"`
	VehicleID  string            `json:"vehicle_id"`
	DistanceKm float64           `json:"distance_km"`
	Date       string            `json:"date"`
	Time       string            `json:"time"`
	Departure  endpointReq       `json:"departure"`
	Arrival    endpointReq       `json:"arrival"`
	CreatedAt  time.Time         `json:"created_at"`
	Price      types.Money       `json:"price"`
	Breakdown  breakdownResponse `json:"breakdown"`
}

func toBreakdownResponse(b pricing.PriceBreakdown) breakdownResponse {
	return breakdownResponse{PriceBreakdown: b, Bookable: b.Bookable(), Message: b.Error.Message()}
}

func toQuoteResponse(q *quote.Quote) quoteResponse {
	return quoteResponse{
		QuoteID:    q.ID,
		MerchantID: q.MerchantID,
		VehicleID:  q.VehicleID,
		DistanceKm: q.Trip.DistanceKm,
		Date:       q.Trip.Date,
		Time:       q.Trip.Time,
		Departure:  endpointReq{Address: q.Trip.Departure.Address, Coords: q.Trip.Departure.Coords},
		Arrival:    endpointReq{Address: q.Trip.Arrival.Address, Coords: q.Trip.Arrival.Coords},
		CreatedAt:  q.CreatedAt,
		Price:      q.Price(),
		Breakdown:  toBreakdownResponse(q.Breakdown),
	}
}

// Compute prices a self-contained request (admin price preview).
func (h *QuoteHandler) Compute(c *gin.Context) {
	var req quote.ComputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	b, err := h.quotes.Compute(req)
	if err != nil {
		writeQuoteError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toBreakdownResponse(b))
}

// Create prices a trip against the merchant's stored configuration.
func (h *QuoteHandler) Create(c *gin.Context) {
	var req createQuoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	q, err := h.quotes.Preview(c.Request.Context(), quote.PreviewCommand{
		MerchantID:   c.Param("merchantID"),
		VehicleID:    req.VehicleID,
		DistanceKm:   req.DistanceKm,
		Date:         req.Date,
		Time:         req.Time,
		Departure:    req.Departure.endpoint(),
		Arrival:      req.Arrival.endpoint(),
		LuggageCount: req.TotalLuggage,
		RequestedBy:  middleware.CallerUID(c),
	})
	if err != nil {
		writeQuoteError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, toQuoteResponse(q))
}

// Get returns a stored quote to its requester or to the merchant's staff.
func (h *QuoteHandler) Get(c *gin.Context) {
	q, err := h.quotes.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeQuoteError(c, err)
		return
	}
	if q.RequestedBy != middleware.CallerUID(c) && !middleware.CanAccessMerchant(c, q.MerchantID) {
		writeQuoteError(c, quote.ErrNotFound)
		return
	}
	writeJSON(c, http.StatusOK, toQuoteResponse(q))
}

func (h *QuoteHandler) List(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(c, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	quotes, err := h.quotes.ListByMerchant(c.Request.Context(), c.Param("merchantID"), limit)
	if err != nil {
		writeQuoteError(c, err)
		return
	}
	out := make([]quoteResponse, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, toQuoteResponse(q))
	}
	writeJSON(c, http.StatusOK, gin.H{"quotes": out})
}
