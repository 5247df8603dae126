// README: Quote aggregate; one priced trip as returned to the caller and kept in the quote log.
package quote

import (
	"errors"
	"time"

	"ridefare/internal/modules/pricing"
	"ridefare/internal/types"
)

var (
	ErrBadRequest         = errors.New("bad request")
	ErrNotFound           = errors.New("quote not found")
	ErrRoutingUnavailable = errors.New("routing unavailable")
)

type Quote struct {
	ID          types.ID
	MerchantID  string
	VehicleID   string
	Trip        pricing.TripRequest
	Breakdown   pricing.PriceBreakdown
	RequestedBy string
	CreatedAt   time.Time
}

// Price is the quoted total in the breakdown's currency.
func (q *Quote) Price() types.Money {
	return types.NewMoney(q.Breakdown.Total, q.Breakdown.Currency)
}
