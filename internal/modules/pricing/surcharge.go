package pricing

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

var clockLayouts = []string{"15:04", "15:04:05"}

type SurchargeResult struct {
	Amount decimal.Decimal
	Lines  []LineItem
	// Parsed is false when date or time could not be read.
	Parsed bool
}

// Applies wraps past midnight when StartHour > EndHour.
func (h Hourly) Applies(hour int, _ time.Weekday) bool {
	if h.StartHour > h.EndHour {
		return hour >= h.StartHour || hour < h.EndHour
	}
	return hour >= h.StartHour && hour < h.EndHour
}

func (w Weekly) Applies(_ int, day time.Weekday) bool {
	return slices.Contains(w.Days, day)
}

func (Hourly) isWindow() {}
func (Weekly) isWindow() {}

// TimeSurcharges sums every enabled surcharge whose window covers the trip's
// date and time. Unreadable input yields zero.
func TimeSurcharges(date, clock string, surcharges []Surcharge) SurchargeResult {
	res := SurchargeResult{Amount: decimal.Zero}
	hour, day, ok := parseMoment(date, clock)
	if !ok {
		return res
	}
	res.Parsed = true

	for _, s := range surcharges {
		if !s.Enabled || s.Window == nil {
			continue
		}
		if !s.Window.Applies(hour, day) {
			continue
		}
		amount := s.Amount.Round(2)
		res.Amount = res.Amount.Add(amount)
		res.Lines = append(res.Lines, LineItem{Label: s.label(), Amount: amount})
	}
	return res
}

func (s Surcharge) label() string {
	if s.Name != "" {
		return s.Name
	}
	return "Surcharge " + s.ID
}

func parseMoment(date, clock string) (int, time.Weekday, bool) {
	d, err := time.Parse(dateLayout, strings.TrimSpace(date))
	if err != nil {
		return 0, 0, false
	}
	clock = strings.TrimSpace(clock)
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, clock); err == nil {
			return t.Hour(), d.Weekday(), true
		}
	}
	return 0, 0, false
}
