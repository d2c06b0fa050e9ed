package models

import (
	"encoding/json"
	"math"
)

// Currency for all rental pricing. Rates and totals are carried as integer
// centavos internally and rendered with two decimals at the edges.
const Currency = "HNL"

// CentsFromFloat converts an amount to centavos, rounding half away from zero.
func CentsFromFloat(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// AmountFromCents renders centavos as a two-decimal amount.
func AmountFromCents(cents int64) float64 {
	return math.Round(float64(cents)) / 100
}

// PricingQuote is the computed cost of one rental. It is ephemeral: returned
// to the caller and optionally snapshotted onto an InterestEvent, never stored
// on its own.
type PricingQuote struct {
	DailyRateCents  int64
	Days            int
	DiscountPercent int
	SubtotalCents   int64
	DiscountCents   int64
	TotalCents      int64
}

func (q PricingQuote) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		DailyRate       float64 `json:"daily_rate"`
		Days            int     `json:"days"`
		DiscountPercent int     `json:"discount_percent"`
		Subtotal        float64 `json:"subtotal"`
		Discount        float64 `json:"discount"`
		Total           float64 `json:"total"`
		Currency        string  `json:"currency"`
	}{
		DailyRate:       AmountFromCents(q.DailyRateCents),
		Days:            q.Days,
		DiscountPercent: q.DiscountPercent,
		Subtotal:        AmountFromCents(q.SubtotalCents),
		Discount:        AmountFromCents(q.DiscountCents),
		Total:           AmountFromCents(q.TotalCents),
		Currency:        Currency,
	})
}

// Availability reports stock for one product. NextAvailable is only set when
// the item is out of stock and a return date is known.
type Availability struct {
	Product       string     `json:"product"`
	Available     bool       `json:"available"`
	Units         int        `json:"units"`
	NextAvailable *CivilDate `json:"next_available_date,omitempty"`
}

// DeliveryEstimate is the resolved delivery schedule for an order.
type DeliveryEstimate struct {
	OrderDate        CivilDate `json:"order_date"`
	DeliveryDate     CivilDate `json:"delivery_date"`
	LeadTimeDays     int       `json:"lead_time_days"`
	BusinessDaysOnly bool      `json:"business_days_only"`
}
