package checkout

import (
	"math"
	"time"
)

// FeeRates are fractions of the subtotal. Loaded from configuration; the
// defaults live in internal/config.
type FeeRates struct {
	Cleaning float64
	Service  float64
	Tax      float64
}

// PricingBreakdown is the quoted cost of a stay. It is computed, returned
// to the caller, and carried in gateway metadata; it is never persisted.
type PricingBreakdown struct {
	Nights      int     `json:"nights"`
	BasePrice   float64 `json:"base_price"`
	Subtotal    float64 `json:"subtotal"`
	CleaningFee float64 `json:"cleaning_fee"`
	ServiceFee  float64 `json:"service_fee"`
	Taxes       float64 `json:"taxes"`
	Total       float64 `json:"total"`
	Currency    string  `json:"currency"`
}

// AmountMinorUnits converts the total to the gateway's integer minor-unit
// representation. This conversion happens exactly once, when the intent is
// created; the charged amount is never re-derived from a float afterwards.
func (p *PricingBreakdown) AmountMinorUnits() int64 {
	return int64(math.Round(p.Total * 100))
}

// ComputePricing prices a stay. Each fee component is rounded half-up to
// two decimals independently and the total is the exact sum of the rounded
// components, so the server-side total and the gateway-charged amount can
// never diverge by a rounding unit.
func ComputePricing(nightlyRate float64, checkIn, checkOut time.Time, guests int, rates FeeRates, currency string) (*PricingBreakdown, error) {
	if nightlyRate <= 0 {
		return nil, ErrInvalidPrice
	}
	if guests <= 0 {
		return nil, ErrValidation
	}

	nights := nightsBetween(checkIn, checkOut)
	if nights <= 0 {
		return nil, ErrInvalidDateRange
	}

	subtotal := round2(float64(nights) * nightlyRate)
	cleaningFee := round2(subtotal * rates.Cleaning)
	serviceFee := round2(subtotal * rates.Service)
	taxes := round2(subtotal * rates.Tax)
	total := round2(subtotal + cleaningFee + serviceFee + taxes)

	return &PricingBreakdown{
		Nights:      nights,
		BasePrice:   nightlyRate,
		Subtotal:    subtotal,
		CleaningFee: cleaningFee,
		ServiceFee:  serviceFee,
		Taxes:       taxes,
		Total:       total,
		Currency:    currency,
	}, nil
}

func nightsBetween(checkIn, checkOut time.Time) int {
	return int(math.Ceil(checkOut.Sub(checkIn).Hours() / 24))
}

// round2 rounds half-up to two decimals.
func round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}
