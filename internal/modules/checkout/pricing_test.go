package checkout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testRates = FeeRates{Cleaning: 0.05, Service: 0.08, Tax: 0.12}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestComputePricing_FourNights(t *testing.T) {
	p, err := ComputePricing(100, date(2026, 3, 1), date(2026, 3, 5), 2, testRates, "USD")

	assert.NoError(t, err)
	assert.Equal(t, 4, p.Nights)
	assert.Equal(t, 400.0, p.Subtotal)
	assert.Equal(t, 20.0, p.CleaningFee)
	assert.Equal(t, 32.0, p.ServiceFee)
	assert.Equal(t, 48.0, p.Taxes)
	assert.Equal(t, 500.0, p.Total)
	assert.Equal(t, "USD", p.Currency)
}

func TestComputePricing_TotalIsSumOfRoundedComponents(t *testing.T) {
	// 3 nights at 33.33 produces fee components that don't round cleanly.
	p, err := ComputePricing(33.33, date(2026, 6, 10), date(2026, 6, 13), 1, testRates, "EUR")

	assert.NoError(t, err)
	assert.Equal(t, 3, p.Nights)
	assert.Equal(t, 99.99, p.Subtotal)
	assert.Equal(t, 5.0, p.CleaningFee)   // 4.9995 rounds half-up
	assert.Equal(t, 8.0, p.ServiceFee)    // 7.9992
	assert.Equal(t, 12.0, p.Taxes)        // 11.9988
	assert.Equal(t, p.Total, round2(p.Subtotal+p.CleaningFee+p.ServiceFee+p.Taxes))
	assert.Equal(t, 124.99, p.Total)
}

func TestComputePricing_PartialDayCountsAsNight(t *testing.T) {
	checkIn := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)
	checkOut := time.Date(2026, 3, 3, 11, 0, 0, 0, time.UTC)

	p, err := ComputePricing(80, checkIn, checkOut, 2, testRates, "USD")

	assert.NoError(t, err)
	assert.Equal(t, 2, p.Nights)
}

func TestComputePricing_InvalidDateRange(t *testing.T) {
	_, err := ComputePricing(100, date(2026, 3, 5), date(2026, 3, 1), 2, testRates, "USD")
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	_, err = ComputePricing(100, date(2026, 3, 1), date(2026, 3, 1), 2, testRates, "USD")
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestComputePricing_InvalidPrice(t *testing.T) {
	_, err := ComputePricing(0, date(2026, 3, 1), date(2026, 3, 5), 2, testRates, "USD")
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = ComputePricing(-10, date(2026, 3, 1), date(2026, 3, 5), 2, testRates, "USD")
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

func TestComputePricing_InvalidGuests(t *testing.T) {
	_, err := ComputePricing(100, date(2026, 3, 1), date(2026, 3, 5), 0, testRates, "USD")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAmountMinorUnits(t *testing.T) {
	p, err := ComputePricing(100, date(2026, 3, 1), date(2026, 3, 5), 2, testRates, "USD")
	assert.NoError(t, err)
	assert.Equal(t, int64(50000), p.AmountMinorUnits())

	p2, err := ComputePricing(33.33, date(2026, 6, 10), date(2026, 6, 13), 1, testRates, "EUR")
	assert.NoError(t, err)
	assert.Equal(t, int64(12499), p2.AmountMinorUnits())
}

func TestRound2_HalfUp(t *testing.T) {
	assert.Equal(t, 0.13, round2(0.125))
	assert.Equal(t, 0.38, round2(0.375))
	assert.Equal(t, 3.63, round2(3.625))
}
