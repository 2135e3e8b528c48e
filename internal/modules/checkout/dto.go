package checkout

import (
	"time"

	"stayhub/internal/domain"
)

type CalculateRequest struct {
	PropertyID int64     `json:"property_id" binding:"required"`
	CheckIn    time.Time `json:"check_in" binding:"required"`
	CheckOut   time.Time `json:"check_out" binding:"required"`
	Guests     int       `json:"guests" binding:"required"`
}

type CreateIntentRequest struct {
	PropertyID int64     `json:"property_id" binding:"required"`
	CheckIn    time.Time `json:"check_in" binding:"required"`
	CheckOut   time.Time `json:"check_out" binding:"required"`
	Guests     int       `json:"guests" binding:"required"`
}

type CreateIntentResponse struct {
	ClientSecret    string            `json:"client_secret"`
	PaymentIntentID string            `json:"payment_intent_id"`
	TransactionID   string            `json:"transaction_id"`
	Amount          float64           `json:"amount"`
	Currency        string            `json:"currency"`
	Pricing         *PricingBreakdown `json:"pricing"`
}

type ConfirmRequest struct {
	PaymentIntentID string     `json:"payment_intent_id" binding:"required"`
	CheckIn         *time.Time `json:"check_in"`
	CheckOut        *time.Time `json:"check_out"`
	Guests          *int       `json:"guests"`
	GuestNotes      string     `json:"guest_notes"`
}

type ConfirmResponse struct {
	Reservation *domain.Reservation `json:"reservation"`
	Transaction *domain.Transaction `json:"transaction"`
}
