package checkout

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"stayhub/internal/database"
	"stayhub/internal/domain"
	"stayhub/internal/modules/payment"
	"stayhub/internal/pkg/metrics"
)

// Service sequences pricing, payment, reservation and notification for one
// purchase attempt. All collaborators are injected; the service owns no
// process-wide state.
type Service struct {
	properties   PropertyReader
	reservations ReservationStore
	transactions TransactionStore
	gateway      PaymentGateway
	notifs       NotificationSender
	rates        FeeRates
	currency     string
	logger       *zap.Logger
}

func NewService(
	properties PropertyReader,
	reservations ReservationStore,
	transactions TransactionStore,
	gateway PaymentGateway,
	notifs NotificationSender,
	rates FeeRates,
	currency string,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		properties:   properties,
		reservations: reservations,
		transactions: transactions,
		gateway:      gateway,
		notifs:       notifs,
		rates:        rates,
		currency:     currency,
		logger:       logger,
	}
}

// Calculate prices a stay without persisting anything.
func (s *Service) Calculate(ctx context.Context, req CalculateRequest) (*PricingBreakdown, error) {
	property, err := s.fetchProperty(ctx, req.PropertyID)
	if err != nil {
		return nil, err
	}
	if req.Guests > property.MaxGuests {
		return nil, ErrTooManyGuests
	}

	pricing, err := ComputePricing(property.PricePerNight, req.CheckIn, req.CheckOut, req.Guests, s.rates, s.currencyFor(property))
	if err != nil {
		return nil, err
	}

	metrics.CheckoutQuotesTotal.Inc()
	return pricing, nil
}

// CreateIntent re-checks availability, opens a payment intent carrying the
// full pricing breakdown in its metadata, and records a processing
// transaction linked to the intent.
func (s *Service) CreateIntent(ctx context.Context, userID int64, req CreateIntentRequest) (*CreateIntentResponse, error) {
	if !req.CheckOut.After(req.CheckIn) {
		return nil, ErrInvalidDateRange
	}
	if req.CheckIn.Before(time.Now().Truncate(24 * time.Hour)) {
		return nil, ErrValidation
	}

	property, err := s.fetchProperty(ctx, req.PropertyID)
	if err != nil {
		return nil, err
	}
	if property.PricePerNight <= 0 {
		return nil, ErrInvalidPrice
	}
	if req.Guests > property.MaxGuests {
		return nil, ErrTooManyGuests
	}

	available, err := s.reservations.CheckAvailability(ctx, req.PropertyID, req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}
	if !available {
		metrics.PaymentIntentsFailedTotal.WithLabelValues("unavailable").Inc()
		return nil, ErrPropertyUnavailable
	}

	pricing, err := ComputePricing(property.PricePerNight, req.CheckIn, req.CheckOut, req.Guests, s.rates, s.currencyFor(property))
	if err != nil {
		return nil, err
	}

	reference := "TXN-" + uuid.NewString()
	metadata := intentMetadata(userID, req, pricing, reference)

	intent, err := s.gateway.CreateIntent(ctx, pricing.AmountMinorUnits(), pricing.Currency, metadata)
	if err != nil {
		metrics.PaymentIntentsFailedTotal.WithLabelValues("gateway").Inc()
		return nil, err
	}

	txn := &domain.Transaction{
		UserID:          userID,
		PropertyID:      req.PropertyID,
		Amount:          pricing.Total,
		Currency:        pricing.Currency,
		Status:          domain.TransactionProcessing,
		PaymentMethod:   "card",
		PaymentIntentID: intent.ID,
		Reference:       reference,
	}
	if err := s.transactions.Create(ctx, txn); err != nil {
		// The intent exists provider-side but nothing local references it;
		// the reconciler cannot pick it up, so log the id for manual review.
		s.logger.Error("failed to record transaction for payment intent",
			zap.String("payment_intent_id", intent.ID),
			zap.Int64("user_id", userID),
			zap.Error(err))
		return nil, fmt.Errorf("record transaction: %w", err)
	}

	metrics.PaymentIntentsCreatedTotal.Inc()
	s.logger.Info("payment intent created",
		zap.String("payment_intent_id", intent.ID),
		zap.String("transaction_ref", reference),
		zap.Int64("property_id", req.PropertyID),
		zap.Float64("amount", pricing.Total))

	return &CreateIntentResponse{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
		TransactionID:   reference,
		Amount:          pricing.Total,
		Currency:        pricing.Currency,
		Pricing:         pricing,
	}, nil
}

// Confirm verifies the payment with the provider and books the stay.
// Calling it again with the same intent id returns the reservation created
// by the first call; it never books twice.
func (s *Service) Confirm(ctx context.Context, userID int64, req ConfirmRequest) (*ConfirmResponse, error) {
	intent, err := s.gateway.GetIntent(ctx, req.PaymentIntentID)
	if err != nil {
		return nil, err
	}

	// Ownership comes before everything else: a session must not claim a
	// booking paid for by another one, whatever the payment status is.
	if intent.Metadata["user_id"] != strconv.FormatInt(userID, 10) {
		return nil, ErrForbidden
	}

	txn, err := s.transactions.GetByPaymentIntentID(ctx, req.PaymentIntentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}

	if txn.Status == domain.TransactionCompleted {
		reservation, err := s.reservations.GetByID(ctx, txn.ReservationID)
		if err != nil {
			return nil, err
		}
		return &ConfirmResponse{Reservation: reservation, Transaction: txn}, nil
	}

	if intent.Status != payment.IntentStatusSucceeded {
		return nil, &PaymentNotSucceededError{Status: intent.Status}
	}

	checkIn, checkOut, guests, err := confirmStayDetails(req, intent.Metadata)
	if err != nil {
		return nil, err
	}

	property, err := s.fetchProperty(ctx, txn.PropertyID)
	if err != nil {
		return nil, err
	}
	// The body may override the metadata snapshot, so capacity has to hold
	// here too, not just at quote and intent time.
	if guests > property.MaxGuests {
		return nil, ErrTooManyGuests
	}

	available, err := s.reservations.CheckAvailability(ctx, txn.PropertyID, checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	if !available {
		s.availabilityLost(txn, checkIn, checkOut)
		return nil, ErrAvailabilityLost
	}

	reservation := &domain.Reservation{
		UserID:        userID,
		PropertyID:    txn.PropertyID,
		HostID:        property.HostID,
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		Guests:        guests,
		TotalPrice:    txn.Amount,
		Currency:      txn.Currency,
		Status:        domain.ReservationConfirmed,
		PaymentStatus: domain.PaymentPaid,
		GuestNotes:    req.GuestNotes,
	}
	if err := s.reservations.Create(ctx, reservation); err != nil {
		if pgErr, ok := errAsPgError(err); ok && isDoubleBookingViolation(pgErr) {
			// Constraint beat the application-level check; same business
			// situation as the re-check failing.
			s.availabilityLost(txn, checkIn, checkOut)
			return nil, ErrAvailabilityLost
		}
		return nil, err
	}

	changed, err := s.transactions.MarkCompletedIdempotent(ctx, req.PaymentIntentID, reservation.ID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if !changed {
		// A concurrent confirm finished first; its reservation wins and the
		// row this call just created must not survive as a second booking.
		s.logger.Warn("concurrent confirmation detected",
			zap.String("payment_intent_id", req.PaymentIntentID),
			zap.Int64("duplicate_reservation_id", reservation.ID))
		if derr := s.reservations.Delete(ctx, reservation.ID); derr != nil {
			s.logger.Error("failed to remove duplicate reservation",
				zap.Int64("reservation_id", reservation.ID),
				zap.String("payment_intent_id", req.PaymentIntentID),
				zap.Error(derr))
		}
		stored, err := s.transactions.GetByPaymentIntentID(ctx, req.PaymentIntentID)
		if err != nil {
			return nil, err
		}
		existing, err := s.reservations.GetByID(ctx, stored.ReservationID)
		if err != nil {
			return nil, err
		}
		return &ConfirmResponse{Reservation: existing, Transaction: stored}, nil
	}

	if s.notifs != nil {
		_ = s.notifs.NotifyPaymentReceived(ctx, userID, txn.Reference, txn.Amount, txn.Currency)
		_ = s.notifs.NotifyReservationConfirmed(ctx, userID, reservation.ID, txn.PropertyID)
	}

	metrics.ReservationsConfirmedTotal.Inc()
	s.logger.Info("reservation confirmed",
		zap.Int64("reservation_id", reservation.ID),
		zap.String("payment_intent_id", req.PaymentIntentID),
		zap.String("transaction_ref", txn.Reference))

	completed, err := s.transactions.GetByPaymentIntentID(ctx, req.PaymentIntentID)
	if err != nil {
		return nil, err
	}
	return &ConfirmResponse{Reservation: reservation, Transaction: completed}, nil
}

// availabilityLost records the one business case that needs a human: the
// guest has paid but the dates are gone. Refunds here are manual by design.
func (s *Service) availabilityLost(txn *domain.Transaction, checkIn, checkOut time.Time) {
	metrics.AvailabilityLostTotal.Inc()
	s.logger.Error("availability lost after successful payment; manual refund required",
		zap.String("payment_intent_id", txn.PaymentIntentID),
		zap.String("transaction_ref", txn.Reference),
		zap.Int64("user_id", txn.UserID),
		zap.Int64("property_id", txn.PropertyID),
		zap.Time("check_in", checkIn),
		zap.Time("check_out", checkOut))
}

func (s *Service) fetchProperty(ctx context.Context, id int64) (*domain.Property, error) {
	property, err := s.properties.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}
	return property, nil
}

func (s *Service) currencyFor(p *domain.Property) string {
	if p.Currency != "" {
		return p.Currency
	}
	return s.currency
}

func intentMetadata(userID int64, req CreateIntentRequest, pricing *PricingBreakdown, reference string) map[string]string {
	return map[string]string{
		"user_id":      strconv.FormatInt(userID, 10),
		"property_id":  strconv.FormatInt(req.PropertyID, 10),
		"check_in":     req.CheckIn.UTC().Format(time.RFC3339),
		"check_out":    req.CheckOut.UTC().Format(time.RFC3339),
		"guests":       strconv.Itoa(req.Guests),
		"reference":    reference,
		"nights":       strconv.Itoa(pricing.Nights),
		"subtotal":     formatAmount(pricing.Subtotal),
		"cleaning_fee": formatAmount(pricing.CleaningFee),
		"service_fee":  formatAmount(pricing.ServiceFee),
		"taxes":        formatAmount(pricing.Taxes),
		"total":        formatAmount(pricing.Total),
		"currency":     pricing.Currency,
	}
}

// confirmStayDetails resolves dates and guest count from the request body,
// falling back to the metadata snapshot taken at intent creation.
func confirmStayDetails(req ConfirmRequest, metadata map[string]string) (time.Time, time.Time, int, error) {
	var checkIn, checkOut time.Time
	var guests int

	if req.CheckIn != nil && req.CheckOut != nil {
		checkIn, checkOut = *req.CheckIn, *req.CheckOut
	} else {
		var err error
		checkIn, err = time.Parse(time.RFC3339, metadata["check_in"])
		if err != nil {
			return time.Time{}, time.Time{}, 0, ErrValidation
		}
		checkOut, err = time.Parse(time.RFC3339, metadata["check_out"])
		if err != nil {
			return time.Time{}, time.Time{}, 0, ErrValidation
		}
	}
	if !checkOut.After(checkIn) {
		return time.Time{}, time.Time{}, 0, ErrInvalidDateRange
	}

	if req.Guests != nil {
		guests = *req.Guests
	} else {
		guests, _ = strconv.Atoi(metadata["guests"])
	}
	if guests <= 0 {
		return time.Time{}, time.Time{}, 0, ErrValidation
	}

	return checkIn, checkOut, guests, nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func errAsPgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

const (
	pgUniqueViolation    = "23505"
	pgExclusionViolation = "23P01"
)

// isDoubleBookingViolation matches the overlap exclusion constraint that
// database.EnsureConstraints installs, and falls back on the generic
// unique/exclusion codes for schemas provisioned by hand.
func isDoubleBookingViolation(pgErr *pgconn.PgError) bool {
	if pgErr.ConstraintName == database.ReservationOverlapConstraint {
		return true
	}
	return pgErr.Code == pgUniqueViolation || pgErr.Code == pgExclusionViolation
}
