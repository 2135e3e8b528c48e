package reservation

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"stayhub/internal/domain"
	"stayhub/internal/pkg/metrics"
)

type Service struct {
	reservations ReservationRepository
	transactions TransactionRepository
	gateway      RefundGateway
	notifs       NotificationSender
	logger       *zap.Logger
}

func NewService(
	reservations ReservationRepository,
	transactions TransactionRepository,
	gateway RefundGateway,
	notifs NotificationSender,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		reservations: reservations,
		transactions: transactions,
		gateway:      gateway,
		notifs:       notifs,
		logger:       logger,
	}
}

func (s *Service) GetMyReservations(ctx context.Context, userID int64, limit, offset int) ([]domain.Reservation, error) {
	return s.reservations.GetByUserID(ctx, userID, limit, offset)
}

// GetByID returns a reservation visible to the caller: the guest who booked
// it or the host of the property.
func (s *Service) GetByID(ctx context.Context, id, callerID int64) (*domain.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if res.UserID != callerID && res.HostID != callerID {
		return nil, ErrForbidden
	}
	return res, nil
}

// CheckAvailability answers whether [checkIn, checkOut) is free. Callers
// that go on to book must not trust this result; the checkout re-checks
// right before writing.
func (s *Service) CheckAvailability(ctx context.Context, propertyID int64, checkIn, checkOut time.Time) (bool, error) {
	if !checkOut.After(checkIn) {
		return false, ErrValidation
	}
	return s.reservations.CheckAvailability(ctx, propertyID, checkIn, checkOut)
}

// Cancel cancels the caller's reservation before check-in. A paid stay is
// refunded through the gateway and the linked transaction moves to
// refunded.
func (s *Service) Cancel(ctx context.Context, reservationID, userID int64, reason string) (*domain.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if res.UserID != userID {
		return nil, ErrForbidden
	}
	if res.Status == domain.ReservationCancelled {
		return nil, ErrAlreadyCancelled
	}
	if !time.Now().Before(res.CheckIn) {
		return nil, ErrStayStarted
	}

	if res.PaymentStatus == domain.PaymentPaid {
		txn, err := s.transactions.GetByReservationID(ctx, reservationID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if txn != nil {
			if _, err := s.gateway.RefundIntent(ctx, txn.PaymentIntentID); err != nil {
				s.logger.Error("refund failed",
					zap.Int64("reservation_id", reservationID),
					zap.String("payment_intent_id", txn.PaymentIntentID),
					zap.Error(err))
				return nil, err
			}
			if err := s.transactions.MarkRefunded(ctx, txn.PaymentIntentID); err != nil {
				return nil, err
			}
			if err := s.reservations.UpdatePaymentStatus(ctx, reservationID, domain.PaymentRefunded); err != nil {
				return nil, err
			}
			if s.notifs != nil {
				_ = s.notifs.NotifyPaymentRefunded(ctx, userID, txn.Reference, txn.Amount, txn.Currency)
			}
		}
	}

	if err := s.reservations.Cancel(ctx, reservationID, time.Now().UTC()); err != nil {
		return nil, err
	}

	if s.notifs != nil {
		_ = s.notifs.NotifyReservationCancelled(ctx, userID, reservationID, reason)
	}

	metrics.ReservationsCancelledTotal.Inc()
	s.logger.Info("reservation cancelled",
		zap.Int64("reservation_id", reservationID),
		zap.Int64("user_id", userID))

	return s.reservations.GetByID(ctx, reservationID)
}
