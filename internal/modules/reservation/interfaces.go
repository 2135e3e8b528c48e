package reservation

import (
	"context"
	"time"

	"stayhub/internal/domain"
	"stayhub/internal/modules/payment"
)

type ReservationRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
	GetByUserID(ctx context.Context, userID int64, limit, offset int) ([]domain.Reservation, error)
	CheckAvailability(ctx context.Context, propertyID int64, checkIn, checkOut time.Time) (bool, error)
	Cancel(ctx context.Context, id int64, at time.Time) error
	UpdatePaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus) error
}

type TransactionRepository interface {
	GetByReservationID(ctx context.Context, reservationID int64) (*domain.Transaction, error)
	MarkRefunded(ctx context.Context, intentID string) error
}

type RefundGateway interface {
	RefundIntent(ctx context.Context, intentID string) (*payment.Refund, error)
}

type NotificationSender interface {
	NotifyReservationCancelled(ctx context.Context, userID, reservationID int64, reason string) error
	NotifyPaymentRefunded(ctx context.Context, userID int64, reference string, amount float64, currency string) error
}
