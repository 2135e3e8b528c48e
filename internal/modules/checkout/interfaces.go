package checkout

import (
	"context"
	"time"

	"stayhub/internal/domain"
	"stayhub/internal/modules/payment"
)

type PropertyReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Property, error)
}

type ReservationStore interface {
	CheckAvailability(ctx context.Context, propertyID int64, checkIn, checkOut time.Time) (bool, error)
	Create(ctx context.Context, res *domain.Reservation) error
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
	Delete(ctx context.Context, id int64) error
}

type TransactionStore interface {
	Create(ctx context.Context, t *domain.Transaction) error
	GetByPaymentIntentID(ctx context.Context, intentID string) (*domain.Transaction, error)
	MarkCompletedIdempotent(ctx context.Context, intentID string, reservationID int64, completedAt time.Time) (bool, error)
	MarkFailed(ctx context.Context, intentID, reason string) error
}

type PaymentGateway interface {
	CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*payment.Intent, error)
	GetIntent(ctx context.Context, intentID string) (*payment.Intent, error)
}

type NotificationSender interface {
	NotifyReservationConfirmed(ctx context.Context, userID, reservationID, propertyID int64) error
	NotifyPaymentReceived(ctx context.Context, userID int64, reference string, amount float64, currency string) error
}
