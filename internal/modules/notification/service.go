package notification

import (
	"context"
	"fmt"

	"stayhub/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, n *domain.Notification) error
	GetByUserID(ctx context.Context, userID int64, limit int) ([]domain.Notification, error)
	CountUnread(ctx context.Context, userID int64) (int64, error)
	MarkAsRead(ctx context.Context, id, userID int64) error
	MarkAllAsRead(ctx context.Context, userID int64) error
}

// Service creates in-app notification records. Delivery beyond the
// database row (push, email) is out of scope.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetUserNotifications(ctx context.Context, userID int64, limit int) ([]domain.Notification, int64, error) {
	list, err := s.repo.GetByUserID(ctx, userID, limit)
	if err != nil {
		return nil, 0, err
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return list, unread, nil
}

func (s *Service) MarkAsRead(ctx context.Context, id, userID int64) error {
	return s.repo.MarkAsRead(ctx, id, userID)
}

func (s *Service) MarkAllAsRead(ctx context.Context, userID int64) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *Service) NotifyReservationConfirmed(ctx context.Context, userID, reservationID, propertyID int64) error {
	return s.repo.Create(ctx, &domain.Notification{
		UserID:  userID,
		Type:    domain.NotifReservationConfirmed,
		Title:   "Booking confirmed",
		Message: "Your reservation is confirmed. Have a great stay!",
		Data: map[string]any{
			"reservation_id": reservationID,
			"property_id":    propertyID,
		},
	})
}

func (s *Service) NotifyReservationCancelled(ctx context.Context, userID, reservationID int64, reason string) error {
	return s.repo.Create(ctx, &domain.Notification{
		UserID:  userID,
		Type:    domain.NotifReservationCancelled,
		Title:   "Booking cancelled",
		Message: reason,
		Data: map[string]any{
			"reservation_id": reservationID,
		},
	})
}

func (s *Service) NotifyPaymentReceived(ctx context.Context, userID int64, reference string, amount float64, currency string) error {
	return s.repo.Create(ctx, &domain.Notification{
		UserID:  userID,
		Type:    domain.NotifPaymentReceived,
		Title:   "Payment received",
		Message: fmt.Sprintf("We received your payment of %.2f %s.", amount, currency),
		Data: map[string]any{
			"transaction_ref": reference,
		},
	})
}

func (s *Service) NotifyNewReview(ctx context.Context, hostID, propertyID int64, rating int) error {
	return s.repo.Create(ctx, &domain.Notification{
		UserID:  hostID,
		Type:    domain.NotifNewReview,
		Title:   "New review",
		Message: fmt.Sprintf("A guest left a %d-star review on your property.", rating),
		Data: map[string]any{
			"property_id": propertyID,
			"rating":      rating,
		},
	})
}

func (s *Service) NotifyPaymentRefunded(ctx context.Context, userID int64, reference string, amount float64, currency string) error {
	return s.repo.Create(ctx, &domain.Notification{
		UserID:  userID,
		Type:    domain.NotifPaymentRefunded,
		Title:   "Payment refunded",
		Message: fmt.Sprintf("Your payment of %.2f %s was refunded.", amount, currency),
		Data: map[string]any{
			"transaction_ref": reference,
		},
	})
}
