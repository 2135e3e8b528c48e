package review

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"stayhub/internal/domain"
	"stayhub/internal/repository"
)

// StayGate answers whether the user has a completed, paid stay at the
// property. Reviews are gated on it.
type StayGate interface {
	HasCompletedStay(ctx context.Context, userID, propertyID int64, now time.Time) (bool, error)
}

type PropertyGate interface {
	GetByID(ctx context.Context, id int64) (*domain.Property, error)
	UpdateRating(ctx context.Context, id int64, rating float64, totalReviews int64) error
}

type NotificationSender interface {
	NotifyNewReview(ctx context.Context, hostID, propertyID int64, rating int) error
}

type Service struct {
	reviews      *repository.ReviewRepository
	reservations StayGate
	properties   PropertyGate
	notifs       NotificationSender
	logger       *zap.Logger
}

func NewService(
	reviews *repository.ReviewRepository,
	reservations StayGate,
	properties PropertyGate,
	notifs NotificationSender,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		reviews:      reviews,
		reservations: reservations,
		properties:   properties,
		notifs:       notifs,
		logger:       logger,
	}
}

func (s *Service) Create(ctx context.Context, userID int64, req CreateReviewRequest) (*domain.Review, error) {
	if userID <= 0 || req.PropertyID <= 0 || req.Rating < 1 || req.Rating > 5 {
		return nil, ErrInvalidRequest
	}

	ok, err := s.reservations.HasCompletedStay(ctx, userID, req.PropertyID, time.Now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrReviewNotAllowed
	}

	exists, err := s.reviews.ExistsForProperty(ctx, userID, req.PropertyID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyReviewed
	}

	rv := &domain.Review{
		PropertyID:    req.PropertyID,
		UserID:        userID,
		ReservationID: req.ReservationID,
		Rating:        req.Rating,
		Comment:       req.Comment,
	}

	if err := s.reviews.Create(ctx, rv); err != nil {
		return nil, err
	}

	s.refreshPropertyRating(ctx, req.PropertyID)

	if property, err := s.properties.GetByID(ctx, req.PropertyID); err == nil && s.notifs != nil {
		_ = s.notifs.NotifyNewReview(ctx, property.HostID, req.PropertyID, req.Rating)
	}

	return rv, nil
}

func (s *Service) GetByProperty(ctx context.Context, propertyID int64, limit, offset int) ([]domain.Review, int64, error) {
	if propertyID <= 0 {
		return nil, 0, ErrInvalidRequest
	}
	return s.reviews.GetByPropertyID(ctx, propertyID, limit, offset)
}

// AddHostResponse lets the host of the reviewed property answer once.
func (s *Service) AddHostResponse(ctx context.Context, reviewID, userID int64, text string) (*domain.Review, error) {
	if reviewID <= 0 || userID <= 0 || text == "" {
		return nil, ErrInvalidRequest
	}

	rv, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	property, err := s.properties.GetByID(ctx, rv.PropertyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if property.HostID != userID {
		return nil, ErrForbidden
	}

	if err := s.reviews.SetHostResponse(ctx, reviewID, text, time.Now().UTC()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.reviews.GetByID(ctx, reviewID)
}

// refreshPropertyRating recomputes the denormalized aggregate. Failures
// only log; the review itself is already stored.
func (s *Service) refreshPropertyRating(ctx context.Context, propertyID int64) {
	avg, count, err := s.reviews.AggregateForProperty(ctx, propertyID)
	if err == nil {
		err = s.properties.UpdateRating(ctx, propertyID, avg, count)
	}
	if err != nil {
		s.logger.Warn("property rating refresh failed",
			zap.Int64("property_id", propertyID),
			zap.Error(err))
	}
}
