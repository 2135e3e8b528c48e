package repository

import (
	"context"
	"time"

	"stayhub/internal/domain"

	"gorm.io/gorm"
)

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) Create(ctx context.Context, rev *domain.Review) error {
	return r.db.WithContext(ctx).Create(rev).Error
}

func (r *ReviewRepository) GetByPropertyID(ctx context.Context, propertyID int64, limit, offset int) ([]domain.Review, int64, error) {
	var total int64
	base := r.db.WithContext(ctx).Model(&domain.Review{}).
		Where("property_id = ? AND is_hidden = ?", propertyID, false)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []domain.Review
	q := base.Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *ReviewRepository) GetByID(ctx context.Context, id int64) (*domain.Review, error) {
	var rev domain.Review
	if err := r.db.WithContext(ctx).First(&rev, id).Error; err != nil {
		return nil, err
	}
	return &rev, nil
}

func (r *ReviewRepository) SetHostResponse(ctx context.Context, id int64, text string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&domain.Review{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"host_response": text,
			"responded_at":  at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AggregateForProperty returns the average rating and review count over
// visible reviews.
func (r *ReviewRepository) AggregateForProperty(ctx context.Context, propertyID int64) (float64, int64, error) {
	var out struct {
		Avg   float64
		Count int64
	}
	err := r.db.WithContext(ctx).Model(&domain.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where("property_id = ? AND is_hidden = ?", propertyID, false).
		Scan(&out).Error
	return out.Avg, out.Count, err
}

func (r *ReviewRepository) ExistsForProperty(ctx context.Context, userID, propertyID int64) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&domain.Review{}).
		Where("user_id = ? AND property_id = ?", userID, propertyID).
		Count(&cnt).Error
	return cnt > 0, err
}
