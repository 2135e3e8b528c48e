package repository

import (
	"context"

	"stayhub/internal/domain"

	"gorm.io/gorm"
)

type PropertyRepository struct {
	db *gorm.DB
}

func NewPropertyRepository(db *gorm.DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

// PropertyFilters narrows the public listing query.
type PropertyFilters struct {
	City      string
	Country   string
	MinPrice  float64
	MaxPrice  float64
	MinGuests int
	Limit     int
	Offset    int
}

func (r *PropertyRepository) Create(ctx context.Context, p *domain.Property) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PropertyRepository) GetByID(ctx context.Context, id int64) (*domain.Property, error) {
	var p domain.Property
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PropertyRepository) Update(ctx context.Context, p *domain.Property) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *PropertyRepository) GetByHostID(ctx context.Context, hostID int64) ([]domain.Property, error) {
	var out []domain.Property
	err := r.db.WithContext(ctx).
		Where("host_id = ?", hostID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *PropertyRepository) UpdateRating(ctx context.Context, id int64, rating float64, totalReviews int64) error {
	return r.db.WithContext(ctx).Model(&domain.Property{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"rating":        rating,
			"total_reviews": totalReviews,
		}).Error
}

func (r *PropertyRepository) GetAll(ctx context.Context, f PropertyFilters) ([]domain.Property, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Property{}).Where("is_active = ?", true)

	if f.City != "" {
		q = q.Where("city = ?", f.City)
	}
	if f.Country != "" {
		q = q.Where("country = ?", f.Country)
	}
	if f.MinPrice > 0 {
		q = q.Where("price_per_night >= ?", f.MinPrice)
	}
	if f.MaxPrice > 0 {
		q = q.Where("price_per_night <= ?", f.MaxPrice)
	}
	if f.MinGuests > 0 {
		q = q.Where("max_guests >= ?", f.MinGuests)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []domain.Property
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
