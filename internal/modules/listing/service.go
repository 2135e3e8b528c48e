package listing

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"stayhub/internal/cache"
	"stayhub/internal/domain"
	"stayhub/internal/repository"
)

type Service struct {
	propertyRepo *repository.PropertyRepository
	cache        *cache.Client
	logger       *zap.Logger
}

// NewService builds the listing service. cache may be nil when redis is
// not configured; every lookup then goes straight to the database.
func NewService(propertyRepo *repository.PropertyRepository, cache *cache.Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{propertyRepo: propertyRepo, cache: cache, logger: logger}
}

func parsePropertyType(s string) (domain.PropertyType, error) {
	switch domain.PropertyType(s) {
	case domain.PropertyEntirePlace, domain.PropertyPrivateRoom, domain.PropertySharedRoom:
		return domain.PropertyType(s), nil
	}
	return "", ErrInvalidPropertyType
}

func (s *Service) Create(ctx context.Context, hostID int64, req CreatePropertyRequest) (*domain.Property, error) {
	propertyType, err := parsePropertyType(req.PropertyType)
	if err != nil {
		return nil, err
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	property := &domain.Property{
		HostID:        hostID,
		Title:         req.Title,
		Description:   req.Description,
		PropertyType:  propertyType,
		Address:       req.Address,
		City:          req.City,
		Country:       req.Country,
		MaxGuests:     req.MaxGuests,
		Bedrooms:      req.Bedrooms,
		Bathrooms:     req.Bathrooms,
		PricePerNight: req.PricePerNight,
		Currency:      currency,
		Amenities:     req.Amenities,
		Photos:        req.Photos,
		IsActive:      true,
	}

	if err := s.propertyRepo.Create(ctx, property); err != nil {
		return nil, err
	}
	return property, nil
}

// GetByID serves reads through the cache. Cache failures are logged and
// the database answers instead.
func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Property, error) {
	if s.cache != nil {
		cached, err := s.cache.GetProperty(ctx, id)
		if err != nil {
			s.logger.Warn("property cache read failed", zap.Int64("property_id", id), zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	property, err := s.propertyRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetProperty(ctx, property); err != nil {
			s.logger.Warn("property cache write failed", zap.Int64("property_id", id), zap.Error(err))
		}
	}
	return property, nil
}

func (s *Service) List(ctx context.Context, f repository.PropertyFilters) ([]domain.Property, int64, error) {
	return s.propertyRepo.GetAll(ctx, f)
}

func (s *Service) GetByHost(ctx context.Context, hostID int64) ([]domain.Property, error) {
	return s.propertyRepo.GetByHostID(ctx, hostID)
}

func (s *Service) Update(ctx context.Context, userID, propertyID int64, req UpdatePropertyRequest) (*domain.Property, error) {
	property, err := s.propertyRepo.GetByID(ctx, propertyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if property.HostID != userID {
		return nil, ErrForbidden
	}

	if req.Title != nil {
		property.Title = *req.Title
	}
	if req.Description != nil {
		property.Description = *req.Description
	}
	if req.Address != nil {
		property.Address = *req.Address
	}
	if req.City != nil {
		property.City = *req.City
	}
	if req.Country != nil {
		property.Country = *req.Country
	}
	if req.MaxGuests != nil && *req.MaxGuests > 0 {
		property.MaxGuests = *req.MaxGuests
	}
	if req.Bedrooms != nil {
		property.Bedrooms = *req.Bedrooms
	}
	if req.Bathrooms != nil {
		property.Bathrooms = *req.Bathrooms
	}
	if req.PricePerNight != nil && *req.PricePerNight > 0 {
		property.PricePerNight = *req.PricePerNight
	}
	if req.Amenities != nil {
		property.Amenities = *req.Amenities
	}
	if req.Photos != nil {
		property.Photos = *req.Photos
	}
	if req.IsActive != nil {
		property.IsActive = *req.IsActive
	}

	if err := s.propertyRepo.Update(ctx, property); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateProperty(ctx, propertyID); err != nil {
			s.logger.Warn("property cache invalidation failed", zap.Int64("property_id", propertyID), zap.Error(err))
		}
	}
	return property, nil
}
