package domain

import "time"

type PropertyType string

const (
	PropertyEntirePlace PropertyType = "entire_place"
	PropertyPrivateRoom PropertyType = "private_room"
	PropertySharedRoom  PropertyType = "shared_room"
)

type Property struct {
	ID            int64        `json:"id"`
	HostID        int64        `json:"host_id"`
	Title         string       `json:"title" validate:"required"`
	Description   string       `json:"description,omitempty"`
	PropertyType  PropertyType `json:"property_type"`
	Address       string       `json:"address"`
	City          string       `json:"city"`
	Country       string       `json:"country"`
	MaxGuests     int          `json:"max_guests" validate:"required,gt=0"`
	Bedrooms      int          `json:"bedrooms"`
	Bathrooms     int          `json:"bathrooms"`
	PricePerNight float64      `json:"price_per_night" validate:"required,gte=0"`
	Currency      string       `json:"currency"`
	Amenities     []string     `json:"amenities,omitempty" gorm:"type:json;serializer:json"`
	Photos        []string     `json:"photos,omitempty" gorm:"type:json;serializer:json"`
	IsActive      bool         `json:"is_active"`
	Rating        float64      `json:"rating"`
	TotalReviews  int          `json:"total_reviews"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
	DeletedAt     *time.Time   `json:"-"`
}
