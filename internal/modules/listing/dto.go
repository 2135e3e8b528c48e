package listing

type CreatePropertyRequest struct {
	Title         string   `json:"title" binding:"required"`
	Description   string   `json:"description"`
	PropertyType  string   `json:"property_type" binding:"required"`
	Address       string   `json:"address" binding:"required"`
	City          string   `json:"city" binding:"required"`
	Country       string   `json:"country" binding:"required"`
	MaxGuests     int      `json:"max_guests" binding:"required,gt=0"`
	Bedrooms      int      `json:"bedrooms"`
	Bathrooms     int      `json:"bathrooms"`
	PricePerNight float64  `json:"price_per_night" binding:"required,gt=0"`
	Currency      string   `json:"currency"`
	Amenities     []string `json:"amenities"`
	Photos        []string `json:"photos"`
}

type UpdatePropertyRequest struct {
	Title         *string   `json:"title"`
	Description   *string   `json:"description"`
	Address       *string   `json:"address"`
	City          *string   `json:"city"`
	Country       *string   `json:"country"`
	MaxGuests     *int      `json:"max_guests"`
	Bedrooms      *int      `json:"bedrooms"`
	Bathrooms     *int      `json:"bathrooms"`
	PricePerNight *float64  `json:"price_per_night"`
	Amenities     *[]string `json:"amenities"`
	Photos        *[]string `json:"photos"`
	IsActive      *bool     `json:"is_active"`
}
