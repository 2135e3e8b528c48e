package domain

import "time"

// Favorite links a user to a saved property.
type Favorite struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	UserID     int64     `json:"user_id" gorm:"not null;index;uniqueIndex:idx_user_property"`
	PropertyID int64     `json:"property_id" gorm:"not null;index;uniqueIndex:idx_user_property"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`

	User     *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Property *Property `json:"property,omitempty" gorm:"foreignKey:PropertyID"`
}

func (Favorite) TableName() string {
	return "favorites"
}
