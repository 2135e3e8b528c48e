package domain

import "time"

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCancelled ReservationStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// Reservation is a confirmed or pending stay. The [CheckIn, CheckOut)
// range is half-open: a check-out day may coincide with another
// reservation's check-in day without conflict.
type Reservation struct {
	ID            int64             `json:"id"`
	UserID        int64             `json:"user_id" validate:"required"`
	PropertyID    int64             `json:"property_id" validate:"required"`
	HostID        int64             `json:"host_id"`
	CheckIn       time.Time         `json:"check_in" validate:"required"`
	CheckOut      time.Time         `json:"check_out" validate:"required"`
	Guests        int               `json:"guests" validate:"required,gt=0"`
	TotalPrice    float64           `json:"total_price" validate:"required,gte=0"`
	Currency      string            `json:"currency"`
	Status        ReservationStatus `json:"status"`
	PaymentStatus PaymentStatus     `json:"payment_status"`
	GuestNotes    string            `json:"guest_notes,omitempty" gorm:"type:text"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	CancelledAt   *time.Time        `json:"cancelled_at,omitempty"`

	User     *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Property *Property `json:"property,omitempty" gorm:"foreignKey:PropertyID"`
}
