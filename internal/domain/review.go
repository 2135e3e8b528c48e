package domain

import "time"

type Review struct {
	ID            int64      `json:"id"`
	PropertyID    int64      `json:"property_id"`
	UserID        int64      `json:"user_id"`
	ReservationID *int64     `json:"reservation_id,omitempty"`
	Rating        int        `json:"rating"`
	Comment       string     `json:"comment,omitempty"`
	HostResponse  *string    `json:"host_response,omitempty"`
	RespondedAt   *time.Time `json:"responded_at,omitempty"`
	IsHidden      bool       `json:"is_hidden"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
