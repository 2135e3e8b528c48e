package review

type CreateReviewRequest struct {
	PropertyID    int64  `json:"property_id" binding:"required"`
	ReservationID *int64 `json:"reservation_id"`
	Rating        int    `json:"rating" binding:"required,min=1,max=5"`
	Comment       string `json:"comment"`
}

type HostResponseRequest struct {
	Response string `json:"response" binding:"required"`
}
