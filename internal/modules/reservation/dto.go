package reservation

type CancelRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type AvailabilityResponse struct {
	PropertyID int64  `json:"property_id"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
	Available  bool   `json:"available"`
}
