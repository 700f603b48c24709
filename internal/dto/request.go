package dto

type CreateBookingRequest struct {
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	TotalAmount float64 `json:"total_amount"`
	PlatformFee float64 `json:"platform_fee"`
}

type UpdateBookingStatusRequest struct {
	Status string `json:"status"`
}
