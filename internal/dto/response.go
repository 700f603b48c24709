package dto

import (
	"time"

	"github.com/gearshare/rental-service/internal/models"
)

// DateLayout is the wire format for booking dates. Bookings are day-granular.
const DateLayout = "2006-01-02"

type BookingResponse struct {
	ID          uint                 `json:"id"`
	VehicleID   uint                 `json:"vehicle_id"`
	RenterID    string               `json:"renter_id"`
	StartDate   string               `json:"start_date"`
	EndDate     string               `json:"end_date"`
	Status      models.BookingStatus `json:"status"`
	TotalAmount float64              `json:"total_amount"`
	PlatformFee float64              `json:"platform_fee"`
	CreatedAt   time.Time            `json:"created_at"`
}

type AvailabilityResponse struct {
	VehicleID uint   `json:"vehicle_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Available bool   `json:"available"`
}

type EarningsResponse struct {
	OwnerID string  `json:"owner_id"`
	Total   float64 `json:"total_earnings"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func ToBookingResponse(b *models.Booking) BookingResponse {
	return BookingResponse{
		ID:          b.ID,
		VehicleID:   b.VehicleID,
		RenterID:    b.RenterID,
		StartDate:   b.StartDate.Format(DateLayout),
		EndDate:     b.EndDate.Format(DateLayout),
		Status:      b.Status,
		TotalAmount: b.TotalAmount,
		PlatformFee: b.PlatformFee,
		CreatedAt:   b.CreatedAt,
	}
}

func ToBookingResponses(bookings []models.Booking) []BookingResponse {
	resp := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		resp[i] = ToBookingResponse(&b)
	}
	return resp
}
