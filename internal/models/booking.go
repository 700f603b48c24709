package models

import "time"

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusRejected  BookingStatus = "rejected"
	StatusCompleted BookingStatus = "completed"
)

// ActiveStatuses are the statuses that hold a vehicle's dates. Cancelled,
// rejected and completed bookings do not block new reservations.
var ActiveStatuses = []BookingStatus{StatusPending, StatusConfirmed}

func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusRejected, StatusCompleted:
		return true
	}
	return false
}

type Booking struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	VehicleID   uint          `gorm:"not null;index" json:"vehicle_id"`
	RenterID    string        `gorm:"not null;index" json:"renter_id"`
	StartDate   time.Time     `gorm:"type:date;not null" json:"start_date"`
	EndDate     time.Time     `gorm:"type:date;not null" json:"end_date"`
	Status      BookingStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	TotalAmount float64       `gorm:"not null" json:"total_amount"`
	PlatformFee float64       `gorm:"not null" json:"platform_fee"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`

	Vehicle *Vehicle `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
}

// transitions is the booking state machine. A status absent from the map is
// terminal; a booking never re-enters pending.
var transitions = map[BookingStatus][]BookingStatus{
	StatusPending:   {StatusConfirmed, StatusRejected, StatusCancelled},
	StatusConfirmed: {StatusCancelled, StatusCompleted},
}

// CanTransition reports whether the state machine permits moving a booking
// from one status to another.
func CanTransition(from, to BookingStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Overlaps reports whether two inclusive date ranges share at least one day.
// Ranges that merely touch (one ends the day the other starts) still overlap.
func Overlaps(startA, endA, startB, endB time.Time) bool {
	return !(endA.Before(startB) || startA.After(endB))
}
