package models

import "time"

// Vehicle is a read model synced from the listing service. The reservation
// core never mutates vehicle attributes; it needs OwnerID for authorization
// and Approved to gate new bookings. The row also serves as the locking
// anchor that serializes concurrent booking creation per vehicle.
type Vehicle struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OwnerID   string    `gorm:"not null;index" json:"owner_id"`
	Make      string    `json:"make"`
	Model     string    `json:"model"`
	DailyRate float64   `gorm:"not null" json:"daily_rate"`
	Approved  bool      `gorm:"not null;default:false" json:"approved"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
