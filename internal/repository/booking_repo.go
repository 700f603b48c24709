package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gearshare/rental-service/internal/models"
)

type BookingRepository interface {
	Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error
	FindByID(ctx context.Context, id uint) (*models.Booking, error)
	FindByVehicleID(ctx context.Context, vehicleID uint, status *models.BookingStatus) ([]models.Booking, error)
	FindByRenterID(ctx context.Context, renterID string) ([]models.Booking, error)
	CountOverlapping(ctx context.Context, tx *gorm.DB, vehicleID uint, start, end time.Time) (int64, error)
	UpdateStatusFrom(ctx context.Context, id uint, from, to models.BookingStatus) (bool, error)
	CompleteElapsed(ctx context.Context, before time.Time) ([]models.Booking, error)
	SumOwnerEarnings(ctx context.Context, ownerID string) (float64, error)
	GetDB() *gorm.DB
}

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *bookingRepository) Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	return tx.WithContext(ctx).Create(booking).Error
}

func (r *bookingRepository) FindByID(ctx context.Context, id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.WithContext(ctx).Preload("Vehicle").First(&booking, id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindByVehicleID(ctx context.Context, vehicleID uint, status *models.BookingStatus) ([]models.Booking, error) {
	var bookings []models.Booking
	q := r.db.WithContext(ctx).Where("vehicle_id = ?", vehicleID)
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	if err := q.Order("start_date ASC, id ASC").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) FindByRenterID(ctx context.Context, renterID string) ([]models.Booking, error) {
	var bookings []models.Booking
	if err := r.db.WithContext(ctx).
		Where("renter_id = ?", renterID).
		Order("start_date DESC, id DESC").
		Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

// CountOverlapping counts pending/confirmed bookings for the vehicle whose
// inclusive date range shares at least one day with [start, end].
func (r *bookingRepository) CountOverlapping(ctx context.Context, tx *gorm.DB, vehicleID uint, start, end time.Time) (int64, error) {
	var count int64
	err := tx.WithContext(ctx).
		Model(&models.Booking{}).
		Where("vehicle_id = ? AND status IN ?", vehicleID, models.ActiveStatuses).
		Where("NOT (end_date < ? OR start_date > ?)", start, end).
		Count(&count).Error
	return count, err
}

// UpdateStatusFrom performs a compare-and-set on the booking's status.
// Returns false when the booking is no longer in the expected status, which
// means a concurrent transition won.
func (r *bookingRepository) UpdateStatusFrom(ctx context.Context, id uint, from, to models.BookingStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// CompleteElapsed moves every confirmed booking whose end date has passed to
// completed. Returns the bookings it completed so the caller can publish a
// status-change event for each, matching the gate-driven transitions.
func (r *bookingRepository) CompleteElapsed(ctx context.Context, before time.Time) ([]models.Booking, error) {
	var completed []models.Booking
	err := r.db.WithContext(ctx).
		Model(&completed).
		Clauses(clause.Returning{}).
		Where("status = ? AND end_date < ?", models.StatusConfirmed, before).
		Update("status", models.StatusCompleted).Error
	return completed, err
}

// SumOwnerEarnings totals confirmed and completed booking amounts across all
// of the owner's vehicles. Recomputed on demand; bookings are the single
// source of truth for earnings.
func (r *bookingRepository) SumOwnerEarnings(ctx context.Context, ownerID string) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Joins("JOIN vehicles ON vehicles.id = bookings.vehicle_id").
		Where("vehicles.owner_id = ?", ownerID).
		Where("bookings.status IN ?", []models.BookingStatus{models.StatusConfirmed, models.StatusCompleted}).
		Select("COALESCE(SUM(bookings.total_amount), 0)").
		Scan(&total).Error
	return total, err
}
