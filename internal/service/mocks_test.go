package service

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/gearshare/rental-service/internal/models"
)

// --- Mock BookingRepository ---

type mockBookingRepo struct {
	createFn           func(ctx context.Context, tx *gorm.DB, b *models.Booking) error
	findByIDFn         func(ctx context.Context, id uint) (*models.Booking, error)
	findByVehicleFn    func(ctx context.Context, vehicleID uint, status *models.BookingStatus) ([]models.Booking, error)
	findByRenterFn     func(ctx context.Context, renterID string) ([]models.Booking, error)
	countOverlappingFn func(ctx context.Context, tx *gorm.DB, vehicleID uint, start, end time.Time) (int64, error)
	updateStatusFn     func(ctx context.Context, id uint, from, to models.BookingStatus) (bool, error)
	completeElapsedFn  func(ctx context.Context, before time.Time) ([]models.Booking, error)
	sumEarningsFn      func(ctx context.Context, ownerID string) (float64, error)
}

func (m *mockBookingRepo) Create(ctx context.Context, tx *gorm.DB, b *models.Booking) error {
	if m.createFn != nil {
		return m.createFn(ctx, tx, b)
	}
	return nil
}

func (m *mockBookingRepo) FindByID(ctx context.Context, id uint) (*models.Booking, error) {
	return m.findByIDFn(ctx, id)
}

func (m *mockBookingRepo) FindByVehicleID(ctx context.Context, vehicleID uint, status *models.BookingStatus) ([]models.Booking, error) {
	return m.findByVehicleFn(ctx, vehicleID, status)
}

func (m *mockBookingRepo) FindByRenterID(ctx context.Context, renterID string) ([]models.Booking, error) {
	return m.findByRenterFn(ctx, renterID)
}

func (m *mockBookingRepo) CountOverlapping(ctx context.Context, tx *gorm.DB, vehicleID uint, start, end time.Time) (int64, error) {
	return m.countOverlappingFn(ctx, tx, vehicleID, start, end)
}

func (m *mockBookingRepo) UpdateStatusFrom(ctx context.Context, id uint, from, to models.BookingStatus) (bool, error) {
	return m.updateStatusFn(ctx, id, from, to)
}

func (m *mockBookingRepo) CompleteElapsed(ctx context.Context, before time.Time) ([]models.Booking, error) {
	return m.completeElapsedFn(ctx, before)
}

func (m *mockBookingRepo) SumOwnerEarnings(ctx context.Context, ownerID string) (float64, error) {
	return m.sumEarningsFn(ctx, ownerID)
}

func (m *mockBookingRepo) GetDB() *gorm.DB { return nil }

// --- Mock VehicleRepository ---

type mockVehicleRepo struct {
	findByIDFn func(ctx context.Context, id uint) (*models.Vehicle, error)
}

func (m *mockVehicleRepo) FindByID(ctx context.Context, id uint) (*models.Vehicle, error) {
	return m.findByIDFn(ctx, id)
}

func (m *mockVehicleRepo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Vehicle, error) {
	return m.findByIDFn(ctx, id)
}

func (m *mockVehicleRepo) Upsert(ctx context.Context, vehicle *models.Vehicle) error { return nil }

// --- Mock EventPublisher ---

type mockPublisher struct {
	created []uint
	changed []string
}

func (m *mockPublisher) BookingCreated(b *models.Booking) {
	m.created = append(m.created, b.ID)
}

func (m *mockPublisher) BookingStatusChanged(b *models.Booking, previous models.BookingStatus) {
	m.changed = append(m.changed, string(previous)+">"+string(b.Status))
}
