package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/gearshare/rental-service/internal/models"
	"github.com/gearshare/rental-service/internal/repository"
)

var (
	ErrVehicleNotFound    = errors.New("vehicle not found")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrDateRangeInvalid   = errors.New("invalid date range")
	ErrVehicleNotApproved = errors.New("vehicle is not approved for rental")
	ErrVehicleUnavailable = errors.New("vehicle is unavailable for the requested dates")
	ErrInvalidTransition  = errors.New("invalid booking status transition")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// EventPublisher notifies the rest of the marketplace about booking
// lifecycle changes. Delivery is best-effort; reservation state never
// depends on it.
type EventPublisher interface {
	BookingCreated(booking *models.Booking)
	BookingStatusChanged(booking *models.Booking, previous models.BookingStatus)
}

type ReservationService interface {
	CheckAvailability(ctx context.Context, vehicleID uint, start, end time.Time) (bool, error)
	CreateBooking(ctx context.Context, vehicleID uint, renterID string, start, end time.Time, totalAmount, platformFee float64) (*models.Booking, error)
	GetBooking(ctx context.Context, id uint) (*models.Booking, error)
	GetVehicle(ctx context.Context, id uint) (*models.Vehicle, error)
	ListVehicleBookings(ctx context.Context, vehicleID uint, status *models.BookingStatus) ([]models.Booking, error)
	ListRenterBookings(ctx context.Context, renterID string) ([]models.Booking, error)
}

type reservationService struct {
	bookingRepo repository.BookingRepository
	vehicleRepo repository.VehicleRepository
	publisher   EventPublisher
	opTimeout   time.Duration
}

func NewReservationService(bookingRepo repository.BookingRepository, vehicleRepo repository.VehicleRepository, publisher EventPublisher, opTimeout time.Duration) ReservationService {
	return &reservationService{
		bookingRepo: bookingRepo,
		vehicleRepo: vehicleRepo,
		publisher:   publisher,
		opTimeout:   opTimeout,
	}
}

// CheckAvailability is a public read: true iff no pending or confirmed
// booking for the vehicle overlaps the inclusive range.
func (s *reservationService) CheckAvailability(ctx context.Context, vehicleID uint, start, end time.Time) (bool, error) {
	start, end = truncateDates(start, end)
	if start.After(end) {
		return false, ErrDateRangeInvalid
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var count int64
	err := s.retryRead(func() error {
		var innerErr error
		count, innerErr = s.bookingRepo.CountOverlapping(ctx, s.bookingRepo.GetDB(), vehicleID, start, end)
		return innerErr
	})
	if err != nil {
		return false, mapStorageErr(err)
	}
	return count == 0, nil
}

// CreateBooking reserves the vehicle for [start, end]. The overlap check and
// the insert run inside one transaction holding a row lock on the vehicle, so
// two concurrent calls for the same vehicle serialize and at most one of two
// overlapping requests succeeds. The Postgres exclusion constraint on
// bookings backs the lock up: a conflicting insert that slips past it aborts
// with an exclusion violation, surfaced as ErrVehicleUnavailable.
func (s *reservationService) CreateBooking(ctx context.Context, vehicleID uint, renterID string, start, end time.Time, totalAmount, platformFee float64) (*models.Booking, error) {
	start, end = truncateDates(start, end)
	if err := validateRange(start, end); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var booking *models.Booking
	for attempt := 0; ; attempt++ {
		b, err := s.createOnce(ctx, vehicleID, renterID, start, end, totalAmount, platformFee)
		if err == nil {
			booking = b
			break
		}
		if isExclusionViolation(err) {
			return nil, ErrVehicleUnavailable
		}
		if isSerializationConflict(err) && attempt < storageRetries {
			continue
		}
		return nil, mapStorageErr(err)
	}

	if s.publisher != nil {
		s.publisher.BookingCreated(booking)
	}
	return booking, nil
}

func (s *reservationService) createOnce(ctx context.Context, vehicleID uint, renterID string, start, end time.Time, totalAmount, platformFee float64) (*models.Booking, error) {
	var result *models.Booking

	err := s.bookingRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the vehicle row: serializes concurrent booking attempts for
		// this vehicle without blocking other vehicles.
		vehicle, err := s.vehicleRepo.FindByIDForUpdate(ctx, tx, vehicleID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVehicleNotFound
			}
			return err
		}

		if !vehicle.Approved {
			return ErrVehicleNotApproved
		}

		overlapping, err := s.bookingRepo.CountOverlapping(ctx, tx, vehicleID, start, end)
		if err != nil {
			return err
		}
		if overlapping > 0 {
			return ErrVehicleUnavailable
		}

		booking := &models.Booking{
			VehicleID:   vehicleID,
			RenterID:    renterID,
			StartDate:   start,
			EndDate:     end,
			Status:      models.StatusPending,
			TotalAmount: totalAmount,
			PlatformFee: platformFee,
		}
		if err := s.bookingRepo.Create(ctx, tx, booking); err != nil {
			return err
		}
		result = booking
		return nil
	})

	return result, err
}

func (s *reservationService) GetBooking(ctx context.Context, id uint) (*models.Booking, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var booking *models.Booking
	err := s.retryRead(func() error {
		var innerErr error
		booking, innerErr = s.bookingRepo.FindByID(ctx, id)
		return innerErr
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, mapStorageErr(err)
	}
	return booking, nil
}

func (s *reservationService) GetVehicle(ctx context.Context, id uint) (*models.Vehicle, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	vehicle, err := s.vehicleRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, mapStorageErr(err)
	}
	return vehicle, nil
}

func (s *reservationService) ListVehicleBookings(ctx context.Context, vehicleID uint, status *models.BookingStatus) ([]models.Booking, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	bookings, err := s.bookingRepo.FindByVehicleID(ctx, vehicleID, status)
	if err != nil {
		return nil, mapStorageErr(err)
	}
	return bookings, nil
}

func (s *reservationService) ListRenterBookings(ctx context.Context, renterID string) ([]models.Booking, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	bookings, err := s.bookingRepo.FindByRenterID(ctx, renterID)
	if err != nil {
		return nil, mapStorageErr(err)
	}
	return bookings, nil
}

func (s *reservationService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opTimeout)
}

// retryRead re-runs a read a bounded number of times when the store is
// briefly unreachable or the read lost a serialization race.
func (s *reservationService) retryRead(fn func() error) error {
	var err error
	for attempt := 0; attempt <= storageRetries; attempt++ {
		err = fn()
		if err == nil || !(isStorageUnavailable(err) || isSerializationConflict(err)) {
			return err
		}
	}
	return err
}

// validateRange rejects inverted ranges and ranges starting in the past.
// Dates are compared at day precision in UTC.
func validateRange(start, end time.Time) error {
	if start.After(end) {
		return ErrDateRangeInvalid
	}
	today := truncateDate(time.Now().UTC())
	if start.Before(today) {
		return ErrDateRangeInvalid
	}
	return nil
}

func truncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func truncateDates(start, end time.Time) (time.Time, time.Time) {
	return truncateDate(start), truncateDate(end)
}
