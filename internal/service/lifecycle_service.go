package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/gearshare/rental-service/internal/models"
	"github.com/gearshare/rental-service/internal/policy"
	"github.com/gearshare/rental-service/internal/repository"
)

type LifecycleService interface {
	ApplyTransition(ctx context.Context, bookingID uint, target models.BookingStatus, principal models.Principal) (*models.Booking, error)
	GetOwnerEarnings(ctx context.Context, ownerID string) (float64, error)
	CompleteElapsed(ctx context.Context) (int64, error)
}

type lifecycleService struct {
	bookingRepo repository.BookingRepository
	publisher   EventPublisher
	opTimeout   time.Duration
}

func NewLifecycleService(bookingRepo repository.BookingRepository, publisher EventPublisher, opTimeout time.Duration) LifecycleService {
	return &lifecycleService{
		bookingRepo: bookingRepo,
		publisher:   publisher,
		opTimeout:   opTimeout,
	}
}

// verbs maps a requested target status to the policy verb guarding it.
var verbs = map[models.BookingStatus]policy.Verb{
	models.StatusConfirmed: policy.VerbConfirm,
	models.StatusRejected:  policy.VerbReject,
	models.StatusCancelled: policy.VerbCancel,
	models.StatusCompleted: policy.VerbComplete,
}

// ApplyTransition moves a booking to the requested status on behalf of the
// principal. The authorization gate runs before any state is touched; the
// state machine validates the transition shape; the write is a single-row
// compare-and-set, so no cross-vehicle locking is involved.
func (s *lifecycleService) ApplyTransition(ctx context.Context, bookingID uint, target models.BookingStatus, principal models.Principal) (*models.Booking, error) {
	verb, ok := verbs[target]
	if !ok {
		return nil, ErrInvalidTransition
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	booking, err := s.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, mapStorageErr(err)
	}

	ownerID := ""
	if booking.Vehicle != nil {
		ownerID = booking.Vehicle.OwnerID
	}
	if err := policy.Authorize(principal, policy.Action{
		Resource:   policy.ResourceBooking,
		ResourceID: booking.ID,
		Verb:       verb,
		OwnerID:    ownerID,
		RenterID:   booking.RenterID,
	}); err != nil {
		return nil, err
	}

	if !models.CanTransition(booking.Status, target) {
		return nil, ErrInvalidTransition
	}

	previous := booking.Status
	swapped, err := s.bookingRepo.UpdateStatusFrom(ctx, booking.ID, previous, target)
	if err != nil {
		return nil, mapStorageErr(err)
	}
	if !swapped {
		// A concurrent transition moved the booking first; the requested
		// transition is no longer valid from the state we just lost to.
		return nil, ErrInvalidTransition
	}

	booking.Status = target
	if s.publisher != nil {
		s.publisher.BookingStatusChanged(booking, previous)
	}
	return booking, nil
}

// GetOwnerEarnings sums total_amount over the owner's confirmed and
// completed bookings. Recomputed on demand rather than cached so bookings
// stay the single source of truth.
func (s *lifecycleService) GetOwnerEarnings(ctx context.Context, ownerID string) (float64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var total float64
	var err error
	for attempt := 0; attempt <= storageRetries; attempt++ {
		total, err = s.bookingRepo.SumOwnerEarnings(ctx, ownerID)
		if err == nil || !(isStorageUnavailable(err) || isSerializationConflict(err)) {
			break
		}
	}
	if err != nil {
		return 0, mapStorageErr(err)
	}
	return total, nil
}

// CompleteElapsed is the system sweep behind the confirmed -> completed
// transition: any confirmed booking whose end date is behind us is done.
// Runs on a timer, not on behalf of a principal, so it bypasses the gate.
func (s *lifecycleService) CompleteElapsed(ctx context.Context) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	today := truncateDate(time.Now().UTC())
	completed, err := s.bookingRepo.CompleteElapsed(ctx, today)
	if err != nil {
		return 0, mapStorageErr(err)
	}
	if s.publisher != nil {
		for i := range completed {
			s.publisher.BookingStatusChanged(&completed[i], models.StatusConfirmed)
		}
	}
	return int64(len(completed)), nil
}

func (s *lifecycleService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opTimeout)
}
