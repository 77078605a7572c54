package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/avelichko/ridepool/internal/apperrors"
	"github.com/avelichko/ridepool/internal/domain"
	"github.com/avelichko/ridepool/internal/kafka"
	"github.com/avelichko/ridepool/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingUseCase interface {
	Book(ctx context.Context, rideID string, passenger domain.Principal) (*domain.Booking, *domain.Ride, error)
	Cancel(ctx context.Context, bookingID string, actor domain.Principal) error
	ListByPassenger(ctx context.Context, passenger domain.Principal) ([]domain.BookingDetail, error)
	CascadeCancel(ctx context.Context, ride *domain.Ride) ([]domain.Booking, error)
}

// Locker grants the per-ride exclusive scope. Everything that touches
// seats_available for a ride runs between Acquire and release.
type Locker interface {
	Acquire(ctx context.Context, key string) (func(), error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// BookingService is the ledger tying seats_available to the set of
// confirmed bookings. All capacity-affecting operations on a ride
// serialize through the locker; the repositories commit each mutation
// in a single transaction so no reader observes a half-applied state.
type BookingService struct {
	bookings           repository.BookingRepository
	rides              repository.RideRepository
	locker             Locker
	producer           Producer
	eventsTopic        string
	notificationsTopic string
	log                *zap.Logger
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	rides repository.RideRepository,
	locker Locker,
	producer Producer,
	eventsTopic string,
	log *zap.Logger,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:    bookings,
		rides:       rides,
		locker:      locker,
		producer:    producer,
		eventsTopic: eventsTopic,
		log:         log,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Book reserves one seat for the passenger. Validation and commit run
// inside the ride's exclusive scope, so when several passengers race
// for the last seat exactly one sees seats_available > 0.
func (s *BookingService) Book(ctx context.Context, rideID string, passenger domain.Principal) (*domain.Booking, *domain.Ride, error) {
	release, err := s.locker.Acquire(ctx, rideID)
	if err != nil {
		return nil, nil, err
	}

	booking, ride, err := s.bookLocked(ctx, rideID, passenger)
	release()
	if err != nil {
		return nil, nil, err
	}

	if err := s.publish(ctx, "booking_created", booking, ride); err != nil {
		s.log.Warn("publish booking_created failed", zap.String("booking_id", booking.ID), zap.Error(err))
	}
	return booking, ride, nil
}

func (s *BookingService) bookLocked(ctx context.Context, rideID string, passenger domain.Principal) (*domain.Booking, *domain.Ride, error) {
	// State is reloaded inside the lock; anything read earlier may be
	// stale by now.
	ride, err := s.rides.GetByID(ctx, rideID)
	if err != nil {
		return nil, nil, err
	}
	if ride.Status != domain.RideStatusScheduled {
		return nil, nil, fmt.Errorf("ride %s: %w", rideID, apperrors.ErrRideNotScheduled)
	}
	if ride.DriverID == passenger.UserID {
		return nil, nil, fmt.Errorf("ride %s: %w", rideID, apperrors.ErrSelfBooking)
	}
	exists, err := s.bookings.ActiveExists(ctx, rideID, passenger.UserID)
	if err != nil {
		return nil, nil, err
	}
	if exists {
		return nil, nil, fmt.Errorf("ride %s: %w", rideID, apperrors.ErrAlreadyBooked)
	}
	if ride.SeatsAvailable == 0 {
		return nil, nil, fmt.Errorf("ride %s: %w", rideID, apperrors.ErrNoSeats)
	}

	booking := &domain.Booking{
		ID:          uuid.NewString(),
		RideID:      rideID,
		PassengerID: passenger.UserID,
	}
	committed, err := s.bookings.CreateConfirmed(ctx, booking)
	if err != nil {
		return nil, nil, err
	}
	return booking, committed, nil
}

// Cancel releases the passenger's seat. Both the passenger and the
// ride's driver may cancel; cancelling an already-cancelled booking
// succeeds without mutation.
func (s *BookingService) Cancel(ctx context.Context, bookingID string, actor domain.Principal) error {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	ride, err := s.rides.GetByID(ctx, booking.RideID)
	if err != nil {
		return err
	}
	if actor.UserID != booking.PassengerID && actor.UserID != ride.DriverID {
		return apperrors.Forbiddenf("booking %s does not belong to caller", bookingID)
	}
	if booking.Status == domain.BookingStatusCancelled {
		return nil
	}

	release, err := s.locker.Acquire(ctx, booking.RideID)
	if err != nil {
		return err
	}
	committed, err := s.cancelLocked(ctx, bookingID)
	release()
	if err != nil {
		return err
	}
	if committed == nil {
		return nil
	}

	if err := s.publish(ctx, "booking_cancelled", booking, committed); err != nil {
		s.log.Warn("publish booking_cancelled failed", zap.String("booking_id", bookingID), zap.Error(err))
	}
	return nil
}

// cancelLocked returns a nil ride when a concurrent cancel got there
// first; the caller treats that as success.
func (s *BookingService) cancelLocked(ctx context.Context, bookingID string) (*domain.Ride, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status == domain.BookingStatusCancelled {
		return nil, nil
	}
	return s.bookings.CancelConfirmed(ctx, bookingID)
}

// CascadeCancel flips every confirmed booking on the ride to
// cancelled as one atomic batch, under the same lock individual
// bookings use. Authorization is the ride lifecycle manager's job.
func (s *BookingService) CascadeCancel(ctx context.Context, ride *domain.Ride) ([]domain.Booking, error) {
	release, err := s.locker.Acquire(ctx, ride.ID)
	if err != nil {
		return nil, err
	}
	cancelled, err := s.bookings.CancelByRide(ctx, ride.ID)
	release()
	if err != nil {
		return nil, err
	}

	// Events carry the ride as the cascade left it, not the caller's
	// pre-cancel snapshot.
	after := *ride
	after.Status = domain.RideStatusCancelled
	after.SeatsAvailable = after.SeatsTotal

	for i := range cancelled {
		if err := s.publish(ctx, "booking_cancelled", &cancelled[i], &after); err != nil {
			s.log.Warn("publish booking_cancelled failed", zap.String("booking_id", cancelled[i].ID), zap.Error(err))
		}
	}
	return cancelled, nil
}

func (s *BookingService) ListByPassenger(ctx context.Context, passenger domain.Principal) ([]domain.BookingDetail, error) {
	return s.bookings.ListByPassenger(ctx, passenger.UserID)
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking, ride *domain.Ride) error {
	if s.producer == nil || s.eventsTopic == "" {
		return nil
	}
	event := kafka.RideEvent{
		Type:        eventType,
		BookingID:   booking.ID,
		RideID:      ride.ID,
		PassengerID: booking.PassengerID,
		DriverID:    ride.DriverID,
		Origin:      ride.Origin,
		Destination: ride.Destination,
		Status:      string(ride.Status),
		OccurredAt:  time.Now(),
	}
	if err := s.producer.Publish(ctx, s.eventsTopic, ride.ID, event); err != nil {
		return err
	}
	if s.notificationsTopic != "" {
		return s.producer.Publish(ctx, s.notificationsTopic, ride.ID, event)
	}
	return nil
}

var _ BookingUseCase = (*BookingService)(nil)
