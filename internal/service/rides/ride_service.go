package rides

import (
	"context"
	"time"

	"github.com/avelichko/ridepool/internal/apperrors"
	"github.com/avelichko/ridepool/internal/domain"
	"github.com/avelichko/ridepool/internal/kafka"
	"github.com/avelichko/ridepool/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type RideUseCase interface {
	Create(ctx context.Context, input CreateRideInput, driver domain.Principal) (*domain.Ride, error)
	GetByID(ctx context.Context, id string) (*domain.Ride, error)
	Cancel(ctx context.Context, rideID string, actor domain.Principal) error
	ListByDriver(ctx context.Context, driver domain.Principal) ([]domain.Ride, error)
	Search(ctx context.Context, filter domain.RideFilter) ([]domain.Ride, error)
	CompleteDeparted(ctx context.Context) ([]domain.Ride, error)
}

type CreateRideInput struct {
	VehicleID     string
	Origin        string
	Destination   string
	DepartureTime time.Time
	ArrivalTime   *time.Time
	// PricePerSeat is a decimal string ("12.50").
	PricePerSeat string
}

// Ledger is the slice of the booking ledger the lifecycle manager
// needs: cascading a ride cancellation into its bookings.
type Ledger interface {
	CascadeCancel(ctx context.Context, ride *domain.Ride) ([]domain.Booking, error)
}

type Cache interface {
	GetSearch(ctx context.Context, filter domain.RideFilter) ([]domain.Ride, error)
	SetSearch(ctx context.Context, filter domain.RideFilter, rides []domain.Ride) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type RideService struct {
	rides       repository.RideRepository
	vehicles    repository.VehicleRepository
	ledger      Ledger
	cache       Cache
	producer    Producer
	eventsTopic string
	log         *zap.Logger
}

func NewRideService(
	rides repository.RideRepository,
	vehicles repository.VehicleRepository,
	ledger Ledger,
	cache Cache,
	producer Producer,
	eventsTopic string,
	log *zap.Logger,
) *RideService {
	return &RideService{
		rides:       rides,
		vehicles:    vehicles,
		ledger:      ledger,
		cache:       cache,
		producer:    producer,
		eventsTopic: eventsTopic,
		log:         log,
	}
}

// Create schedules a ride. Seat inventory is fixed here, copied from
// the vehicle's capacity, and only the booking ledger mutates it
// afterwards.
func (s *RideService) Create(ctx context.Context, input CreateRideInput, driver domain.Principal) (*domain.Ride, error) {
	if input.Origin == "" || input.Destination == "" {
		return nil, apperrors.Validationf("origin and destination are required")
	}
	if !input.DepartureTime.After(time.Now()) {
		return nil, apperrors.Validationf("departure time must be in the future")
	}
	if input.ArrivalTime != nil && !input.ArrivalTime.After(input.DepartureTime) {
		return nil, apperrors.Validationf("arrival time must be after departure")
	}
	priceCents, err := domain.ParsePrice(input.PricePerSeat)
	if err != nil {
		return nil, apperrors.Validationf("invalid price: %v", err)
	}
	if priceCents < 0 {
		return nil, apperrors.Validationf("price per seat cannot be negative")
	}

	vehicle, err := s.vehicles.GetByID(ctx, input.VehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle.OwnerID != driver.UserID {
		return nil, apperrors.Forbiddenf("vehicle %s is not owned by caller", input.VehicleID)
	}

	ride := &domain.Ride{
		ID:             uuid.NewString(),
		DriverID:       driver.UserID,
		VehicleID:      vehicle.ID,
		Origin:         input.Origin,
		Destination:    input.Destination,
		DepartureTime:  input.DepartureTime,
		ArrivalTime:    input.ArrivalTime,
		SeatsTotal:     vehicle.SeatsTotal,
		SeatsAvailable: vehicle.SeatsTotal,
		PriceCents:     priceCents,
		Status:         domain.RideStatusScheduled,
	}
	if err := s.rides.Create(ctx, ride); err != nil {
		return nil, err
	}
	return ride, nil
}

func (s *RideService) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	return s.rides.GetByID(ctx, id)
}

// Cancel transitions the ride to cancelled and cascades into the
// booking ledger. Cancelling an already-cancelled ride is a no-op.
func (s *RideService) Cancel(ctx context.Context, rideID string, actor domain.Principal) error {
	ride, err := s.rides.GetByID(ctx, rideID)
	if err != nil {
		return err
	}
	if ride.DriverID != actor.UserID {
		return apperrors.Forbiddenf("only the driver can cancel ride %s", rideID)
	}
	if ride.Status == domain.RideStatusCancelled {
		return nil
	}

	cancelled, err := s.ledger.CascadeCancel(ctx, ride)
	if err != nil {
		return err
	}
	s.log.Info("ride cancelled",
		zap.String("ride_id", rideID),
		zap.Int("bookings_cancelled", len(cancelled)),
	)

	s.publishRideEvent(ctx, "ride_cancelled", ride, domain.RideStatusCancelled)
	return nil
}

func (s *RideService) ListByDriver(ctx context.Context, driver domain.Principal) ([]domain.Ride, error) {
	return s.rides.ListByDriver(ctx, driver.UserID)
}

func (s *RideService) Search(ctx context.Context, filter domain.RideFilter) ([]domain.Ride, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetSearch(ctx, filter); err == nil && cached != nil {
			return cached, nil
		}
	}

	rides, err := s.rides.Search(ctx, filter)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetSearch(ctx, filter, rides)
	}
	return rides, nil
}

// CompleteDeparted flips scheduled rides whose departure has passed
// to completed. Run periodically by the worker.
func (s *RideService) CompleteDeparted(ctx context.Context) ([]domain.Ride, error) {
	completed, err := s.rides.CompleteDeparted(ctx, time.Now())
	if err != nil {
		return nil, err
	}
	for i := range completed {
		s.publishRideEvent(ctx, "ride_completed", &completed[i], domain.RideStatusCompleted)
	}
	return completed, nil
}

func (s *RideService) publishRideEvent(ctx context.Context, eventType string, ride *domain.Ride, status domain.RideStatus) {
	if s.producer == nil || s.eventsTopic == "" {
		return
	}
	event := kafka.RideEvent{
		Type:        eventType,
		RideID:      ride.ID,
		DriverID:    ride.DriverID,
		Origin:      ride.Origin,
		Destination: ride.Destination,
		Status:      string(status),
		OccurredAt:  time.Now(),
	}
	if err := s.producer.Publish(ctx, s.eventsTopic, ride.ID, event); err != nil {
		s.log.Warn("publish ride event failed", zap.String("ride_id", ride.ID), zap.Error(err))
	}
}

var _ RideUseCase = (*RideService)(nil)
