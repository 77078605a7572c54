package rides

import (
	"context"
	"testing"
	"time"

	"github.com/avelichko/ridepool/internal/apperrors"
	"github.com/avelichko/ridepool/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type MockRideRepository struct {
	mock.Mock
}

func (m *MockRideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	args := m.Called(ctx, ride)
	return args.Error(0)
}

func (m *MockRideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ride), args.Error(1)
}

func (m *MockRideRepository) ListByDriver(ctx context.Context, driverID string) ([]domain.Ride, error) {
	args := m.Called(ctx, driverID)
	return args.Get(0).([]domain.Ride), args.Error(1)
}

func (m *MockRideRepository) Search(ctx context.Context, filter domain.RideFilter) ([]domain.Ride, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Ride), args.Error(1)
}

func (m *MockRideRepository) CompleteDeparted(ctx context.Context, before time.Time) ([]domain.Ride, error) {
	args := m.Called(ctx, before)
	return args.Get(0).([]domain.Ride), args.Error(1)
}

type MockVehicleRepository struct {
	mock.Mock
}

func (m *MockVehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	args := m.Called(ctx, vehicle)
	return args.Error(0)
}

func (m *MockVehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}

func (m *MockVehicleRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Vehicle, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]domain.Vehicle), args.Error(1)
}

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) CascadeCancel(ctx context.Context, ride *domain.Ride) ([]domain.Booking, error) {
	args := m.Called(ctx, ride)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetSearch(ctx context.Context, filter domain.RideFilter) ([]domain.Ride, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Ride), args.Error(1)
}

func (m *MockCache) SetSearch(ctx context.Context, filter domain.RideFilter, rides []domain.Ride) error {
	args := m.Called(ctx, filter, rides)
	return args.Error(0)
}

func newTestService(rides *MockRideRepository, vehicles *MockVehicleRepository, ledger *MockLedger, cache Cache) *RideService {
	return NewRideService(rides, vehicles, ledger, cache, nil, "", zap.NewNop())
}

func validInput() CreateRideInput {
	return CreateRideInput{
		VehicleID:     "vehicle-1",
		Origin:        "Campus",
		Destination:   "Airport",
		DepartureTime: time.Now().Add(24 * time.Hour),
		PricePerSeat:  "12.50",
	}
}

func TestRideService_Create_Success(t *testing.T) {
	mockRides := &MockRideRepository{}
	mockVehicles := &MockVehicleRepository{}
	svc := newTestService(mockRides, mockVehicles, &MockLedger{}, nil)
	ctx := context.Background()

	mockVehicles.On("GetByID", ctx, "vehicle-1").Return(&domain.Vehicle{
		ID:         "vehicle-1",
		OwnerID:    "driver-1",
		SeatsTotal: 4,
	}, nil).Once()
	mockRides.On("Create", ctx, mock.AnythingOfType("*domain.Ride")).Return(nil).Once()

	ride, err := svc.Create(ctx, validInput(), domain.Principal{UserID: "driver-1"})
	assert.NoError(t, err)
	assert.Equal(t, domain.RideStatusScheduled, ride.Status)
	assert.Equal(t, 4, ride.SeatsTotal)
	assert.Equal(t, 4, ride.SeatsAvailable)
	assert.Equal(t, int64(1250), ride.PriceCents)
	assert.Equal(t, "driver-1", ride.DriverID)
	assert.NotEmpty(t, ride.ID)

	mockRides.AssertExpectations(t)
	mockVehicles.AssertExpectations(t)
}

func TestRideService_Create_ValidationErrors(t *testing.T) {
	svc := newTestService(&MockRideRepository{}, &MockVehicleRepository{}, &MockLedger{}, nil)
	ctx := context.Background()

	past := validInput()
	past.DepartureTime = time.Now().Add(-time.Hour)

	badPrice := validInput()
	badPrice.PricePerSeat = "12.505"

	negativePrice := validInput()
	negativePrice.PricePerSeat = "-3.00"

	noRoute := validInput()
	noRoute.Origin = ""

	arrivalBefore := validInput()
	earlier := arrivalBefore.DepartureTime.Add(-time.Hour)
	arrivalBefore.ArrivalTime = &earlier

	testCases := []struct {
		name  string
		input CreateRideInput
	}{
		{"departure in the past", past},
		{"too many decimal places", badPrice},
		{"negative price", negativePrice},
		{"missing origin", noRoute},
		{"arrival before departure", arrivalBefore},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ride, err := svc.Create(ctx, tc.input, domain.Principal{UserID: "driver-1"})
			assert.ErrorIs(t, err, apperrors.ErrValidation)
			assert.Nil(t, ride)
		})
	}
}

func TestRideService_Create_NotVehicleOwner(t *testing.T) {
	mockVehicles := &MockVehicleRepository{}
	svc := newTestService(&MockRideRepository{}, mockVehicles, &MockLedger{}, nil)
	ctx := context.Background()

	mockVehicles.On("GetByID", ctx, "vehicle-1").Return(&domain.Vehicle{
		ID:         "vehicle-1",
		OwnerID:    "someone-else",
		SeatsTotal: 4,
	}, nil).Once()

	_, err := svc.Create(ctx, validInput(), domain.Principal{UserID: "driver-1"})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestRideService_Cancel_CascadesIntoLedger(t *testing.T) {
	mockRides := &MockRideRepository{}
	mockLedger := &MockLedger{}
	svc := newTestService(mockRides, &MockVehicleRepository{}, mockLedger, nil)
	ctx := context.Background()

	ride := &domain.Ride{ID: "ride-1", DriverID: "driver-1", Status: domain.RideStatusScheduled}
	mockRides.On("GetByID", ctx, "ride-1").Return(ride, nil).Once()
	mockLedger.On("CascadeCancel", ctx, ride).Return([]domain.Booking{{ID: "b1"}, {ID: "b2"}}, nil).Once()

	assert.NoError(t, svc.Cancel(ctx, "ride-1", domain.Principal{UserID: "driver-1"}))
	mockLedger.AssertExpectations(t)
}

func TestRideService_Cancel_Forbidden(t *testing.T) {
	mockRides := &MockRideRepository{}
	mockLedger := &MockLedger{}
	svc := newTestService(mockRides, &MockVehicleRepository{}, mockLedger, nil)
	ctx := context.Background()

	mockRides.On("GetByID", ctx, "ride-1").Return(&domain.Ride{
		ID: "ride-1", DriverID: "driver-1", Status: domain.RideStatusScheduled,
	}, nil).Once()

	err := svc.Cancel(ctx, "ride-1", domain.Principal{UserID: "passenger-1"})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	mockLedger.AssertNotCalled(t, "CascadeCancel")
}

func TestRideService_Cancel_Idempotent(t *testing.T) {
	mockRides := &MockRideRepository{}
	mockLedger := &MockLedger{}
	svc := newTestService(mockRides, &MockVehicleRepository{}, mockLedger, nil)
	ctx := context.Background()

	mockRides.On("GetByID", ctx, "ride-1").Return(&domain.Ride{
		ID: "ride-1", DriverID: "driver-1", Status: domain.RideStatusCancelled,
	}, nil).Once()

	assert.NoError(t, svc.Cancel(ctx, "ride-1", domain.Principal{UserID: "driver-1"}))
	mockLedger.AssertNotCalled(t, "CascadeCancel")
}

func TestRideService_Search_CacheHit(t *testing.T) {
	mockRides := &MockRideRepository{}
	mockCache := &MockCache{}
	svc := newTestService(mockRides, &MockVehicleRepository{}, &MockLedger{}, mockCache)
	ctx := context.Background()

	filter := domain.RideFilter{Origin: "Campus"}
	cached := []domain.Ride{{ID: "ride-1"}}
	mockCache.On("GetSearch", ctx, filter).Return(cached, nil).Once()

	rides, err := svc.Search(ctx, filter)
	assert.NoError(t, err)
	assert.Equal(t, cached, rides)
	mockRides.AssertNotCalled(t, "Search")
}

func TestRideService_Search_CacheMissFillsCache(t *testing.T) {
	mockRides := &MockRideRepository{}
	mockCache := &MockCache{}
	svc := newTestService(mockRides, &MockVehicleRepository{}, &MockLedger{}, mockCache)
	ctx := context.Background()

	filter := domain.RideFilter{Destination: "Airport"}
	found := []domain.Ride{{ID: "ride-1"}, {ID: "ride-2"}}
	mockCache.On("GetSearch", ctx, filter).Return(nil, nil).Once()
	mockRides.On("Search", ctx, filter).Return(found, nil).Once()
	mockCache.On("SetSearch", ctx, filter, found).Return(nil).Once()

	rides, err := svc.Search(ctx, filter)
	assert.NoError(t, err)
	assert.Equal(t, found, rides)
	mockCache.AssertExpectations(t)
}

func TestRideService_CompleteDeparted(t *testing.T) {
	mockRides := &MockRideRepository{}
	svc := newTestService(mockRides, &MockVehicleRepository{}, &MockLedger{}, nil)
	ctx := context.Background()

	swept := []domain.Ride{{ID: "ride-1", Status: domain.RideStatusCompleted}}
	mockRides.On("CompleteDeparted", ctx, mock.AnythingOfType("time.Time")).Return(swept, nil).Once()

	completed, err := svc.CompleteDeparted(ctx)
	assert.NoError(t, err)
	assert.Len(t, completed, 1)
}
