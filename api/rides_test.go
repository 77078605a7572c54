package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/avelichko/ridepool/internal/apperrors"
	"github.com/avelichko/ridepool/internal/domain"
	"github.com/avelichko/ridepool/internal/service/rides"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockRideUseCase is a mock implementation of rides.RideUseCase.
type MockRideUseCase struct {
	mock.Mock
}

func (m *MockRideUseCase) Create(ctx context.Context, input rides.CreateRideInput, driver domain.Principal) (*domain.Ride, error) {
	args := m.Called(ctx, input, driver)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ride), args.Error(1)
}

func (m *MockRideUseCase) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ride), args.Error(1)
}

func (m *MockRideUseCase) Cancel(ctx context.Context, rideID string, actor domain.Principal) error {
	args := m.Called(ctx, rideID, actor)
	return args.Error(0)
}

func (m *MockRideUseCase) ListByDriver(ctx context.Context, driver domain.Principal) ([]domain.Ride, error) {
	args := m.Called(ctx, driver)
	return args.Get(0).([]domain.Ride), args.Error(1)
}

func (m *MockRideUseCase) Search(ctx context.Context, filter domain.RideFilter) ([]domain.Ride, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Ride), args.Error(1)
}

func (m *MockRideUseCase) CompleteDeparted(ctx context.Context) ([]domain.Ride, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Ride), args.Error(1)
}

func TestRideHandler_create(t *testing.T) {
	mockService := &MockRideUseCase{}
	handler := NewRideHandler(mockService)

	driver := domain.Principal{UserID: "driver-1"}
	departure := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)

	body, _ := json.Marshal(gin.H{
		"vehicle_id":     "vehicle-1",
		"origin":         "Campus",
		"destination":    "Airport",
		"departure_time": departure.Format(time.RFC3339),
		"price_per_seat": "12.50",
	})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/rides", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(principalKey, driver)

	created := &domain.Ride{
		ID:             "ride-1",
		DriverID:       "driver-1",
		VehicleID:      "vehicle-1",
		Origin:         "Campus",
		Destination:    "Airport",
		DepartureTime:  departure,
		SeatsTotal:     4,
		SeatsAvailable: 4,
		PriceCents:     1250,
		Status:         domain.RideStatusScheduled,
	}
	mockService.On("Create", c.Request.Context(), mock.AnythingOfType("rides.CreateRideInput"), driver).Return(created, nil)

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response rideResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "ride-1", response.ID)
	assert.Equal(t, "scheduled", response.Status)
	assert.Equal(t, "12.50", response.PricePerSeat)
	assert.Equal(t, 4, response.SeatsAvailable)

	mockService.AssertExpectations(t)
}

func TestRideHandler_create_missingFields(t *testing.T) {
	handler := NewRideHandler(&MockRideUseCase{})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/rides", bytes.NewReader([]byte(`{"origin":"Campus"}`)))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(principalKey, domain.Principal{UserID: "driver-1"})

	handler.create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRideHandler_get_notFound(t *testing.T) {
	mockService := &MockRideUseCase{}
	handler := NewRideHandler(mockService)

	c, w := testContext(t, "GET", "/rides/missing", domain.Principal{UserID: "user-1"})
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	mockService.On("GetByID", c.Request.Context(), "missing").Return(nil, apperrors.NotFoundf("ride missing"))

	handler.get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRideHandler_search(t *testing.T) {
	mockService := &MockRideUseCase{}
	handler := NewRideHandler(mockService)

	c, w := testContext(t, "GET", "/rides/search?origin=Campus&date=2026-09-15", domain.Principal{UserID: "user-1"})

	mockService.On("Search", c.Request.Context(), mock.MatchedBy(func(f domain.RideFilter) bool {
		return f.Origin == "Campus" && f.Date != nil && f.Date.Format("2006-01-02") == "2026-09-15"
	})).Return([]domain.Ride{{ID: "ride-1", Status: domain.RideStatusScheduled}}, nil)

	handler.search(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response []rideResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response, 1)
}

func TestRideHandler_search_badDate(t *testing.T) {
	handler := NewRideHandler(&MockRideUseCase{})

	c, w := testContext(t, "GET", "/rides/search?date=tomorrow", domain.Principal{UserID: "user-1"})

	handler.search(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRideHandler_cancel(t *testing.T) {
	mockService := &MockRideUseCase{}
	handler := NewRideHandler(mockService)

	driver := domain.Principal{UserID: "driver-1"}
	c, w := testContext(t, "DELETE", "/rides/ride-1", driver)
	c.Params = gin.Params{{Key: "id", Value: "ride-1"}}

	mockService.On("Cancel", c.Request.Context(), "ride-1", driver).Return(nil)

	handler.cancel(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, w.Code)
	mockService.AssertExpectations(t)
}
