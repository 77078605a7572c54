package repository

import (
	"errors"
	"testing"

	"github.com/avelichko/ridepool/internal/apperrors"
	"github.com/avelichko/ridepool/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	pool := &pgxpool.Pool{}
	assert.NotNil(t, NewRideRepository(pool))
	assert.NotNil(t, NewBookingRepository(pool))
	assert.NotNil(t, NewVehicleRepository(pool))
	assert.NotNil(t, NewUserRepository(pool))
}

func TestSeatDenial(t *testing.T) {
	assert.ErrorIs(t, seatDenial(domain.RideStatusScheduled), apperrors.ErrNoSeats)
	assert.ErrorIs(t, seatDenial(domain.RideStatusCompleted), apperrors.ErrRideNotScheduled)
	assert.ErrorIs(t, seatDenial(domain.RideStatusCancelled), apperrors.ErrRideNotScheduled)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("boom")))
	assert.False(t, isUniqueViolation(nil))
}
