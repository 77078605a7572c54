package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avelichko/ridepool/internal/apperrors"
	"github.com/avelichko/ridepool/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RideRepository interface {
	Create(ctx context.Context, ride *domain.Ride) error
	GetByID(ctx context.Context, id string) (*domain.Ride, error)
	ListByDriver(ctx context.Context, driverID string) ([]domain.Ride, error)
	Search(ctx context.Context, filter domain.RideFilter) ([]domain.Ride, error)
	CompleteDeparted(ctx context.Context, before time.Time) ([]domain.Ride, error)
}

type PGRideRepository struct {
	db *pgxpool.Pool
}

func NewRideRepository(db *pgxpool.Pool) RideRepository {
	return &PGRideRepository{db: db}
}

const rideColumns = `id, driver_id, vehicle_id, origin, destination, departure_time, arrival_time, seats_total, seats_available, price_cents, status, created_at, updated_at`

func scanRide(row pgx.Row) (*domain.Ride, error) {
	var r domain.Ride
	if err := row.Scan(&r.ID, &r.DriverID, &r.VehicleID, &r.Origin, &r.Destination, &r.DepartureTime, &r.ArrivalTime, &r.SeatsTotal, &r.SeatsAvailable, &r.PriceCents, &r.Status, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *PGRideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	return r.db.QueryRow(ctx, `INSERT INTO rides (id, driver_id, vehicle_id, origin, destination, departure_time, arrival_time, seats_total, seats_available, price_cents, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`,
		ride.ID, ride.DriverID, ride.VehicleID, ride.Origin, ride.Destination, ride.DepartureTime, ride.ArrivalTime, ride.SeatsTotal, ride.SeatsAvailable, ride.PriceCents, ride.Status).
		Scan(&ride.CreatedAt, &ride.UpdatedAt)
}

func (r *PGRideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	ride, err := scanRide(r.db.QueryRow(ctx, `SELECT `+rideColumns+` FROM rides WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFoundf("ride %s", id)
		}
		return nil, err
	}
	return ride, nil
}

func (r *PGRideRepository) ListByDriver(ctx context.Context, driverID string) ([]domain.Ride, error) {
	rows, err := r.db.Query(ctx, `SELECT `+rideColumns+` FROM rides WHERE driver_id=$1 ORDER BY departure_time DESC`, driverID)
	if err != nil {
		return nil, err
	}
	return collectRides(rows)
}

func (r *PGRideRepository) Search(ctx context.Context, filter domain.RideFilter) ([]domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE status=$1 AND departure_time >= now()`
	args := []any{domain.RideStatusScheduled}

	if filter.Origin != "" {
		args = append(args, "%"+filter.Origin+"%")
		query += fmt.Sprintf(" AND origin ILIKE $%d", len(args))
	}
	if filter.Destination != "" {
		args = append(args, "%"+filter.Destination+"%")
		query += fmt.Sprintf(" AND destination ILIKE $%d", len(args))
	}
	if filter.Date != nil {
		dayStart := time.Date(filter.Date.Year(), filter.Date.Month(), filter.Date.Day(), 0, 0, 0, 0, filter.Date.Location())
		args = append(args, dayStart)
		query += fmt.Sprintf(" AND departure_time >= $%d", len(args))
		args = append(args, dayStart.AddDate(0, 0, 1))
		query += fmt.Sprintf(" AND departure_time < $%d", len(args))
	}
	query += " ORDER BY departure_time"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectRides(rows)
}

func (r *PGRideRepository) CompleteDeparted(ctx context.Context, before time.Time) ([]domain.Ride, error) {
	rows, err := r.db.Query(ctx, `UPDATE rides SET status=$1, updated_at=now() WHERE status=$2 AND departure_time <= $3 RETURNING `+rideColumns,
		domain.RideStatusCompleted, domain.RideStatusScheduled, before)
	if err != nil {
		return nil, err
	}
	return collectRides(rows)
}

func collectRides(rows pgx.Rows) ([]domain.Ride, error) {
	defer rows.Close()

	rides := make([]domain.Ride, 0)
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		rides = append(rides, *ride)
	}
	return rides, rows.Err()
}

var _ RideRepository = (*PGRideRepository)(nil)
