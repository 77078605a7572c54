package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/avelichko/ridepool/internal/apperrors"
	"github.com/avelichko/ridepool/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository interface {
	// CreateConfirmed inserts a confirmed booking and decrements the
	// ride's seats_available in one transaction. Returns the ride as
	// committed.
	CreateConfirmed(ctx context.Context, booking *domain.Booking) (*domain.Ride, error)
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	ActiveExists(ctx context.Context, rideID, passengerID string) (bool, error)
	// CancelConfirmed flips a confirmed booking to cancelled and
	// returns the seat to the ride in one transaction.
	CancelConfirmed(ctx context.Context, bookingID string) (*domain.Ride, error)
	// CancelByRide cancels the ride and every confirmed booking on it
	// atomically, restoring seats_available to seats_total.
	CancelByRide(ctx context.Context, rideID string) ([]domain.Booking, error)
	ListByPassenger(ctx context.Context, passengerID string) ([]domain.BookingDetail, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, ride_id, passenger_id, status, created_at, updated_at`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.RideID, &b.PassengerID, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *PGBookingRepository) CreateConfirmed(ctx context.Context, booking *domain.Booking) (*domain.Ride, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Conditional decrement doubles as the storage-level capacity
	// guard: zero rows means no seat was there to take.
	ride, err := scanRide(tx.QueryRow(ctx, `UPDATE rides SET seats_available = seats_available - 1, updated_at = now()
		WHERE id=$1 AND status=$2 AND seats_available > 0
		RETURNING `+rideColumns, booking.RideID, domain.RideStatusScheduled))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Another process (the completion sweep runs outside this
			// one) may have moved the ride out of scheduled; tell that
			// apart from a genuinely full ride.
			var status domain.RideStatus
			if err := tx.QueryRow(ctx, `SELECT status FROM rides WHERE id=$1`, booking.RideID).Scan(&status); err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return nil, apperrors.NotFoundf("ride %s", booking.RideID)
				}
				return nil, err
			}
			return nil, seatDenial(status)
		}
		return nil, err
	}

	booking.Status = domain.BookingStatusConfirmed
	if err := tx.QueryRow(ctx, `INSERT INTO bookings (id, ride_id, passenger_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`, booking.ID, booking.RideID, booking.PassengerID, booking.Status).
		Scan(&booking.CreatedAt, &booking.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.ErrAlreadyBooked
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return ride, nil
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFoundf("booking %s", id)
		}
		return nil, err
	}
	return b, nil
}

func (r *PGBookingRepository) ActiveExists(ctx context.Context, rideID, passengerID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE ride_id=$1 AND passenger_id=$2 AND status=$3)`,
		rideID, passengerID, domain.BookingStatusConfirmed).Scan(&exists)
	return exists, err
}

func (r *PGBookingRepository) CancelConfirmed(ctx context.Context, bookingID string) (*domain.Ride, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var rideID string
	if err := tx.QueryRow(ctx, `UPDATE bookings SET status=$1, updated_at=now() WHERE id=$2 AND status=$3 RETURNING ride_id`,
		domain.BookingStatusCancelled, bookingID, domain.BookingStatusConfirmed).Scan(&rideID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFoundf("confirmed booking %s", bookingID)
		}
		return nil, err
	}

	// Releasing a seat can never push seats_available past
	// seats_total. Zero rows here is a broken ledger and must abort
	// the transaction rather than clamp.
	ride, err := scanRide(tx.QueryRow(ctx, `UPDATE rides SET seats_available = seats_available + 1, updated_at = now()
		WHERE id=$1 AND seats_available < seats_total
		RETURNING `+rideColumns, rideID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("seat release for ride %s would exceed capacity", rideID)
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return ride, nil
}

func (r *PGBookingRepository) CancelByRide(ctx context.Context, rideID string) ([]domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `UPDATE bookings SET status=$1, updated_at=now() WHERE ride_id=$2 AND status=$3 RETURNING `+bookingColumns,
		domain.BookingStatusCancelled, rideID, domain.BookingStatusConfirmed)
	if err != nil {
		return nil, err
	}
	cancelled := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		cancelled = append(cancelled, *b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `UPDATE rides SET status=$1, seats_available=seats_total, updated_at=now() WHERE id=$2`,
		domain.RideStatusCancelled, rideID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return cancelled, nil
}

func (r *PGBookingRepository) ListByPassenger(ctx context.Context, passengerID string) ([]domain.BookingDetail, error) {
	rows, err := r.db.Query(ctx, `SELECT b.id, b.ride_id, b.passenger_id, b.status, b.created_at, b.updated_at,
			r.id, r.driver_id, r.vehicle_id, r.origin, r.destination, r.departure_time, r.arrival_time, r.seats_total, r.seats_available, r.price_cents, r.status, r.created_at, r.updated_at
		FROM bookings b
		JOIN rides r ON r.id = b.ride_id
		WHERE b.passenger_id=$1
		ORDER BY b.created_at DESC`, passengerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := make([]domain.BookingDetail, 0)
	for rows.Next() {
		var d domain.BookingDetail
		if err := rows.Scan(
			&d.Booking.ID, &d.Booking.RideID, &d.Booking.PassengerID, &d.Booking.Status, &d.Booking.CreatedAt, &d.Booking.UpdatedAt,
			&d.Ride.ID, &d.Ride.DriverID, &d.Ride.VehicleID, &d.Ride.Origin, &d.Ride.Destination, &d.Ride.DepartureTime, &d.Ride.ArrivalTime, &d.Ride.SeatsTotal, &d.Ride.SeatsAvailable, &d.Ride.PriceCents, &d.Ride.Status, &d.Ride.CreatedAt, &d.Ride.UpdatedAt,
		); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

// seatDenial explains a failed seat decrement: the ride either left
// the scheduled state or ran out of seats.
func seatDenial(status domain.RideStatus) error {
	if status != domain.RideStatusScheduled {
		return apperrors.ErrRideNotScheduled
	}
	return apperrors.ErrNoSeats
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ BookingRepository = (*PGBookingRepository)(nil)
