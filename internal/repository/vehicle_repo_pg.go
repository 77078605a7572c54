package repository

import (
	"context"
	"errors"

	"github.com/avelichko/ridepool/internal/apperrors"
	"github.com/avelichko/ridepool/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type VehicleRepository interface {
	Create(ctx context.Context, vehicle *domain.Vehicle) error
	GetByID(ctx context.Context, id string) (*domain.Vehicle, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Vehicle, error)
}

type PGVehicleRepository struct {
	db *pgxpool.Pool
}

func NewVehicleRepository(db *pgxpool.Pool) VehicleRepository {
	return &PGVehicleRepository{db: db}
}

const vehicleColumns = `id, owner_id, make, model, color, license_plate, seats_total, year, notes, created_at`

func scanVehicle(row pgx.Row) (*domain.Vehicle, error) {
	var v domain.Vehicle
	if err := row.Scan(&v.ID, &v.OwnerID, &v.Make, &v.Model, &v.Color, &v.LicensePlate, &v.SeatsTotal, &v.Year, &v.Notes, &v.CreatedAt); err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *PGVehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	err := r.db.QueryRow(ctx, `INSERT INTO vehicles (id, owner_id, make, model, color, license_plate, seats_total, year, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`,
		vehicle.ID, vehicle.OwnerID, vehicle.Make, vehicle.Model, vehicle.Color, vehicle.LicensePlate, vehicle.SeatsTotal, vehicle.Year, vehicle.Notes).
		Scan(&vehicle.CreatedAt)
	if isUniqueViolation(err) {
		return apperrors.Validationf("license plate %s already registered", vehicle.LicensePlate)
	}
	return err
}

func (r *PGVehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	v, err := scanVehicle(r.db.QueryRow(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFoundf("vehicle %s", id)
		}
		return nil, err
	}
	return v, nil
}

func (r *PGVehicleRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Vehicle, error) {
	rows, err := r.db.Query(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE owner_id=$1 ORDER BY created_at`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	vehicles := make([]domain.Vehicle, 0)
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, *v)
	}
	return vehicles, rows.Err()
}

var _ VehicleRepository = (*PGVehicleRepository)(nil)
