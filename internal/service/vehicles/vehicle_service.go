package vehicles

import (
	"context"

	"github.com/avelichko/ridepool/internal/apperrors"
	"github.com/avelichko/ridepool/internal/domain"
	"github.com/avelichko/ridepool/internal/repository"
	"github.com/google/uuid"
)

type VehicleUseCase interface {
	Register(ctx context.Context, input RegisterVehicleInput, owner domain.Principal) (*domain.Vehicle, error)
	GetByID(ctx context.Context, id string) (*domain.Vehicle, error)
	ListByOwner(ctx context.Context, owner domain.Principal) ([]domain.Vehicle, error)
}

type RegisterVehicleInput struct {
	Make         string
	Model        string
	Color        string
	LicensePlate string
	SeatsTotal   int
	Year         int
	Notes        string
}

type VehicleService struct {
	vehicles repository.VehicleRepository
}

func NewVehicleService(vehicles repository.VehicleRepository) *VehicleService {
	return &VehicleService{vehicles: vehicles}
}

func (s *VehicleService) Register(ctx context.Context, input RegisterVehicleInput, owner domain.Principal) (*domain.Vehicle, error) {
	if input.Make == "" || input.Model == "" {
		return nil, apperrors.Validationf("make and model are required")
	}
	if input.LicensePlate == "" {
		return nil, apperrors.Validationf("license plate is required")
	}
	if input.SeatsTotal <= 0 {
		return nil, apperrors.Validationf("seats_total must be positive")
	}

	vehicle := &domain.Vehicle{
		ID:           uuid.NewString(),
		OwnerID:      owner.UserID,
		Make:         input.Make,
		Model:        input.Model,
		Color:        input.Color,
		LicensePlate: input.LicensePlate,
		SeatsTotal:   input.SeatsTotal,
		Year:         input.Year,
		Notes:        input.Notes,
	}
	if err := s.vehicles.Create(ctx, vehicle); err != nil {
		return nil, err
	}
	return vehicle, nil
}

func (s *VehicleService) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	return s.vehicles.GetByID(ctx, id)
}

func (s *VehicleService) ListByOwner(ctx context.Context, owner domain.Principal) ([]domain.Vehicle, error) {
	return s.vehicles.ListByOwner(ctx, owner.UserID)
}

var _ VehicleUseCase = (*VehicleService)(nil)
