package api

import (
	"time"

	"github.com/avelichko/ridepool/internal/apperrors"
	"github.com/avelichko/ridepool/internal/domain"
	"github.com/gin-gonic/gin"
)

// respondError keeps the error taxonomy intact on the wire: every
// kind maps to its own status code and stable "error" value.
func respondError(c *gin.Context, err error) {
	c.JSON(apperrors.HTTPStatus(err), gin.H{
		"error":   apperrors.Kind(err),
		"message": err.Error(),
	})
}

type rideResponse struct {
	ID             string  `json:"ride_id"`
	DriverID       string  `json:"driver_id"`
	VehicleID      string  `json:"vehicle_id"`
	Origin         string  `json:"origin"`
	Destination    string  `json:"destination"`
	DepartureTime  string  `json:"departure_time"`
	ArrivalTime    *string `json:"arrival_time,omitempty"`
	SeatsTotal     int     `json:"seats_total"`
	SeatsAvailable int     `json:"seats_available"`
	PricePerSeat   string  `json:"price_per_seat"`
	Status         string  `json:"status"`
}

func toRideResponse(r *domain.Ride) rideResponse {
	resp := rideResponse{
		ID:             r.ID,
		DriverID:       r.DriverID,
		VehicleID:      r.VehicleID,
		Origin:         r.Origin,
		Destination:    r.Destination,
		DepartureTime:  r.DepartureTime.Format(time.RFC3339),
		SeatsTotal:     r.SeatsTotal,
		SeatsAvailable: r.SeatsAvailable,
		PricePerSeat:   domain.FormatPrice(r.PriceCents),
		Status:         string(r.Status),
	}
	if r.ArrivalTime != nil {
		arrival := r.ArrivalTime.Format(time.RFC3339)
		resp.ArrivalTime = &arrival
	}
	return resp
}

func toRideResponses(rides []domain.Ride) []rideResponse {
	out := make([]rideResponse, 0, len(rides))
	for i := range rides {
		out = append(out, toRideResponse(&rides[i]))
	}
	return out
}

type bookingResponse struct {
	ID          string        `json:"booking_id"`
	RideID      string        `json:"ride_id"`
	PassengerID string        `json:"passenger_id"`
	Status      string        `json:"status"`
	CreatedAt   string        `json:"booking_time"`
	Ride        *rideResponse `json:"ride,omitempty"`
}

func toBookingResponse(b *domain.Booking, ride *domain.Ride) bookingResponse {
	resp := bookingResponse{
		ID:          b.ID,
		RideID:      b.RideID,
		PassengerID: b.PassengerID,
		Status:      string(b.Status),
		CreatedAt:   b.CreatedAt.Format(time.RFC3339),
	}
	if ride != nil {
		r := toRideResponse(ride)
		resp.Ride = &r
	}
	return resp
}
