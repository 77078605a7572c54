package api

import (
	"net/http"

	"github.com/avelichko/ridepool/internal/domain"
	"github.com/avelichko/ridepool/internal/service/vehicles"
	"github.com/gin-gonic/gin"
)

type VehicleHandler struct {
	service vehicles.VehicleUseCase
}

func NewVehicleHandler(service vehicles.VehicleUseCase) *VehicleHandler {
	return &VehicleHandler{service: service}
}

func (h *VehicleHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("/mine", h.mine)
}

type createVehicleRequest struct {
	Make         string `json:"make" binding:"required"`
	Model        string `json:"model" binding:"required"`
	Color        string `json:"color"`
	LicensePlate string `json:"license_plate" binding:"required"`
	SeatsTotal   int    `json:"seats_total" binding:"required"`
	Year         int    `json:"year"`
	Notes        string `json:"notes"`
}

type vehicleResponse struct {
	ID           string `json:"vehicle_id"`
	OwnerID      string `json:"owner_id"`
	Make         string `json:"make"`
	Model        string `json:"model"`
	Color        string `json:"color,omitempty"`
	LicensePlate string `json:"license_plate"`
	SeatsTotal   int    `json:"seats_total"`
	Year         int    `json:"year,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

func toVehicleResponse(v *domain.Vehicle) vehicleResponse {
	return vehicleResponse{
		ID:           v.ID,
		OwnerID:      v.OwnerID,
		Make:         v.Make,
		Model:        v.Model,
		Color:        v.Color,
		LicensePlate: v.LicensePlate,
		SeatsTotal:   v.SeatsTotal,
		Year:         v.Year,
		Notes:        v.Notes,
	}
}

func (h *VehicleHandler) create(c *gin.Context) {
	var req createVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": err.Error()})
		return
	}

	vehicle, err := h.service.Register(c.Request.Context(), vehicles.RegisterVehicleInput{
		Make:         req.Make,
		Model:        req.Model,
		Color:        req.Color,
		LicensePlate: req.LicensePlate,
		SeatsTotal:   req.SeatsTotal,
		Year:         req.Year,
		Notes:        req.Notes,
	}, currentPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toVehicleResponse(vehicle))
}

func (h *VehicleHandler) mine(c *gin.Context) {
	owned, err := h.service.ListByOwner(c.Request.Context(), currentPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]vehicleResponse, 0, len(owned))
	for i := range owned {
		out = append(out, toVehicleResponse(&owned[i]))
	}
	c.JSON(http.StatusOK, out)
}
