package api

import (
	"net/http"
	"time"

	"github.com/avelichko/ridepool/internal/apperrors"
	"github.com/avelichko/ridepool/internal/domain"
	"github.com/avelichko/ridepool/internal/service/rides"
	"github.com/gin-gonic/gin"
)

type RideHandler struct {
	service rides.RideUseCase
}

func NewRideHandler(service rides.RideUseCase) *RideHandler {
	return &RideHandler{service: service}
}

func (h *RideHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("/search", h.search)
	router.GET("/mine", h.mine)
	router.GET("/:id", h.get)
	router.DELETE("/:id", h.cancel)
}

type createRideRequest struct {
	VehicleID     string     `json:"vehicle_id" binding:"required"`
	Origin        string     `json:"origin" binding:"required"`
	Destination   string     `json:"destination" binding:"required"`
	DepartureTime time.Time  `json:"departure_time" binding:"required"`
	ArrivalTime   *time.Time `json:"arrival_time"`
	PricePerSeat  string     `json:"price_per_seat" binding:"required"`
}

func (h *RideHandler) create(c *gin.Context) {
	var req createRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": err.Error()})
		return
	}

	ride, err := h.service.Create(c.Request.Context(), rides.CreateRideInput{
		VehicleID:     req.VehicleID,
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartureTime: req.DepartureTime,
		ArrivalTime:   req.ArrivalTime,
		PricePerSeat:  req.PricePerSeat,
	}, currentPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toRideResponse(ride))
}

func (h *RideHandler) search(c *gin.Context) {
	filter := domain.RideFilter{
		Origin:      c.Query("origin"),
		Destination: c.Query("destination"),
	}
	if raw := c.Query("date"); raw != "" {
		date, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondError(c, apperrors.Validationf("invalid date %q, want YYYY-MM-DD", raw))
			return
		}
		filter.Date = &date
	}

	found, err := h.service.Search(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRideResponses(found))
}

func (h *RideHandler) mine(c *gin.Context) {
	owned, err := h.service.ListByDriver(c.Request.Context(), currentPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRideResponses(owned))
}

func (h *RideHandler) get(c *gin.Context) {
	ride, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRideResponse(ride))
}

func (h *RideHandler) cancel(c *gin.Context) {
	if err := h.service.Cancel(c.Request.Context(), c.Param("id"), currentPrincipal(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
