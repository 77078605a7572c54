package api

import (
	"net/http"

	"github.com/avelichko/ridepool/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(ridesGroup, bookingsGroup *gin.RouterGroup) {
	ridesGroup.POST("/:id/book", h.book)
	bookingsGroup.GET("/mine", h.mine)
	bookingsGroup.DELETE("/:id", h.cancel)
}

func (h *BookingHandler) book(c *gin.Context) {
	created, ride, err := h.service.Book(c.Request.Context(), c.Param("id"), currentPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toBookingResponse(created, ride))
}

func (h *BookingHandler) mine(c *gin.Context) {
	details, err := h.service.ListByPassenger(c.Request.Context(), currentPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]bookingResponse, 0, len(details))
	for i := range details {
		out = append(out, toBookingResponse(&details[i].Booking, &details[i].Ride))
	}
	c.JSON(http.StatusOK, out)
}

func (h *BookingHandler) cancel(c *gin.Context) {
	if err := h.service.Cancel(c.Request.Context(), c.Param("id"), currentPrincipal(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
