package api

import (
	"net/http"

	"github.com/avelichko/ridepool/internal/auth"
	"github.com/avelichko/ridepool/internal/service/booking"
	"github.com/avelichko/ridepool/internal/service/rides"
	"github.com/avelichko/ridepool/internal/service/users"
	"github.com/avelichko/ridepool/internal/service/vehicles"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	Users    users.UserUseCase
	Vehicles vehicles.VehicleUseCase
	Rides    rides.RideUseCase
	Bookings booking.BookingUseCase
}

func NewRouter(svcs Services, tokens *auth.Manager, allowedOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(allowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = allowedOrigins
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authGroup := router.Group("/auth")
	authorizedAuth := router.Group("/auth", RequireAuth(tokens))
	NewAuthHandler(svcs.Users).Register(authGroup, authorizedAuth)

	authorized := router.Group("/", RequireAuth(tokens))
	NewVehicleHandler(svcs.Vehicles).Register(authorized.Group("/vehicles"))

	ridesGroup := authorized.Group("/rides")
	NewRideHandler(svcs.Rides).Register(ridesGroup)
	NewBookingHandler(svcs.Bookings).Register(ridesGroup, authorized.Group("/bookings"))

	return router
}
