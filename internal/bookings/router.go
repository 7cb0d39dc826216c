package bookings

import (
	"beatsbook/internal/shared/config"
	"beatsbook/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers booking routes.
func RegisterRoutes(rg *gin.RouterGroup, ctrl *Controller, cfg *config.Config) {
	auth := middleware.JWTAuthWithConfig(cfg)

	eventsGroup := rg.Group("/events")
	eventsGroup.Use(auth)
	{
		eventsGroup.POST("/:eventId/bookings", ctrl.CreateBooking)
	}

	bookingsGroup := rg.Group("/bookings")
	bookingsGroup.Use(auth)
	{
		bookingsGroup.GET("", ctrl.GetUserBookings)
		bookingsGroup.GET("/:bookingId", ctrl.GetBooking)
	}
}
