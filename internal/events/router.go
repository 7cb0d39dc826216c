package events

import (
	"beatsbook/internal/shared/config"
	"beatsbook/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers event routes.
func RegisterRoutes(rg *gin.RouterGroup, ctrl *Controller, cfg *config.Config) {
	eventsGroup := rg.Group("/events")
	{
		// Public browsing
		eventsGroup.GET("", ctrl.ListEvents)
		eventsGroup.GET("/categories", ctrl.GetCategories)

		// Organiser routes; registered before "/:eventId" so "mine" is not
		// swallowed by the ID wildcard.
		protected := eventsGroup.Group("")
		protected.Use(middleware.JWTAuthWithConfig(cfg))
		{
			protected.GET("/mine", ctrl.GetMyEvents)
			protected.POST("", ctrl.CreateEvent)
			protected.PUT("/:eventId", ctrl.UpdateEvent)
			protected.POST("/:eventId/cancel", ctrl.CancelEvent)
			protected.DELETE("/:eventId", ctrl.DeleteEvent)
		}

		eventsGroup.GET("/:eventId", ctrl.GetEvent)
	}
}
