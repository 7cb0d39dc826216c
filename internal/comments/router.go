package comments

import (
	"beatsbook/internal/shared/config"
	"beatsbook/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers comment routes.
func RegisterRoutes(rg *gin.RouterGroup, ctrl *Controller, cfg *config.Config) {
	auth := middleware.JWTAuthWithConfig(cfg)

	eventsGroup := rg.Group("/events")
	{
		eventsGroup.GET("/:eventId/comments", ctrl.ListComments)
		eventsGroup.POST("/:eventId/comments", auth, ctrl.CreateComment)
	}

	commentsGroup := rg.Group("/comments")
	commentsGroup.Use(auth)
	{
		commentsGroup.DELETE("/:commentId", ctrl.DeleteComment)
	}
}
