package auth

import (
	"beatsbook/internal/shared/config"
	"beatsbook/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers auth and account routes.
func RegisterRoutes(rg *gin.RouterGroup, ctrl *Controller, cfg *config.Config) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/register", ctrl.Register)
		authGroup.POST("/login", ctrl.Login)
		authGroup.POST("/refresh", ctrl.Refresh)

		protected := authGroup.Group("")
		protected.Use(middleware.JWTAuthWithConfig(cfg))
		{
			protected.PUT("/change-password", ctrl.ChangePassword)
			protected.GET("/me", ctrl.GetAccount)
			protected.PUT("/me", ctrl.UpdateAccount)
			protected.DELETE("/me", ctrl.DeleteAccount)
		}
	}
}
