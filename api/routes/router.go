package routes

import (
	"net/http"
	"strings"
	"time"

	"beatsbook/internal/auth"
	"beatsbook/internal/bookings"
	"beatsbook/internal/comments"
	"beatsbook/internal/events"
	"beatsbook/internal/notifications"
	"beatsbook/internal/shared/config"
	"beatsbook/internal/shared/database"
	"beatsbook/internal/shared/middleware"
	"beatsbook/internal/shared/utils/response"
	"beatsbook/pkg/cache"
	"beatsbook/pkg/clock"
	"beatsbook/pkg/logger"
	"beatsbook/pkg/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// registerValidations installs custom binding validators used by the
// request DTOs.
func registerValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
	}
}

// Dependencies holds the shared services injected into the router.
type Dependencies struct {
	Config   *config.Config
	Clock    clock.Clock
	Logger   *logger.Logger
	Cache    cache.Service
	Producer notifications.Producer
	Limiter  *ratelimit.RateLimiter
}

// SetupRouter builds the gin engine with all middleware and module routes.
func SetupRouter(deps *Dependencies) *gin.Engine {
	gin.SetMode(deps.Config.GinMode)
	registerValidations()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	if deps.Limiter != nil {
		router.Use(ratelimit.Middleware(deps.Limiter))
	}

	healthHandler := func(c *gin.Context) {
		response.RespondJSON(c, http.StatusOK, "OK", "Service is healthy", gin.H{
			"time": deps.Clock.Now(),
		}, nil)
	}
	router.GET("/health", healthHandler)
	router.GET("/ping", healthHandler)
	router.GET("/status", healthHandler)

	db := database.GetDB()

	// Events
	eventsRepo := events.NewRepository(db)
	synchronizer := events.NewSynchronizer(eventsRepo, deps.Clock, deps.Logger)
	eventsService := events.NewService(eventsRepo, synchronizer, deps.Cache, deps.Clock, deps.Logger)
	eventsController := events.NewController(eventsService)

	// Bookings
	bookingsRepo := bookings.NewRepository(db)
	bookingsService := bookings.NewService(bookingsRepo, deps.Cache, deps.Producer, deps.Clock, deps.Logger)
	bookingsController := bookings.NewController(bookingsService)

	// Comments
	commentsRepo := comments.NewRepository(db)
	commentsService := comments.NewService(commentsRepo, deps.Clock, deps.Logger)
	commentsController := comments.NewController(commentsService)

	// Auth
	authRepo := auth.NewRepository(db)
	authService := auth.NewService(authRepo, deps.Config, deps.Clock, deps.Logger)
	authController := auth.NewController(authService)

	api := router.Group(deps.Config.GetAPIBasePath())
	{
		auth.RegisterRoutes(api, authController, deps.Config)
		events.RegisterRoutes(api, eventsController, deps.Config)
		bookings.RegisterRoutes(api, bookingsController, deps.Config)
		comments.RegisterRoutes(api, commentsController, deps.Config)
	}

	router.NoRoute(func(c *gin.Context) {
		response.RespondJSON(c, http.StatusNotFound, "NOT_FOUND", "Route not found", nil, nil)
	})

	return router
}
