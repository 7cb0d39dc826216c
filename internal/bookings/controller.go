package bookings

import (
	"errors"
	"net/http"

	"beatsbook/internal/events"
	"beatsbook/internal/shared/middleware"
	"beatsbook/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Controller handles HTTP requests for bookings.
type Controller struct {
	service Service
}

// NewController creates a new bookings controller
func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// CreateBooking handles POST /events/:eventId/bookings
func (ctrl *Controller) CreateBooking(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.RespondJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil, nil)
		return
	}

	eventID, err := uuid.Parse(c.Param("eventId"))
	if err != nil {
		response.RespondJSON(c, http.StatusBadRequest, "INVALID_EVENT_ID", "Invalid event ID", nil, nil)
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload", nil, err.Error())
		return
	}

	result, err := ctrl.service.Book(c.Request.Context(), userID, eventID, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidQuantity):
			response.RespondJSON(c, http.StatusBadRequest, "INVALID_QUANTITY", "Quantity must be at least 1", nil, nil)
		case errors.Is(err, events.ErrNotFound):
			response.RespondJSON(c, http.StatusNotFound, "NOT_FOUND", "Event not found", nil, nil)
		case errors.Is(err, ErrEventUnavailable):
			response.RespondJSON(c, http.StatusConflict, "EVENT_UNAVAILABLE", "Event is not open for booking", nil, nil)
		case errors.Is(err, ErrInsufficientCapacity):
			response.RespondJSON(c, http.StatusConflict, "INSUFFICIENT_CAPACITY", "Not enough tickets remaining", nil, nil)
		default:
			response.RespondJSON(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create booking", nil, nil)
		}
		return
	}

	response.RespondJSON(c, http.StatusCreated, "BOOKING_CREATED", "Booking created successfully", result, nil)
}

// GetBooking handles GET /bookings/:bookingId
func (ctrl *Controller) GetBooking(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.RespondJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil, nil)
		return
	}

	bookingID, err := uuid.Parse(c.Param("bookingId"))
	if err != nil {
		response.RespondJSON(c, http.StatusBadRequest, "INVALID_BOOKING_ID", "Invalid booking ID", nil, nil)
		return
	}

	result, err := ctrl.service.GetBooking(c.Request.Context(), userID, bookingID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.RespondJSON(c, http.StatusNotFound, "NOT_FOUND", "Booking not found", nil, nil)
			return
		}
		response.RespondJSON(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch booking", nil, nil)
		return
	}

	response.RespondJSON(c, http.StatusOK, "BOOKING_FETCHED", "Booking fetched successfully", result, nil)
}

// GetUserBookings handles GET /bookings
func (ctrl *Controller) GetUserBookings(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.RespondJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil, nil)
		return
	}

	result, err := ctrl.service.GetUserBookings(c.Request.Context(), userID)
	if err != nil {
		response.RespondJSON(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch bookings", nil, nil)
		return
	}

	response.RespondJSON(c, http.StatusOK, "BOOKINGS_FETCHED", "Bookings fetched successfully", result, nil)
}
