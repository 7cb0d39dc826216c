package events

import (
	"errors"
	"net/http"

	"beatsbook/internal/shared/middleware"
	"beatsbook/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Controller handles HTTP requests for events.
type Controller struct {
	service Service
}

// NewController creates a new events controller
func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// ListEvents handles GET /events
func (ctrl *Controller) ListEvents(c *gin.Context) {
	var query ListEventsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters", nil, err.Error())
		return
	}

	result, err := ctrl.service.ListEvents(c.Request.Context(), &query)
	if err != nil {
		response.RespondJSON(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch events", nil, nil)
		return
	}

	response.RespondJSON(c, http.StatusOK, "EVENTS_FETCHED", "Events fetched successfully", result, nil)
}

// GetEvent handles GET /events/:eventId
func (ctrl *Controller) GetEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("eventId"))
	if err != nil {
		response.RespondJSON(c, http.StatusBadRequest, "INVALID_EVENT_ID", "Invalid event ID", nil, nil)
		return
	}

	result, err := ctrl.service.GetEvent(c.Request.Context(), eventID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.RespondJSON(c, http.StatusNotFound, "NOT_FOUND", "Event not found", nil, nil)
			return
		}
		response.RespondJSON(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch event", nil, nil)
		return
	}

	response.RespondJSON(c, http.StatusOK, "EVENT_FETCHED", "Event fetched successfully", result, nil)
}

// GetMyEvents handles GET /events/mine
func (ctrl *Controller) GetMyEvents(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.RespondJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil, nil)
		return
	}

	result, err := ctrl.service.GetMyEvents(c.Request.Context(), userID)
	if err != nil {
		response.RespondJSON(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch events", nil, nil)
		return
	}

	response.RespondJSON(c, http.StatusOK, "EVENTS_FETCHED", "Events fetched successfully", result, nil)
}

// CreateEvent handles POST /events
func (ctrl *Controller) CreateEvent(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.RespondJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil, nil)
		return
	}

	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload", nil, err.Error())
		return
	}

	result, err := ctrl.service.CreateEvent(c.Request.Context(), userID, &req)
	if err != nil {
		if isValidationError(err) {
			response.RespondJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil, nil)
			return
		}
		response.RespondJSON(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create event", nil, nil)
		return
	}

	response.RespondJSON(c, http.StatusCreated, "EVENT_CREATED", "Event created successfully", result, nil)
}

// UpdateEvent handles PUT /events/:eventId
func (ctrl *Controller) UpdateEvent(c *gin.Context) {
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

	var req UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload", nil, err.Error())
		return
	}

	result, err := ctrl.service.UpdateEvent(c.Request.Context(), userID, eventID, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.RespondJSON(c, http.StatusNotFound, "NOT_FOUND", "Event not found", nil, nil)
		case isValidationError(err):
			response.RespondJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil, nil)
		default:
			response.RespondJSON(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update event", nil, nil)
		}
		return
	}

	response.RespondJSON(c, http.StatusOK, "EVENT_UPDATED", "Event updated successfully", result, nil)
}

// CancelEvent handles POST /events/:eventId/cancel
func (ctrl *Controller) CancelEvent(c *gin.Context) {
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

	result, err := ctrl.service.CancelEvent(c.Request.Context(), userID, eventID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.RespondJSON(c, http.StatusNotFound, "NOT_FOUND", "Event not found", nil, nil)
			return
		}
		response.RespondJSON(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to cancel event", nil, nil)
		return
	}

	response.RespondJSON(c, http.StatusOK, "EVENT_CANCELLED", "Event cancelled successfully", result, nil)
}

// DeleteEvent handles DELETE /events/:eventId
func (ctrl *Controller) DeleteEvent(c *gin.Context) {
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

	if err := ctrl.service.DeleteEvent(c.Request.Context(), userID, eventID); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.RespondJSON(c, http.StatusNotFound, "NOT_FOUND", "Event not found", nil, nil)
			return
		}
		response.RespondJSON(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete event", nil, nil)
		return
	}

	response.RespondJSON(c, http.StatusOK, "EVENT_DELETED", "Event deleted successfully", nil, nil)
}

// GetCategories handles GET /events/categories
func (ctrl *Controller) GetCategories(c *gin.Context) {
	categories, err := ctrl.service.Categories(c.Request.Context())
	if err != nil {
		response.RespondJSON(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch categories", nil, nil)
		return
	}

	response.RespondJSON(c, http.StatusOK, "CATEGORIES_FETCHED", "Categories fetched successfully", categories, nil)
}

func isValidationError(err error) bool {
	return errors.Is(err, ErrInvalidCapacity) ||
		errors.Is(err, ErrInvalidPrice) ||
		errors.Is(err, ErrStartInPast) ||
		errors.Is(err, ErrInvalidTier)
}
