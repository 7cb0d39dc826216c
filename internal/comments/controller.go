package comments

import (
	"errors"
	"net/http"

	"beatsbook/internal/events"
	"beatsbook/internal/shared/middleware"
	"beatsbook/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Controller handles HTTP requests for comments.
type Controller struct {
	service Service
}

// NewController creates a new comments controller
func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// CreateComment handles POST /events/:eventId/comments
func (ctrl *Controller) CreateComment(c *gin.Context) {
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

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload", nil, err.Error())
		return
	}

	result, err := ctrl.service.Create(c.Request.Context(), userID, eventID, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyContent):
			response.RespondJSON(c, http.StatusBadRequest, "EMPTY_CONTENT", "Comment content must not be empty", nil, nil)
		case errors.Is(err, events.ErrNotFound):
			response.RespondJSON(c, http.StatusNotFound, "NOT_FOUND", "Event not found", nil, nil)
		default:
			response.RespondJSON(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create comment", nil, nil)
		}
		return
	}

	response.RespondJSON(c, http.StatusCreated, "COMMENT_CREATED", "Comment created successfully", result, nil)
}

// ListComments handles GET /events/:eventId/comments
func (ctrl *Controller) ListComments(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("eventId"))
	if err != nil {
		response.RespondJSON(c, http.StatusBadRequest, "INVALID_EVENT_ID", "Invalid event ID", nil, nil)
		return
	}

	result, err := ctrl.service.ListByEvent(c.Request.Context(), eventID)
	if err != nil {
		if errors.Is(err, events.ErrNotFound) {
			response.RespondJSON(c, http.StatusNotFound, "NOT_FOUND", "Event not found", nil, nil)
			return
		}
		response.RespondJSON(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch comments", nil, nil)
		return
	}

	response.RespondJSON(c, http.StatusOK, "COMMENTS_FETCHED", "Comments fetched successfully", result, nil)
}

// DeleteComment handles DELETE /comments/:commentId
func (ctrl *Controller) DeleteComment(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.RespondJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil, nil)
		return
	}

	commentID, err := uuid.Parse(c.Param("commentId"))
	if err != nil {
		response.RespondJSON(c, http.StatusBadRequest, "INVALID_COMMENT_ID", "Invalid comment ID", nil, nil)
		return
	}

	if err := ctrl.service.Delete(c.Request.Context(), userID, commentID); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.RespondJSON(c, http.StatusNotFound, "NOT_FOUND", "Comment not found", nil, nil)
			return
		}
		response.RespondJSON(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete comment", nil, nil)
		return
	}

	response.RespondJSON(c, http.StatusOK, "COMMENT_DELETED", "Comment deleted successfully", nil, nil)
}
