package auth

import (
	"errors"
	"net/http"

	"beatsbook/internal/shared/middleware"
	"beatsbook/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

// Controller handles HTTP requests for authentication and account management.
type Controller struct {
	service Service
}

// NewController creates a new auth controller
func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// Register handles POST /auth/register
func (ctrl *Controller) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload", nil, err.Error())
		return
	}

	result, err := ctrl.service.Register(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrDuplicateIdentifier) {
			response.RespondJSON(c, http.StatusConflict, "DUPLICATE_IDENTIFIER", "Email or username already in use", nil, nil)
			return
		}
		response.RespondJSON(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to register user", nil, nil)
		return
	}

	response.RespondJSON(c, http.StatusCreated, "REGISTERED", "Account created successfully", result, nil)
}

// Login handles POST /auth/login
func (ctrl *Controller) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload", nil, err.Error())
		return
	}

	result, err := ctrl.service.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.RespondJSON(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password", nil, nil)
			return
		}
		response.RespondJSON(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to log in", nil, nil)
		return
	}

	response.RespondJSON(c, http.StatusOK, "LOGGED_IN", "Logged in successfully", result, nil)
}

// Refresh handles POST /auth/refresh
func (ctrl *Controller) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload", nil, err.Error())
		return
	}

	tokens, err := ctrl.service.Refresh(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrInvalidRefreshToken) {
			response.RespondJSON(c, http.StatusUnauthorized, "INVALID_REFRESH_TOKEN", "Invalid or expired refresh token", nil, nil)
			return
		}
		response.RespondJSON(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to refresh token", nil, nil)
		return
	}

	response.RespondJSON(c, http.StatusOK, "TOKEN_REFRESHED", "Token refreshed successfully", tokens, nil)
}

// ChangePassword handles PUT /auth/change-password
func (ctrl *Controller) ChangePassword(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.RespondJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil, nil)
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload", nil, err.Error())
		return
	}

	if err := ctrl.service.ChangePassword(c.Request.Context(), userID, &req); err != nil {
		switch {
		case errors.Is(err, ErrWrongPassword):
			response.RespondJSON(c, http.StatusBadRequest, "WRONG_PASSWORD", "Current password is incorrect", nil, nil)
		case errors.Is(err, ErrUserNotFound):
			response.RespondJSON(c, http.StatusNotFound, "NOT_FOUND", "User not found", nil, nil)
		default:
			response.RespondJSON(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to change password", nil, nil)
		}
		return
	}

	response.RespondJSON(c, http.StatusOK, "PASSWORD_CHANGED", "Password changed successfully", nil, nil)
}

// GetAccount handles GET /auth/me
func (ctrl *Controller) GetAccount(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.RespondJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil, nil)
		return
	}

	user, err := ctrl.service.GetAccount(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.RespondJSON(c, http.StatusNotFound, "NOT_FOUND", "User not found", nil, nil)
			return
		}
		response.RespondJSON(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch account", nil, nil)
		return
	}

	response.RespondJSON(c, http.StatusOK, "ACCOUNT_FETCHED", "Account fetched successfully", user, nil)
}

// UpdateAccount handles PUT /auth/me
func (ctrl *Controller) UpdateAccount(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.RespondJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil, nil)
		return
	}

	var req UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request payload", nil, err.Error())
		return
	}

	user, err := ctrl.service.UpdateAccount(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicateIdentifier):
			response.RespondJSON(c, http.StatusConflict, "DUPLICATE_IDENTIFIER", "Email or username already in use", nil, nil)
		case errors.Is(err, ErrUserNotFound):
			response.RespondJSON(c, http.StatusNotFound, "NOT_FOUND", "User not found", nil, nil)
		default:
			response.RespondJSON(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update account", nil, nil)
		}
		return
	}

	response.RespondJSON(c, http.StatusOK, "ACCOUNT_UPDATED", "Account updated successfully", user, nil)
}

// DeleteAccount handles DELETE /auth/me
func (ctrl *Controller) DeleteAccount(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.RespondJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil, nil)
		return
	}

	if err := ctrl.service.DeleteAccount(c.Request.Context(), userID); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.RespondJSON(c, http.StatusNotFound, "NOT_FOUND", "User not found", nil, nil)
			return
		}
		response.RespondJSON(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete account", nil, nil)
		return
	}

	response.RespondJSON(c, http.StatusOK, "ACCOUNT_DELETED", "Account deleted successfully", nil, nil)
}
