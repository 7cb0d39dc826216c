package response

import "github.com/gin-gonic/gin"

// StandardApiResponse is the envelope every handler returns.
type StandardApiResponse struct {
	Status     string      `json:"status"`           // "success" or "error"
	StatusCode int         `json:"status_code"`      // HTTP status code
	Code       string      `json:"code"`             // Machine-readable result code
	Message    string      `json:"message"`          // Human-readable message
	Data       interface{} `json:"data,omitempty"`   // Payload for success
	Errors     interface{} `json:"errors,omitempty"` // Validation or error details
}

// RespondJSON writes the standard envelope. Status is derived from the
// HTTP status code.
func RespondJSON(c *gin.Context, statusCode int, code string, message string, data interface{}, errors interface{}) {
	status := "success"
	if statusCode >= 400 {
		status = "error"
	}
	c.JSON(statusCode, StandardApiResponse{
		Status:     status,
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}
