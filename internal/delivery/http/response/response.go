// Package response renders HTTP payloads.
package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ErrorResponse unified error structure
type ErrorResponse struct {
	Success bool      `json:"success"`
	Code    int       `json:"code"`    // HTTP status code
	Message string    `json:"message"` // User-friendly message
	Error   ErrorInfo `json:"error"`
}

// ErrorInfo detailed error information
type ErrorInfo struct {
	Code    string `json:"code"`              // Business error code, e.g., "POSTCODE_NOT_FOUND"
	Details string `json:"details,omitempty"` // Detailed error description
}

// Error error response
func Error(c echo.Context, statusCode int, errorCode string, message string, details string) error {
	if message == "" {
		message = http.StatusText(statusCode)
	}

	return c.JSON(statusCode, ErrorResponse{
		Success: false,
		Code:    statusCode,
		Message: message,
		Error: ErrorInfo{
			Code:    errorCode,
			Details: details,
		},
	})
}

// InternalServerError 500 error
func InternalServerError(c echo.Context) error {
	return Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", "")
}
