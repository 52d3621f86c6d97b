package utils

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the 4xx body.
type ErrorResponse struct {
	Message string `json:"message"`
}

// InternalErrorResponse is the 5xx body.
type InternalErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

func SendError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Message: message})
}

func SendInternalError(c *gin.Context, message string, err error) {
	details := "An unknown error occurred"
	if err != nil {
		details = err.Error()
	}
	c.JSON(http.StatusInternalServerError, InternalErrorResponse{
		Error:   message,
		Details: details,
	})
}

func SendValidationError(c *gin.Context, message string) {
	SendError(c, http.StatusBadRequest, message)
}

// QueryInt reads an integer query parameter. Missing or malformed values
// yield 0 so callers can apply their own default.
func QueryInt(c *gin.Context, key string) int {
	value, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return value
}
