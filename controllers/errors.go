package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"prompteria-api/services"
	"prompteria-api/utils"
)

// respondError writes the status and body for a service error. failure is
// the summary used for 500 responses.
func respondError(c *gin.Context, err error, failure string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrInvalidInput):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		utils.SendInternalError(c, failure, err)
		return
	}
	utils.SendError(c, status, err.Error())
}
