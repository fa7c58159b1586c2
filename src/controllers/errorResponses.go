package controllers

import (
	"errors"
	"net/http"

	"github.com/BiblioDesk/BiblioDesk-Backend/src/services"
	"github.com/gin-gonic/gin"
)

// respondServiceError translates a classified service error into the
// matching HTTP status. Unclassified errors are reported as 500 without
// leaking internals.
func respondServiceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidRequest):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrIneligibleHolder):
		ctx.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrConflict),
		errors.Is(err, services.ErrCapacityExceeded),
		errors.Is(err, services.ErrEngagementLimitExceeded),
		errors.Is(err, services.ErrTransientConflict):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
