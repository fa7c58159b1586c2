package middleware

import (
	"net/http"
	"strconv"

	"github.com/BiblioDesk/BiblioDesk-Backend/src/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RequireRole allows the request only when the authenticated user holds
// one of the listed roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		role := ctx.GetString("userRole")
		for _, r := range roles {
			if r == role {
				ctx.Next()
				return
			}
		}
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		ctx.Abort()
	}
}

// RequireReservationOwnerOrRole allows the request when the reservation
// addressed by the :id path parameter belongs to the authenticated user,
// or when the user holds one of the listed roles.
func RequireReservationOwnerOrRole(db *gorm.DB, roles ...string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id, err := strconv.Atoi(ctx.Param("id"))
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reservation ID"})
			ctx.Abort()
			return
		}

		var reservation models.ReservationModel
		if err := db.First(&reservation, id).Error; err != nil {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Reservation not found"})
			ctx.Abort()
			return
		}

		if reservation.UserId == ctx.GetInt("userId") {
			ctx.Next()
			return
		}

		role := ctx.GetString("userRole")
		for _, r := range roles {
			if r == role {
				ctx.Next()
				return
			}
		}
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		ctx.Abort()
	}
}

// RequireSelfOrRole allows the request when the :id path parameter is the
// authenticated user, or when the user holds one of the listed roles.
func RequireSelfOrRole(roles ...string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		requestedID, err := strconv.Atoi(ctx.Param("id"))
		if err == nil && requestedID == ctx.GetInt("userId") {
			ctx.Next()
			return
		}

		role := ctx.GetString("userRole")
		for _, r := range roles {
			if r == role {
				ctx.Next()
				return
			}
		}
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		ctx.Abort()
	}
}
