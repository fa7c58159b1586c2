package controllers

import (
	"net/http"
	"strconv"

	"github.com/BiblioDesk/BiblioDesk-Backend/src/models"
	"github.com/BiblioDesk/BiblioDesk-Backend/src/services"
	"github.com/gin-gonic/gin"
)

type ReservationController struct {
	service *services.ReservationService
}

func NewReservationController(service *services.ReservationService) *ReservationController {
	return &ReservationController{service: service}
}

// GetUserReservations handles GET requests to retrieve all reservations of one user
func (c *ReservationController) GetUserReservations(ctx *gin.Context) {
	idParam := ctx.Param("id")
	id, err := strconv.Atoi(idParam)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	reservations, err := c.service.GetUserReservations(id)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, reservations)
}

type createReservationRequest struct {
	UserId int `json:"userId"`
	BookId int `json:"bookId"`
}

// CreateReservation handles POST requests to queue a user for an
// unavailable book
func (c *ReservationController) CreateReservation(ctx *gin.Context) {
	var req createReservationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.UserId == 0 || req.BookId == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "userId and bookId are required"})
		return
	}

	// Only staff may reserve on behalf of another user
	role := ctx.GetString("userRole")
	if role != string(models.RoleAdmin) && role != string(models.RoleLibrarian) &&
		req.UserId != ctx.GetInt("userId") {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	reservation, err := c.service.CreateReservation(req.UserId, req.BookId)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{
		"message":     "Reservation created successfully",
		"reservation": reservation,
	})
}

// CancelReservation handles PATCH requests to cancel a live reservation
func (c *ReservationController) CancelReservation(ctx *gin.Context) {
	idParam := ctx.Param("id")
	id, err := strconv.Atoi(idParam)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reservation ID"})
		return
	}

	reservation, err := c.service.CancelReservation(id)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"message": "Reservation cancelled successfully",
		"status":  reservation.Status,
	})
}

// FulfillReservation handles PATCH requests confirming the pickup of a
// promoted reservation
func (c *ReservationController) FulfillReservation(ctx *gin.Context) {
	idParam := ctx.Param("id")
	id, err := strconv.Atoi(idParam)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reservation ID"})
		return
	}

	reservation, err := c.service.FulfillReservation(id)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"message": "Reservation fulfilled successfully",
		"status":  reservation.Status,
	})
}
