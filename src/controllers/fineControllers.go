package controllers

import (
	"net/http"
	"strconv"

	"github.com/BiblioDesk/BiblioDesk-Backend/src/models"
	"github.com/BiblioDesk/BiblioDesk-Backend/src/services"
	"github.com/gin-gonic/gin"
)

type FineController struct {
	service *services.FineService
}

func NewFineController(service *services.FineService) *FineController {
	return &FineController{service: service}
}

// GetUserFines handles GET requests to retrieve all fines of one user,
// with open overdue amounts freshly recomputed
func (c *FineController) GetUserFines(ctx *gin.Context) {
	idParam := ctx.Param("id")
	id, err := strconv.Atoi(idParam)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	fines, err := c.service.GetUserFines(id)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, fines)
}

type closeFineRequest struct {
	Status string `json:"status"`
}

// CloseFine handles PATCH requests to settle an open fine as PAID or WAIVED
func (c *FineController) CloseFine(ctx *gin.Context) {
	idParam := ctx.Param("id")
	id, err := strconv.Atoi(idParam)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid fine ID"})
		return
	}

	var req closeFineRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fine, err := c.service.CloseFine(id, models.FineStatus(req.Status), ctx.GetInt("userId"))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"message": "Fine updated successfully",
		"status":  fine.Status,
	})
}
