package controllers

import (
	"net/http"
	"strconv"

	"github.com/BiblioDesk/BiblioDesk-Backend/src/services"
	"github.com/gin-gonic/gin"
)

type LoanController struct {
	service *services.LoanService
}

func NewLoanController(service *services.LoanService) *LoanController {
	return &LoanController{service: service}
}

// GetUserLoans handles GET requests to retrieve all loans of one user
func (c *LoanController) GetUserLoans(ctx *gin.Context) {
	idParam := ctx.Param("id")
	id, err := strconv.Atoi(idParam)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	loans, err := c.service.GetUserLoans(id)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, loans)
}

type createLoanRequest struct {
	UserId   int    `json:"userId"`
	BookIsbn string `json:"bookIsbn"`
}

// CreateLoan handles POST requests to lend a book copy to a user
func (c *LoanController) CreateLoan(ctx *gin.Context) {
	var req createLoanRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.UserId == 0 || req.BookIsbn == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "userId and bookIsbn are required"})
		return
	}

	loan, err := c.service.CreateLoan(req.UserId, req.BookIsbn)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Loan created successfully",
		"loan":    loan,
	})
}

type returnLoanRequest struct {
	Lost    bool `json:"lost"`
	Damaged bool `json:"damaged"`
}

// ReturnLoan handles PATCH requests to close an open loan
func (c *LoanController) ReturnLoan(ctx *gin.Context) {
	idParam := ctx.Param("id")
	id, err := strconv.Atoi(idParam)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid loan ID"})
		return
	}

	var req returnLoanRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	loan, err := c.service.ReturnLoan(id, req.Lost, req.Damaged)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"message":    "Loan successfully returned",
		"returnedAt": loan.ReturnedAt,
	})
}

type renewLoanRequest struct {
	ExtendByDays int `json:"extendByDays"`
}

// RenewLoan handles PATCH requests to extend an open loan's due date
func (c *LoanController) RenewLoan(ctx *gin.Context) {
	idParam := ctx.Param("id")
	id, err := strconv.Atoi(idParam)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid loan ID"})
		return
	}

	var req renewLoanRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	loan, err := c.service.RenewLoan(id, req.ExtendByDays)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"message": "Loan due date updated successfully",
		"dueAt":   loan.DueAt,
	})
}
