package routes

import (
	"github.com/BiblioDesk/BiblioDesk-Backend/src/controllers"
	"github.com/BiblioDesk/BiblioDesk-Backend/src/middleware"
	"github.com/BiblioDesk/BiblioDesk-Backend/src/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupLoanRoutes(router *gin.Engine, db *gorm.DB, service *services.LoanService) {

	loanController := controllers.NewLoanController(service)

	// Protected routes
	loans := router.Group("/loans")
	loans.Use(middleware.AuthMiddleware(db))
	{
		loans.GET("/user/:id", middleware.RequireSelfOrRole("ADMIN", "LIBRARIAN"), loanController.GetUserLoans)
		loans.POST("/", middleware.RequireRole("ADMIN", "LIBRARIAN"), loanController.CreateLoan)
		loans.PATCH("/:id/return", middleware.RequireRole("ADMIN", "LIBRARIAN"), loanController.ReturnLoan)
		loans.PATCH("/:id/renew", middleware.RequireRole("ADMIN", "LIBRARIAN"), loanController.RenewLoan)
	}
}
