package routes

import (
	"github.com/BiblioDesk/BiblioDesk-Backend/src/controllers"
	"github.com/BiblioDesk/BiblioDesk-Backend/src/middleware"
	"github.com/BiblioDesk/BiblioDesk-Backend/src/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupFineRoutes(router *gin.Engine, db *gorm.DB, service *services.FineService) {

	fineController := controllers.NewFineController(service)

	// Protected routes
	fines := router.Group("/fines")
	fines.Use(middleware.AuthMiddleware(db))
	{
		fines.GET("/user/:id", middleware.RequireSelfOrRole("ADMIN", "LIBRARIAN"), fineController.GetUserFines)
		fines.PATCH("/:id", middleware.RequireRole("ADMIN", "LIBRARIAN"), fineController.CloseFine)
	}
}
