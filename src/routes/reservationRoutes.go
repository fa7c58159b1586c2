package routes

import (
	"github.com/BiblioDesk/BiblioDesk-Backend/src/controllers"
	"github.com/BiblioDesk/BiblioDesk-Backend/src/middleware"
	"github.com/BiblioDesk/BiblioDesk-Backend/src/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupReservationRoutes(router *gin.Engine, db *gorm.DB, service *services.ReservationService) {

	reservationController := controllers.NewReservationController(service)

	// Protected routes
	reservations := router.Group("/reservations")
	reservations.Use(middleware.AuthMiddleware(db))
	{
		reservations.GET("/user/:id", middleware.RequireSelfOrRole("ADMIN", "LIBRARIAN"), reservationController.GetUserReservations)
		reservations.POST("/", reservationController.CreateReservation)
		reservations.PATCH("/:id/cancel", middleware.RequireReservationOwnerOrRole(db, "ADMIN", "LIBRARIAN"), reservationController.CancelReservation)
		reservations.PATCH("/:id/fulfill", middleware.RequireRole("ADMIN", "LIBRARIAN"), reservationController.FulfillReservation)
	}
}
