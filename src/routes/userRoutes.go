package routes

import (
	"github.com/BiblioDesk/BiblioDesk-Backend/src/controllers"
	"github.com/BiblioDesk/BiblioDesk-Backend/src/middleware"
	"github.com/BiblioDesk/BiblioDesk-Backend/src/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupUserRoutes(router *gin.Engine, db *gorm.DB, service *services.UserService) {

	userController := controllers.NewUserController(service)

	// Protected routes
	users := router.Group("/users")
	users.Use(middleware.AuthMiddleware(db))
	{
		users.GET("/", middleware.RequireRole("ADMIN", "LIBRARIAN"), userController.GetUsersList)
		users.GET("/:id", middleware.RequireSelfOrRole("ADMIN", "LIBRARIAN"), userController.GetUserByID)
		users.POST("/", middleware.RequireRole("ADMIN", "LIBRARIAN"), userController.CreateUser)
		users.PUT("/:id", middleware.RequireSelfOrRole("ADMIN", "LIBRARIAN"), userController.UpdateUser)
		users.DELETE("/:id", middleware.RequireRole("ADMIN"), userController.DeactivateUser)
	}
}
