package routes

import (
	"github.com/BiblioDesk/BiblioDesk-Backend/src/controllers"
	"github.com/BiblioDesk/BiblioDesk-Backend/src/services"
	"github.com/gin-gonic/gin"
)

func SetupAuthRoutes(router *gin.Engine, service *services.UserService) {

	authController := controllers.NewAuthController(service)

	// Public routes
	auth := router.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/logout", authController.Logout)
	}
}
