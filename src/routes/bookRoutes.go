package routes

import (
	"github.com/BiblioDesk/BiblioDesk-Backend/src/controllers"
	"github.com/BiblioDesk/BiblioDesk-Backend/src/middleware"
	"github.com/BiblioDesk/BiblioDesk-Backend/src/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupBookRoutes(router *gin.Engine, db *gorm.DB, service *services.BookService) {

	bookController := controllers.NewBookController(service)

	// Protected routes
	books := router.Group("/books")
	books.Use(middleware.AuthMiddleware(db))
	{
		books.GET("/", bookController.GetAllBooks)
		books.GET("/unavailable", bookController.GetUnavailableBooks)
		books.GET("/:id", middleware.RequireRole("ADMIN", "LIBRARIAN"), bookController.GetBookByID)
		books.POST("/", middleware.RequireRole("ADMIN", "LIBRARIAN"), bookController.CreateBook)
		books.POST("/import", middleware.RequireRole("ADMIN", "LIBRARIAN"), bookController.ImportBooks)
		books.PUT("/:id", middleware.RequireRole("ADMIN", "LIBRARIAN"), bookController.UpdateBook)
		books.DELETE("/:id", middleware.RequireRole("ADMIN", "LIBRARIAN"), bookController.DeleteBook)
	}
}
