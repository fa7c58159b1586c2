package main

import (
	"log"
	"os"

	"github.com/BiblioDesk/BiblioDesk-Backend/src/cron"
	"github.com/BiblioDesk/BiblioDesk-Backend/src/db"
	"github.com/BiblioDesk/BiblioDesk-Backend/src/middleware"
	"github.com/BiblioDesk/BiblioDesk-Backend/src/models"
	"github.com/BiblioDesk/BiblioDesk-Backend/src/routes"
	"github.com/BiblioDesk/BiblioDesk-Backend/src/seed"
	"github.com/BiblioDesk/BiblioDesk-Backend/src/services"
	"github.com/gin-gonic/gin"
)

func main() {

	// Database connection
	db, err := db.Connect()
	if err != nil {
		log.Fatalf("Error connecting to database: %v\n", err)
	}

	// Auto-migrate models
	if err := db.AutoMigrate(
		&models.UserModel{},
		&models.BookModel{},
		&models.LoanModel{},
		&models.ReservationModel{},
		&models.FineModel{},
	); err != nil {
		log.Fatalf("Error during auto-migration: %v\n", err)
	}

	// JWT secret setup
	middleware.SetSecretKey(os.Getenv("JWT_SECRET"))

	// Initial admin
	seed.Seed(db)

	// Port and host setup
	host := os.Getenv("SERVER_HOST")
	if host == "" {
		host = ":8080"
	}

	// Gin router setup
	router := gin.Default()
	router.Use(middleware.SetupCORS())

	// Services setup
	userService := services.NewUserService(db)
	bookService := services.NewBookService(db)
	loanService := services.NewLoanService(db)
	reservationService := services.NewReservationService(db)
	fineService := services.NewFineService(db)

	// Reservation sweep
	cron.StartReservationCron(reservationService)

	// Routes setup
	routes.SetupAuthRoutes(router, userService)
	routes.SetupUserRoutes(router, db, userService)
	routes.SetupBookRoutes(router, db, bookService)
	routes.SetupLoanRoutes(router, db, loanService)
	routes.SetupReservationRoutes(router, db, reservationService)
	routes.SetupFineRoutes(router, db, fineService)

	router.GET("/", func(c *gin.Context) {
		c.String(200, "BiblioDesk API running")
	})

	// Server run
	if err := router.Run(host); err != nil {
		log.Fatalf("Error starting server on %s: %v\n", host, err)
	}
}
