package main

import (
	"log"
	"os"

	"github.com/BiblioDesk/BiblioDesk-Backend/src/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	dsn := os.Getenv("DB_DSN")
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	// Migrate schema if not exists
	if err := db.AutoMigrate(&models.UserModel{}); err != nil {
		log.Fatalf("failed to migrate user model: %v", err)
	}

	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Fatal("ADMIN_EMAIL and ADMIN_PASSWORD must be set")
	}

	var user models.UserModel
	result := db.Where("address_email = ?", email).First(&user)
	if result.Error == nil {
		log.Printf("Admin %s already exists", email)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	admin := models.UserModel{
		FirstName:      "Library",
		LastName:       "Admin",
		AddressNumber:  "1",
		AddressStreet:  "Main",
		AddressCity:    "Warsaw",
		AddressCountry: "Poland",
		AddressEmail:   email,
		PhoneNumber:    "000000000",
		Role:           models.RoleAdmin,
		Password:       string(hashedPassword),
		IsActive:       true,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Fatalf("failed to create admin: %v", err)
	}
	log.Printf("Admin %s created", email)
}
