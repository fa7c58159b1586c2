package seed

import (
	"log"
	"os"

	"github.com/BiblioDesk/BiblioDesk-Backend/src/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seed creates the initial admin account if it does not exist yet.
// Email and password come from ADMIN_EMAIL / ADMIN_PASSWORD so no
// default credential ships in code.
func Seed(db *gorm.DB) {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Println("ADMIN_EMAIL or ADMIN_PASSWORD not set, skipping admin seed")
		return
	}

	var user models.UserModel
	result := db.Where("address_email = ?", email).First(&user)
	if result.Error == nil {
		log.Println("Admin user already exists")
		return
	}

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

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
		log.Printf("Failed to create admin user: %v\n", err)
	} else {
		log.Println("Admin user created")
	}
}
