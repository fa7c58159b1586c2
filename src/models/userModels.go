package models

import "time"

type UserRole string

const (
	RoleMember    UserRole = "MEMBER"
	RoleLibrarian UserRole = "LIBRARIAN"
	RoleAdmin     UserRole = "ADMIN"
)

type UserModel struct {
	Id             int       `json:"id" gorm:"primaryKey;autoIncrement"`
	FirstName      string    `json:"firstName" gorm:"column:first_name;type:varchar(100);not null"`
	LastName       string    `json:"lastName" gorm:"column:last_name;type:varchar(100);not null"`
	AddressNumber  string    `json:"addressNumber" gorm:"column:address_number;type:varchar(20);not null"`
	AddressStreet  string    `json:"addressStreet" gorm:"column:address_street;type:varchar(100);not null"`
	AddressCity    string    `json:"addressCity" gorm:"column:address_city;type:varchar(100);not null"`
	AddressCountry string    `json:"addressCountry" gorm:"column:address_country;type:varchar(100);not null"`
	AddressEmail   string    `json:"addressEmail" gorm:"column:address_email;type:varchar(255);not null;unique"`
	PhoneNumber    string    `json:"phoneNumber" gorm:"column:phone_number;type:varchar(20);not null;unique"`
	Role           UserRole  `json:"role" gorm:"type:varchar(20);not null;default:'MEMBER'"`
	Password       string    `json:"-" gorm:"type:varchar(100);not null"`
	IsActive       bool      `json:"isActive" gorm:"column:is_active;not null;default:true"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type LoginRequest struct {
	AddressEmail string `json:"addressEmail"`
	Password     string `json:"password"`
}

type RegisterResponse struct {
	ID           int    `json:"id"`
	AddressEmail string `json:"addressEmail"`
}
