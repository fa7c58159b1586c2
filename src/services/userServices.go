package services

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/BiblioDesk/BiblioDesk-Backend/src/config"
	"github.com/BiblioDesk/BiblioDesk-Backend/src/dtos"
	"github.com/BiblioDesk/BiblioDesk-Backend/src/middleware"
	"github.com/BiblioDesk/BiblioDesk-Backend/src/models"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	db *gorm.DB
}

// NewUserService creates a new instance of UserService
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// GetUsersList retrieves all active members except the requesting user.
func (s *UserService) GetUsersList(requesterID int) ([]dtos.MemberSummaryDTO, error) {
	var users []models.UserModel
	if err := s.db.
		Where("is_active = ? AND id <> ?", true, requesterID).
		Find(&users).Error; err != nil {
		return nil, err
	}

	result := make([]dtos.MemberSummaryDTO, 0, len(users))
	for _, user := range users {
		result = append(result, dtos.MemberSummaryDTO{
			ID:           user.Id,
			FirstName:    user.FirstName,
			LastName:     user.LastName,
			AddressEmail: user.AddressEmail,
			PhoneNumber:  user.PhoneNumber,
		})
	}
	return result, nil
}

// GetUserByID retrieves a User record by its ID
func (s *UserService) GetUserByID(id int) (*models.UserModel, error) {
	var user models.UserModel
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
		}
		return nil, err
	}
	return &user, nil
}

// CreateUser registers a new member, hashing the password before saving.
func (s *UserService) CreateUser(user *models.UserModel) (*models.UserModel, error) {
	if user.FirstName == "" || user.LastName == "" || user.AddressNumber == "" ||
		user.AddressStreet == "" || user.AddressCity == "" || user.AddressCountry == "" ||
		user.AddressEmail == "" || user.PhoneNumber == "" || user.Password == "" {
		return nil, fmt.Errorf("%w: all required fields must be provided", ErrInvalidRequest)
	}

	if user.Role == "" {
		user.Role = models.RoleMember
	}
	user.IsActive = true

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user.Password = string(hashedPassword)

	if err := s.db.Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: email or phone number already in use", ErrConflict)
		}
		return nil, err
	}
	return user, nil
}

// UpdateUser edits the allow-listed member fields of one user.
func (s *UserService) UpdateUser(id int, updates map[string]interface{}) (*models.UserModel, error) {
	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: no update data provided", ErrInvalidRequest)
	}

	// JSON field -> column, restricted to config.AllowedUserUpdateFields
	columns := map[string]string{
		"firstName":      "first_name",
		"lastName":       "last_name",
		"addressNumber":  "address_number",
		"addressStreet":  "address_street",
		"addressCity":    "address_city",
		"addressCountry": "address_country",
		"addressEmail":   "address_email",
		"phoneNumber":    "phone_number",
	}

	translated := make(map[string]interface{}, len(updates))
	for field, value := range updates {
		allowed := slices.Contains(config.AllowedUserUpdateFields, field)
		column, known := columns[field]
		if !allowed || !known {
			return nil, fmt.Errorf("%w: invalid update fields", ErrInvalidRequest)
		}
		translated[column] = value
	}

	var user models.UserModel
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
		}
		return nil, err
	}

	if err := s.db.Model(&user).Updates(translated).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: email or phone number already in use", ErrConflict)
		}
		return nil, err
	}
	return &user, nil
}

// DeactivateUser soft-deletes a member: the record stays referenced by
// loan and fine history, only isActive flips.
func (s *UserService) DeactivateUser(id int) error {
	result := s.db.Model(&models.UserModel{}).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	return nil
}

// AuthenticateUser checks member credentials and returns a JWT token if valid
func (s *UserService) AuthenticateUser(addressEmail, password string) (string, error) {
	var user models.UserModel
	result := s.db.Where("address_email = ?", addressEmail).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: invalid credentials", ErrIneligibleHolder)
		}
		return "", result.Error
	}

	if !user.IsActive {
		return "", fmt.Errorf("%w: user is inactive", ErrIneligibleHolder)
	}

	// Compare the provided password with the hashed password in the database
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", fmt.Errorf("%w: invalid credentials", ErrIneligibleHolder)
	}

	claims := jwt.MapClaims{
		"id":   user.Id,
		"role": string(user.Role),
		"exp":  time.Now().Add(time.Hour * 24).Unix(), // Token expires in 24 hours
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(middleware.GetSecretKey()))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}
