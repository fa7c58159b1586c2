package controllers

import (
	"net/http"

	"github.com/BiblioDesk/BiblioDesk-Backend/src/models"
	"github.com/BiblioDesk/BiblioDesk-Backend/src/services"
	"github.com/gin-gonic/gin"
)

type AuthController struct {
	service *services.UserService
}

func NewAuthController(service *services.UserService) *AuthController {
	return &AuthController{service: service}
}

// Register handles POST requests for self-registration of a new member
func (c *AuthController) Register(ctx *gin.Context) {
	var user models.UserModel
	if err := ctx.ShouldBindJSON(&user); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Self-registration never grants staff roles
	user.Role = models.RoleMember

	created, err := c.service.CreateUser(&user)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, models.RegisterResponse{
		ID:           created.Id,
		AddressEmail: created.AddressEmail,
	})
}

// Login handles POST requests exchanging credentials for a JWT token
func (c *AuthController) Login(ctx *gin.Context) {
	var req models.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := c.service.AuthenticateUser(req.AddressEmail, req.Password)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"token": token})
}

// Logout handles POST requests ending a session. Tokens are stateless, so
// the server only acknowledges; the client discards the token.
func (c *AuthController) Logout(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
