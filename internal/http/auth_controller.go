package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/derkdev976-web/davel-library-sub001/internal/auth"
	"github.com/derkdev976-web/davel-library-sub001/internal/entities"
)

// AuthController handles login, logout and the first-run setup endpoint.
type AuthController struct {
	service  *auth.Service
	sessions *auth.SessionManager
}

func NewAuthController(service *auth.Service, sessions *auth.SessionManager) *AuthController {
	return &AuthController{service: service, sessions: sessions}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type userResponse struct {
	ID    uint              `json:"id"`
	Name  string            `json:"name"`
	Email string            `json:"email"`
	Role  entities.UserRole `json:"role"`
}

func toUserResponse(user *entities.User) userResponse {
	return userResponse{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role}
}

// Login authenticates with email and password and establishes a session.
func (a *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "email and password are required")
		return
	}

	user, err := a.service.Authenticate(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrAccountLocked) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "account is locked, try again later"})
			return
		}
		// Do not reveal whether the email exists.
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
		return
	}

	if err := a.sessions.CreateSession(c.Request, user); err != nil {
		respondInternalError(c, err, "create session")
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

// Logout destroys the current session.
func (a *AuthController) Logout(c *gin.Context) {
	if err := a.sessions.DestroySession(c.Request); err != nil {
		respondInternalError(c, err, "destroy session")
		return
	}
	respondSuccess(c, "logged out")
}

// Me returns the authenticated user's profile.
func (a *AuthController) Me(c *gin.Context) {
	user, err := a.service.GetUserByID(GetUserID(c))
	if err != nil {
		respondNotFound(c, "user")
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// ChangePassword updates the authenticated user's password.
func (a *AuthController) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "current_password and new_password are required")
		return
	}
	if len(req.NewPassword) < auth.MinPasswordLength {
		respondBadRequest(c, "new password is too short")
		return
	}

	if err := a.service.ChangePassword(GetUserID(c), req.CurrentPassword, req.NewPassword); err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "current password is incorrect"})
		return
	}
	respondSuccess(c, "password changed")
}

type setupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Setup creates the first admin account. Only available while no user exists.
func (a *AuthController) Setup(c *gin.Context) {
	hasUsers, err := a.service.HasUsers()
	if err != nil {
		respondInternalError(c, err, "check existing users")
		return
	}
	if hasUsers {
		c.JSON(http.StatusConflict, ErrorResponse{Error: "setup has already been completed"})
		return
	}

	var req setupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name, email and password are required")
		return
	}
	if len(req.Password) < auth.MinPasswordLength {
		respondBadRequest(c, "password is too short")
		return
	}

	user, err := a.service.CreateUser(req.Name, req.Email, req.Password, entities.UserRoleAdmin)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	respondCreated(c, toUserResponse(user))
}
