package controller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/venturelink/venturelink-backend/internal/app/model"
	"github.com/venturelink/venturelink-backend/internal/app/service"
	apperrors "github.com/venturelink/venturelink-backend/internal/errors"
	"github.com/venturelink/venturelink-backend/internal/middleware"
	"github.com/venturelink/venturelink-backend/pkg/util"
)

type AuthController struct {
	authService service.AuthService
	jwtSecret   string
}

func NewAuthController(authService service.AuthService, jwtSecret string) *AuthController {
	return &AuthController{
		authService: authService,
		jwtSecret:   jwtSecret,
	}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
	Role     string `json:"role" binding:"required,oneof=investor business"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type UpdateProfileRequest struct {
	Name             *string  `json:"name"`
	Bio              *string  `json:"bio"`
	ProfileImage     *string  `json:"profile_image"` // S3 URL from upload API
	PreferredSectors []string `json:"preferred_sectors"`
	TicketMin        *int64   `json:"ticket_min"`
	TicketMax        *int64   `json:"ticket_max"`
}

func userResponse(user *model.User) gin.H {
	return gin.H{
		"id":                user.ID,
		"email":             user.Email,
		"name":              user.Name,
		"role":              user.Role,
		"bio":               user.Bio,
		"profile_image":     user.ProfileImage,
		"preferred_sectors": user.PreferredSectors,
		"ticket_min":        user.TicketMin,
		"ticket_max":        user.TicketMax,
	}
}

// Register handles account creation
// POST /api/v1/auth/register
func (ctrl *AuthController) Register(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid registration request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid registration details")
		return
	}

	user, tokens, err := ctrl.authService.Register(req.Email, req.Password, req.Name, model.UserRole(req.Role))
	if err != nil {
		if errors.Is(err, service.ErrEmailAlreadyExists) {
			log.Warn("Registration failed: email already exists", map[string]interface{}{
				"email": req.Email,
			})
			apperrors.Conflict(c, apperrors.AuthEmailAlreadyExists, "Email is already in use")
			return
		}
		if errors.Is(err, service.ErrInvalidRole) {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Role must be investor or business")
			return
		}
		log.Error("Registration failed", err, map[string]interface{}{
			"email": req.Email,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "register user")
		return
	}

	log.Info("User registered", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})

	c.JSON(http.StatusCreated, gin.H{
		"user":   userResponse(user),
		"tokens": tokens,
	})
}

// Login handles credential login
// POST /api/v1/auth/login
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid login details")
		return
	}

	user, tokens, err := ctrl.authService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			log.Warn("Login failed: invalid credentials", map[string]interface{}{
				"email": req.Email,
			})
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthInvalidCredentials, "Invalid email or password")
			return
		}
		log.Error("Login failed", err, map[string]interface{}{
			"email": req.Email,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "login")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":   userResponse(user),
		"tokens": tokens,
	})
}

// Logout blacklists the presented access token
// POST /api/v1/auth/logout
func (ctrl *AuthController) Logout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	authHeader := c.GetHeader("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}
	token := parts[1]

	claims, err := util.ValidateToken(token, ctrl.jwtSecret)
	if err != nil {
		apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenInvalid, "Invalid authentication token")
		return
	}

	remaining := claims.ExpiresAt.Time.Sub(claims.IssuedAt.Time)
	if err := ctrl.authService.Logout(c.Request.Context(), token, remaining); err != nil {
		log.Error("Logout failed", err)
		apperrors.InternalError(c, "Failed to log out")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// RefreshToken exchanges a refresh token for a new pair
// POST /api/v1/auth/refresh
func (ctrl *AuthController) RefreshToken(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Refresh token is required")
		return
	}

	tokens, err := ctrl.authService.RefreshTokens(req.RefreshToken)
	if err != nil {
		log.Warn("Token refresh failed", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenInvalid, "Invalid refresh token")
		return
	}

	c.JSON(http.StatusOK, gin.H{"tokens": tokens})
}

// GetMe returns the current user
// GET /api/v1/auth/me
func (ctrl *AuthController) GetMe(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	user, err := ctrl.authService.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "User not found")
			return
		}
		log.Error("Failed to fetch current user", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": userResponse(user)})
}

// UpdateProfile updates the caller's profile and investor preferences
// PATCH /api/v1/auth/me
func (ctrl *AuthController) UpdateProfile(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid profile details")
		return
	}

	user, err := ctrl.authService.UpdateProfile(userID, service.InvestorProfileUpdate{
		Name:             req.Name,
		Bio:              req.Bio,
		ProfileImage:     req.ProfileImage,
		PreferredSectors: req.PreferredSectors,
		TicketMin:        req.TicketMin,
		TicketMax:        req.TicketMax,
	})
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "User not found")
			return
		}
		log.Error("Profile update failed", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": userResponse(user)})
}
