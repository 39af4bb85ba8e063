package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/venturelink/venturelink-backend/internal/app/service"
	apperrors "github.com/venturelink/venturelink-backend/internal/errors"
	"github.com/venturelink/venturelink-backend/internal/middleware"
)

type BusinessController struct {
	businessService service.BusinessService
}

func NewBusinessController(businessService service.BusinessService) *BusinessController {
	return &BusinessController{businessService: businessService}
}

type CreateBusinessRequest struct {
	Name               string `json:"name" binding:"required"`
	RegistrationNumber string `json:"registration_number" binding:"required"`
	Sector             string `json:"sector" binding:"required"`
	Subsector          string `json:"subsector" binding:"required"`
	Description        string `json:"description"`
	Website            string `json:"website"`
}

type UpdateBusinessRequest struct {
	Name          *string  `json:"name"`
	Sector        *string  `json:"sector"`
	Subsector     *string  `json:"subsector"`
	Description   *string  `json:"description"`
	Mission       *string  `json:"mission"`
	TeamSummary   *string  `json:"team_summary"`
	Website       *string  `json:"website"`
	LogoURL       *string  `json:"logo_url"`
	MediaURLs     []string `json:"media_urls"`
	FoundedYear   *int     `json:"founded_year"`
	EmployeeCount *int     `json:"employee_count"`
	AnnualRevenue *int64   `json:"annual_revenue"`
	FundingTarget *int64   `json:"funding_target"`
}

// CreateBusiness registers a new business profile
// POST /api/v1/businesses
func (ctrl *BusinessController) CreateBusiness(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid business details")
		return
	}

	business, err := ctrl.businessService.CreateBusiness(userID, service.BusinessInput{
		Name:               req.Name,
		RegistrationNumber: req.RegistrationNumber,
		Sector:             req.Sector,
		Subsector:          req.Subsector,
		Description:        req.Description,
		Website:            req.Website,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBusinessOwnerRoleRequired):
			apperrors.Forbidden(c, "A business account is required to register a business")
		case errors.Is(err, service.ErrRegistrationNumberConflict):
			apperrors.Conflict(c, apperrors.BusinessAlreadyRegistered, "Registration number is already registered")
		default:
			log.Error("Failed to create business", err, map[string]interface{}{
				"user_id": userID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create business")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"business": business})
}

// UpdateBusiness applies a partial update to an owned business
// PATCH /api/v1/businesses/:id
func (ctrl *BusinessController) UpdateBusiness(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	businessID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid business ID")
		return
	}

	var req UpdateBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid business details")
		return
	}

	business, err := ctrl.businessService.UpdateBusiness(userID, uint(businessID), service.BusinessMutation{
		Name:          req.Name,
		Sector:        req.Sector,
		Subsector:     req.Subsector,
		Description:   req.Description,
		Mission:       req.Mission,
		TeamSummary:   req.TeamSummary,
		Website:       req.Website,
		LogoURL:       req.LogoURL,
		MediaURLs:     req.MediaURLs,
		FoundedYear:   req.FoundedYear,
		EmployeeCount: req.EmployeeCount,
		AnnualRevenue: req.AnnualRevenue,
		FundingTarget: req.FundingTarget,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBusinessNotFound):
			apperrors.NotFound(c, apperrors.BusinessNotFound, "Business not found")
		case errors.Is(err, service.ErrBusinessAccessDenied):
			apperrors.Forbidden(c, "You do not own this business")
		default:
			log.Error("Failed to update business", err, map[string]interface{}{
				"business_id": businessID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update business")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"business": business})
}

// ListBusinesses returns the public directory
// GET /api/v1/businesses
func (ctrl *BusinessController) ListBusinesses(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	businesses, err := ctrl.businessService.ListBusinesses(service.BusinessListOptions{
		Sector:    c.Query("sector"),
		Subsector: c.Query("subsector"),
		Search:    c.Query("search"),
	})
	if err != nil {
		log.Error("Failed to list businesses", err)
		apperrors.InternalError(c, "Failed to load the directory")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"businesses": businesses,
		"count":      len(businesses),
	})
}

// GetBusiness returns one directory entry by numeric ID or slug
// GET /api/v1/businesses/:id
func (ctrl *BusinessController) GetBusiness(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	param := c.Param("id")

	var business *service.BusinessWithTier
	var err error

	if id, parseErr := strconv.ParseUint(param, 10, 32); parseErr == nil {
		business, err = ctrl.businessService.GetBusiness(uint(id))
	} else {
		business, err = ctrl.businessService.GetBusinessBySlug(param)
	}

	if err != nil {
		if errors.Is(err, service.ErrBusinessNotFound) {
			apperrors.NotFound(c, apperrors.BusinessNotFound, "Business not found")
			return
		}
		log.Error("Failed to fetch business", err, map[string]interface{}{
			"param": param,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"business": business})
}

// GetMyBusinesses lists the caller's own business profiles
// GET /api/v1/businesses/mine
func (ctrl *BusinessController) GetMyBusinesses(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	businesses, err := ctrl.businessService.GetMyBusinesses(userID)
	if err != nil {
		log.Error("Failed to list owned businesses", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"businesses": businesses})
}
