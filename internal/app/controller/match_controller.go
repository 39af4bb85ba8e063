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

type MatchController struct {
	matchService service.MatchService
}

func NewMatchController(matchService service.MatchService) *MatchController {
	return &MatchController{matchService: matchService}
}

// GenerateSuggestions recomputes match suggestions for the caller
// POST /api/v1/matches/generate
func (ctrl *MatchController) GenerateSuggestions(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	matches, err := ctrl.matchService.GenerateSuggestions(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Investor profile not found")
			return
		}
		log.Error("Failed to generate match suggestions", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"matches": matches})
}

// GetSuggestions lists the caller's current match suggestions
// GET /api/v1/matches
func (ctrl *MatchController) GetSuggestions(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	matches, err := ctrl.matchService.GetSuggestions(userID)
	if err != nil {
		log.Error("Failed to list match suggestions", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"matches": matches})
}

// DismissSuggestion hides a suggestion from future listings
// POST /api/v1/matches/:id/dismiss
func (ctrl *MatchController) DismissSuggestion(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	matchID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid match ID")
		return
	}

	if err := ctrl.matchService.DismissSuggestion(userID, uint(matchID)); err != nil {
		switch {
		case errors.Is(err, service.ErrMatchNotFound):
			apperrors.NotFound(c, apperrors.MatchNotFound, "Match suggestion not found")
		case errors.Is(err, service.ErrMatchAccessDenied):
			apperrors.Forbidden(c, "This suggestion belongs to another investor")
		default:
			log.Error("Failed to dismiss match suggestion", err, map[string]interface{}{
				"match_id": matchID,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Suggestion dismissed"})
}
