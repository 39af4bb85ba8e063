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

type ConnectionController struct {
	connectionService service.ConnectionService
}

func NewConnectionController(connectionService service.ConnectionService) *ConnectionController {
	return &ConnectionController{connectionService: connectionService}
}

type InitiateConnectionRequest struct {
	BusinessID uint `json:"business_id" binding:"required"`
}

// InitiateConnection opens (or returns) the lead for a business
// POST /api/v1/connections
func (ctrl *ConnectionController) InitiateConnection(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	var req InitiateConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Business ID is required")
		return
	}

	conn, err := ctrl.connectionService.InitiateConnection(userID, req.BusinessID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBusinessNotFound):
			apperrors.NotFound(c, apperrors.BusinessNotFound, "Business not found")
		case errors.Is(err, service.ErrConnectionSelfNotAllowed):
			apperrors.BadRequest(c, apperrors.ConnectionSelfNotAllowed, "You cannot connect with your own business")
		default:
			log.Error("Failed to initiate connection", err, map[string]interface{}{
				"business_id": req.BusinessID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "initiate connection")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"connection": conn})
}

// RespondToConnection accepts a lead
// POST /api/v1/connections/:id/respond
func (ctrl *ConnectionController) RespondToConnection(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	connectionID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid connection ID")
		return
	}

	conn, err := ctrl.connectionService.RespondToConnection(uint(connectionID), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrConnectionNotFound):
			apperrors.NotFound(c, apperrors.ConnectionNotFound, "Connection not found")
		case errors.Is(err, service.ErrConnectionAccessDenied):
			apperrors.Forbidden(c, "You are not a party to this connection")
		case errors.Is(err, service.ErrConnectionClosed):
			apperrors.Conflict(c, apperrors.ConnectionClosed, "Connection has already been declined")
		case errors.Is(err, service.ErrBusinessNotInvestable):
			apperrors.Conflict(c, apperrors.BusinessNotInvestable, "Business has not reached the partnership-ready tier")
		default:
			log.Error("Failed to respond to connection", err, map[string]interface{}{
				"connection_id": connectionID,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"connection": conn})
}

// DeclineConnection rejects a lead
// POST /api/v1/connections/:id/decline
func (ctrl *ConnectionController) DeclineConnection(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	connectionID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid connection ID")
		return
	}

	conn, err := ctrl.connectionService.DeclineConnection(uint(connectionID), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrConnectionNotFound):
			apperrors.NotFound(c, apperrors.ConnectionNotFound, "Connection not found")
		case errors.Is(err, service.ErrConnectionAccessDenied):
			apperrors.Forbidden(c, "You are not a party to this connection")
		case errors.Is(err, service.ErrConnectionNotLead):
			apperrors.Conflict(c, apperrors.ConnectionNotLead, "Connection can no longer be declined")
		default:
			log.Error("Failed to decline connection", err, map[string]interface{}{
				"connection_id": connectionID,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"connection": conn})
}

// GetConnection returns one connection the caller is party to
// GET /api/v1/connections/:id
func (ctrl *ConnectionController) GetConnection(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	connectionID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid connection ID")
		return
	}

	conn, err := ctrl.connectionService.GetConnection(uint(connectionID), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrConnectionNotFound):
			apperrors.NotFound(c, apperrors.ConnectionNotFound, "Connection not found")
		case errors.Is(err, service.ErrConnectionAccessDenied):
			apperrors.Forbidden(c, "You are not a party to this connection")
		default:
			log.Error("Failed to fetch connection", err, map[string]interface{}{
				"connection_id": connectionID,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"connection": conn})
}

// GetMyConnections lists both sides of the caller's connections
// GET /api/v1/connections
func (ctrl *ConnectionController) GetMyConnections(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	connections, err := ctrl.connectionService.GetMyConnections(userID)
	if err != nil {
		log.Error("Failed to list connections", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"connections": connections,
		"count":       len(connections),
	})
}
