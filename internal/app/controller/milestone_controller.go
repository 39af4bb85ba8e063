package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/venturelink/venturelink-backend/internal/app/model"
	"github.com/venturelink/venturelink-backend/internal/app/service"
	apperrors "github.com/venturelink/venturelink-backend/internal/errors"
	"github.com/venturelink/venturelink-backend/internal/middleware"
	"github.com/venturelink/venturelink-backend/pkg/logger"
)

type MilestoneController struct {
	milestoneService service.MilestoneService
}

func NewMilestoneController(milestoneService service.MilestoneService) *MilestoneController {
	return &MilestoneController{milestoneService: milestoneService}
}

type ProposeMilestoneRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Amount      *int64     `json:"amount"`
	Deadline    *time.Time `json:"deadline"`
}

type RequestExtensionRequest struct {
	NewDeadline time.Time `json:"new_deadline" binding:"required"`
	Reason      string    `json:"reason"`
}

type DecideExtensionRequest struct {
	Approve bool `json:"approve"`
}

// ProposeMilestone creates a milestone proposal on a connection
// POST /api/v1/connections/:id/milestones
func (ctrl *MilestoneController) ProposeMilestone(c *gin.Context) {
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

	var req ProposeMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Milestone title is required")
		return
	}

	milestone, err := ctrl.milestoneService.ProposeMilestone(uint(connectionID), userID, service.MilestoneInput{
		Title:       req.Title,
		Description: req.Description,
		Amount:      req.Amount,
		Deadline:    req.Deadline,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrConnectionNotFound):
			apperrors.NotFound(c, apperrors.ConnectionNotFound, "Connection not found")
		case errors.Is(err, service.ErrMilestoneAccessDenied):
			apperrors.Forbidden(c, "You are not a party to this connection")
		case errors.Is(err, service.ErrConnectionNotActive):
			apperrors.Conflict(c, apperrors.ConnectionNotLead, "Milestones require an accepted connection")
		case errors.Is(err, service.ErrMilestoneTitleRequired):
			apperrors.BadRequest(c, apperrors.ValidationRequired, "Milestone title is required")
		default:
			log.Error("Failed to propose milestone", err, map[string]interface{}{
				"connection_id": connectionID,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"milestone": milestone})
}

// GetMilestones lists a connection's milestones with their extensions
// GET /api/v1/connections/:id/milestones
func (ctrl *MilestoneController) GetMilestones(c *gin.Context) {
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

	milestones, err := ctrl.milestoneService.GetMilestones(uint(connectionID), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrConnectionNotFound):
			apperrors.NotFound(c, apperrors.ConnectionNotFound, "Connection not found")
		case errors.Is(err, service.ErrMilestoneAccessDenied):
			apperrors.Forbidden(c, "You are not a party to this connection")
		default:
			log.Error("Failed to list milestones", err, map[string]interface{}{
				"connection_id": connectionID,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"milestones": milestones})
}

// AgreeMilestone accepts a proposed milestone
// POST /api/v1/milestones/:id/agree
func (ctrl *MilestoneController) AgreeMilestone(c *gin.Context) {
	ctrl.transition(c, "agree", ctrl.milestoneService.AgreeMilestone)
}

// RejectMilestone declines a proposed milestone
// POST /api/v1/milestones/:id/reject
func (ctrl *MilestoneController) RejectMilestone(c *gin.Context) {
	ctrl.transition(c, "reject", ctrl.milestoneService.RejectMilestone)
}

// CompleteMilestone marks an agreed milestone done
// POST /api/v1/milestones/:id/complete
func (ctrl *MilestoneController) CompleteMilestone(c *gin.Context) {
	ctrl.transition(c, "complete", ctrl.milestoneService.CompleteMilestone)
}

// CancelMilestone cancels a proposed or agreed milestone
// POST /api/v1/milestones/:id/cancel
func (ctrl *MilestoneController) CancelMilestone(c *gin.Context) {
	ctrl.transition(c, "cancel", ctrl.milestoneService.CancelMilestone)
}

// RequestExtension opens a deadline extension request
// POST /api/v1/milestones/:id/extensions
func (ctrl *MilestoneController) RequestExtension(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	milestoneID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid milestone ID")
		return
	}

	var req RequestExtensionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "A new deadline is required")
		return
	}

	ext, err := ctrl.milestoneService.RequestExtension(uint(milestoneID), userID, req.NewDeadline, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMilestoneNotFound):
			apperrors.NotFound(c, apperrors.MilestoneNotFound, "Milestone not found")
		case errors.Is(err, service.ErrMilestoneAccessDenied):
			apperrors.Forbidden(c, "You are not a party to this milestone")
		case errors.Is(err, service.ErrMilestoneInvalidState):
			apperrors.Conflict(c, apperrors.MilestoneInvalidState, "Extensions require an agreed milestone")
		case errors.Is(err, service.ErrExtensionPendingExists):
			apperrors.Conflict(c, apperrors.ExtensionInvalidState, "An extension request is already pending")
		default:
			log.Error("Failed to request extension", err, map[string]interface{}{
				"milestone_id": milestoneID,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"extension": ext})
}

// DecideExtension approves or rejects a pending extension request
// POST /api/v1/extensions/:id/decide
func (ctrl *MilestoneController) DecideExtension(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	extensionID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid extension ID")
		return
	}

	var req DecideExtensionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid decision")
		return
	}

	ext, err := ctrl.milestoneService.DecideExtension(uint(extensionID), userID, req.Approve)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExtensionNotFound):
			apperrors.NotFound(c, apperrors.ExtensionNotFound, "Extension request not found")
		case errors.Is(err, service.ErrMilestoneAccessDenied):
			apperrors.Forbidden(c, "You are not a party to this milestone")
		case errors.Is(err, service.ErrExtensionInvalidState):
			apperrors.Conflict(c, apperrors.ExtensionInvalidState, "Extension request has already been decided")
		case errors.Is(err, service.ErrMilestoneNotCounterparty):
			apperrors.Forbidden(c, "Only the counterparty can decide this request")
		default:
			log.Error("Failed to decide extension", err, map[string]interface{}{
				"extension_id": extensionID,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"extension": ext})
}

// transition handles the shared shape of the milestone state endpoints.
func (ctrl *MilestoneController) transition(c *gin.Context, action string, fn func(uint, uint) (*model.Milestone, error)) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	milestoneID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid milestone ID")
		return
	}

	milestone, err := fn(uint(milestoneID), userID)
	if err != nil {
		ctrl.respondMilestoneError(c, err, action, uint(milestoneID), log)
		return
	}

	c.JSON(http.StatusOK, gin.H{"milestone": milestone})
}

func (ctrl *MilestoneController) respondMilestoneError(c *gin.Context, err error, action string, milestoneID uint, log *logger.Logger) {
	switch {
	case errors.Is(err, service.ErrMilestoneNotFound):
		apperrors.NotFound(c, apperrors.MilestoneNotFound, "Milestone not found")
	case errors.Is(err, service.ErrMilestoneAccessDenied):
		apperrors.Forbidden(c, "You are not a party to this milestone")
	case errors.Is(err, service.ErrMilestoneInvalidState):
		apperrors.Conflict(c, apperrors.MilestoneInvalidState, "Milestone is not in a state that allows this action")
	case errors.Is(err, service.ErrMilestoneNotCounterparty):
		apperrors.Forbidden(c, "Only the counterparty can decide on a proposal")
	default:
		log.Error("Milestone transition failed", err, map[string]interface{}{
			"milestone_id": milestoneID,
			"action":       action,
		})
		apperrors.InternalError(c, "")
	}
}
