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

type VerificationController struct {
	verificationService service.VerificationService
}

func NewVerificationController(verificationService service.VerificationService) *VerificationController {
	return &VerificationController{verificationService: verificationService}
}

type UploadDocumentRequest struct {
	DocumentType string `json:"document_type" binding:"required"`
	FileURL      string `json:"file_url" binding:"required"`
	FileName     string `json:"file_name" binding:"required"`
	FileSize     int64  `json:"file_size"`
}

type RejectDocumentRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// GetScore returns the live verification score of a business
// GET /api/v1/businesses/:id/verification/score
func (ctrl *VerificationController) GetScore(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	businessID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid business ID")
		return
	}

	score, err := ctrl.verificationService.CalculateScore(uint(businessID))
	if err != nil {
		if errors.Is(err, service.ErrBusinessNotFound) {
			apperrors.NotFound(c, apperrors.BusinessNotFound, "Business not found")
			return
		}
		log.Error("Failed to calculate score", err, map[string]interface{}{
			"business_id": businessID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"score": score})
}

// GetTier returns the tier payload of a business
// GET /api/v1/businesses/:id/verification/tier
func (ctrl *VerificationController) GetTier(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	businessID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid business ID")
		return
	}

	tier, err := ctrl.verificationService.GetTierInfo(uint(businessID))
	if err != nil {
		if errors.Is(err, service.ErrBusinessNotFound) {
			apperrors.NotFound(c, apperrors.BusinessNotFound, "Business not found")
			return
		}
		log.Error("Failed to compute tier", err, map[string]interface{}{
			"business_id": businessID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"tier": tier})
}

// ListDocuments lists the documents of an owned business
// GET /api/v1/businesses/:id/documents
func (ctrl *VerificationController) ListDocuments(c *gin.Context) {
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

	documents, err := ctrl.verificationService.ListDocuments(userID, uint(businessID))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBusinessNotFound):
			apperrors.NotFound(c, apperrors.BusinessNotFound, "Business not found")
		case errors.Is(err, service.ErrBusinessAccessDenied):
			apperrors.Forbidden(c, "You do not own this business")
		default:
			log.Error("Failed to list documents", err, map[string]interface{}{
				"business_id": businessID,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"documents": documents})
}

// UploadDocument records an uploaded verification document
// POST /api/v1/businesses/:id/documents
func (ctrl *VerificationController) UploadDocument(c *gin.Context) {
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

	var req UploadDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid document details")
		return
	}

	document, err := ctrl.verificationService.UploadDocument(userID, uint(businessID), service.DocumentUpload{
		DocumentType: req.DocumentType,
		FileURL:      req.FileURL,
		FileName:     req.FileName,
		FileSize:     req.FileSize,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBusinessNotFound):
			apperrors.NotFound(c, apperrors.BusinessNotFound, "Business not found")
		case errors.Is(err, service.ErrBusinessAccessDenied):
			apperrors.Forbidden(c, "You do not own this business")
		case errors.Is(err, service.ErrDocumentUnknownType):
			apperrors.BadRequest(c, apperrors.DocumentUnknownType, "Document type is not required for this business")
		default:
			log.Error("Failed to upload document", err, map[string]interface{}{
				"business_id": businessID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "upload document")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"document": document})
}

// DeleteDocument removes one of the caller's documents
// DELETE /api/v1/documents/:id
func (ctrl *VerificationController) DeleteDocument(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	documentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid document ID")
		return
	}

	if err := ctrl.verificationService.DeleteDocument(userID, uint(documentID)); err != nil {
		switch {
		case errors.Is(err, service.ErrDocumentNotFound):
			apperrors.NotFound(c, apperrors.DocumentNotFound, "Document not found")
		case errors.Is(err, service.ErrBusinessAccessDenied):
			apperrors.Forbidden(c, "You do not own this document")
		default:
			log.Error("Failed to delete document", err, map[string]interface{}{
				"document_id": documentID,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Document deleted"})
}

// ListPendingDocuments is the admin review queue
// GET /api/v1/admin/documents/pending
func (ctrl *VerificationController) ListPendingDocuments(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	result, err := ctrl.verificationService.ListPendingDocuments(page, pageSize)
	if err != nil {
		log.Error("Failed to list pending documents", err)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"documents": result.Documents,
		"total":     result.TotalCount,
		"page":      page,
		"page_size": pageSize,
	})
}

// ApproveDocument verifies a pending document
// POST /api/v1/admin/documents/:id/approve
func (ctrl *VerificationController) ApproveDocument(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	adminID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	documentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid document ID")
		return
	}

	document, err := ctrl.verificationService.ApproveDocument(adminID, uint(documentID))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDocumentNotFound):
			apperrors.NotFound(c, apperrors.DocumentNotFound, "Document not found")
		case errors.Is(err, service.ErrDocumentNotPending):
			apperrors.Conflict(c, apperrors.DocumentNotPending, "Document has already been reviewed")
		default:
			log.Error("Failed to approve document", err, map[string]interface{}{
				"document_id": documentID,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"document": document})
}

// RejectDocument rejects a pending document with a reason
// POST /api/v1/admin/documents/:id/reject
func (ctrl *VerificationController) RejectDocument(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	adminID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	documentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid document ID")
		return
	}

	var req RejectDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.DocumentReasonRequired, "A rejection reason is required")
		return
	}

	document, err := ctrl.verificationService.RejectDocument(adminID, uint(documentID), req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDocumentNotFound):
			apperrors.NotFound(c, apperrors.DocumentNotFound, "Document not found")
		case errors.Is(err, service.ErrDocumentNotPending):
			apperrors.Conflict(c, apperrors.DocumentNotPending, "Document has already been reviewed")
		case errors.Is(err, service.ErrRejectionReasonRequired):
			apperrors.BadRequest(c, apperrors.DocumentReasonRequired, "A rejection reason is required")
		default:
			log.Error("Failed to reject document", err, map[string]interface{}{
				"document_id": documentID,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"document": document})
}
