package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/venturelink/venturelink-backend/internal/errors"
	"github.com/venturelink/venturelink-backend/internal/middleware"
	"github.com/venturelink/venturelink-backend/internal/storage"
)

type UploadController struct {
	storage       *storage.S3Storage
	maxUploadSize int64
}

func NewUploadController(storage *storage.S3Storage, maxUploadSize int64) *UploadController {
	return &UploadController{storage: storage, maxUploadSize: maxUploadSize}
}

type PresignedURLRequest struct {
	FileName    string `json:"file_name" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	FileSize    int64  `json:"file_size" binding:"required"`
	Folder      string `json:"folder" binding:"omitempty,oneof=documents media"`
}

// GetPresignedURL issues a pre-signed PUT URL for a direct browser upload
// POST /api/v1/upload/presigned-url
func (ctrl *UploadController) GetPresignedURL(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	var req PresignedURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "file_name, content_type and file_size are required")
		return
	}

	if err := ctrl.storage.ValidateFileName(req.FileName); err != nil {
		apperrors.BadRequest(c, apperrors.UploadInvalidFileType, err.Error())
		return
	}
	if err := ctrl.storage.ValidateFileSize(req.FileSize, ctrl.maxUploadSize); err != nil {
		apperrors.BadRequest(c, apperrors.UploadFileTooLarge, err.Error())
		return
	}

	folder := req.Folder
	if folder == "" {
		folder = "documents"
	}

	resp, err := ctrl.storage.GeneratePresignedURL(req.FileName, req.ContentType, folder)
	if err != nil {
		log.Error("Failed to generate presigned URL", err, map[string]interface{}{
			"user_id":   userID,
			"file_name": req.FileName,
		})
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.UploadFailed, "Failed to prepare upload")
		return
	}

	log.Info("Presigned upload URL issued", map[string]interface{}{
		"user_id": userID,
		"key":     resp.Key,
	})

	c.JSON(http.StatusOK, resp)
}
