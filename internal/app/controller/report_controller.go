package controller

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/venturelink/venturelink-backend/internal/app/service"
	apperrors "github.com/venturelink/venturelink-backend/internal/errors"
	"github.com/venturelink/venturelink-backend/internal/middleware"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportController struct {
	reportService service.ReportService
}

func NewReportController(reportService service.ReportService) *ReportController {
	return &ReportController{reportService: reportService}
}

// DownloadVerificationLedger streams the verification ledger as an XLSX file
// GET /api/v1/admin/reports/verification-ledger
func (ctrl *ReportController) DownloadVerificationLedger(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	buf, err := ctrl.reportService.GenerateVerificationLedger()
	if err != nil {
		log.Error("Failed to generate verification ledger", err)
		apperrors.InternalError(c, "")
		return
	}

	filename := fmt.Sprintf("verification-ledger-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
