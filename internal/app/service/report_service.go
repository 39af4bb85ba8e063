package service

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/venturelink/venturelink-backend/internal/app/repository"
	"github.com/venturelink/venturelink-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

const ledgerSheetName = "Verification Ledger"

type ReportService interface {
	// GenerateVerificationLedger renders every business with its live
	// score, tier and missing documents into an XLSX workbook.
	GenerateVerificationLedger() (*bytes.Buffer, error)
}

type reportService struct {
	businessRepo repository.BusinessRepository
	verification VerificationService
}

func NewReportService(businessRepo repository.BusinessRepository, verification VerificationService) ReportService {
	return &reportService{
		businessRepo: businessRepo,
		verification: verification,
	}
}

func (s *reportService) GenerateVerificationLedger() (*bytes.Buffer, error) {
	logger.Info("Generating verification ledger")

	businesses, err := s.businessRepo.FindAll(repository.BusinessFilter{})
	if err != nil {
		logger.Error("Failed to list businesses for ledger", err)
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(ledgerSheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{
		"ID", "Name", "Registration Number", "Sector", "Subsector",
		"Percentage", "Tier", "Verified Documents", "Missing Core", "Missing Sector",
	}
	for col, header := range headers {
		cell, cellErr := excelize.CoordinatesToCellName(col+1, 1)
		if cellErr != nil {
			return nil, cellErr
		}
		if err := f.SetCellValue(ledgerSheetName, cell, header); err != nil {
			return nil, err
		}
	}

	row := 2
	for _, business := range businesses {
		score, scoreErr := s.verification.CalculateScore(business.ID)
		if scoreErr != nil {
			logger.Warn("Skipping business in ledger, scoring failed", map[string]interface{}{
				"business_id": business.ID,
				"error":       scoreErr.Error(),
			})
			continue
		}

		values := []interface{}{
			business.ID,
			business.Name,
			business.RegistrationNumber,
			business.Sector,
			business.Subsector,
			score.TotalPercentage,
			score.Tier,
			score.VerifiedDocumentsCount,
			strings.Join(score.MissingCoreDocuments, ", "),
			strings.Join(score.MissingSectorDocuments, ", "),
		}
		for col, value := range values {
			cell, cellErr := excelize.CoordinatesToCellName(col+1, row)
			if cellErr != nil {
				return nil, cellErr
			}
			if err := f.SetCellValue(ledgerSheetName, cell, value); err != nil {
				return nil, err
			}
		}
		row++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render ledger workbook: %w", err)
	}

	logger.Info("Verification ledger generated", map[string]interface{}{
		"businesses": row - 2,
	})
	return buf, nil
}
