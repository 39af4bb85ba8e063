package service

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/venturelink/venturelink-backend/internal/app/model"
	"github.com/venturelink/venturelink-backend/internal/app/repository"
	"github.com/venturelink/venturelink-backend/internal/catalog"
	"github.com/venturelink/venturelink-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrBusinessNotFound        = errors.New("business not found")
	ErrBusinessAccessDenied    = errors.New("no permission for this business")
	ErrDocumentNotFound        = errors.New("document not found")
	ErrDocumentNotPending      = errors.New("document has already been reviewed")
	ErrDocumentUnknownType     = errors.New("document type is not in the requirement catalog")
	ErrRejectionReasonRequired = errors.New("a rejection reason is required")
)

// Verification tiers, derived from the completeness percentage.
// Thresholds are business policy, not configuration.
const (
	TierBasic            = "BASIC"             // < 50
	TierVerified         = "VERIFIED"          // 50-74
	TierPartnershipReady = "PARTNERSHIP_READY" // 75-84
	TierHighlyVerified   = "HIGHLY_VERIFIED"   // 85-94
	TierPremium          = "PREMIUM"           // >= 95
)

// InvestableThreshold is the minimum completeness percentage a business
// needs before it can take part in investor-facing connection flows.
const InvestableThreshold = 75

// VerificationScore is computed on every read from the live document set.
// Never persisted, so it cannot go stale.
type VerificationScore struct {
	TotalPercentage        int      `json:"total_percentage"`
	Tier                   string   `json:"tier"`
	VerifiedDocumentsCount int      `json:"verified_documents_count"`
	MissingCoreDocuments   []string `json:"missing_core_documents"`
	MissingSectorDocuments []string `json:"missing_sector_documents"`
}

// TierInfo is the display payload for a tier.
type TierInfo struct {
	Tier                 string   `json:"tier"`
	TotalPercentage      int      `json:"total_percentage"`
	PercentageToNextTier int      `json:"percentage_to_next_tier"` // 0 at the top tier
	Benefits             []string `json:"benefits"`
}

type DocumentUpload struct {
	DocumentType string
	FileURL      string
	FileName     string
	FileSize     int64
}

type PendingDocumentList struct {
	Documents  []model.VerificationDocument `json:"documents"`
	TotalCount int64                        `json:"total_count"`
}

type VerificationService interface {
	CalculateScore(businessID uint) (*VerificationScore, error)
	GetTierInfo(businessID uint) (*TierInfo, error)
	CanReceiveInvestment(businessID uint) (bool, error)
	ListDocuments(userID, businessID uint) ([]model.VerificationDocument, error)
	UploadDocument(userID, businessID uint, input DocumentUpload) (*model.VerificationDocument, error)
	DeleteDocument(userID, documentID uint) error
	ListPendingDocuments(page, pageSize int) (*PendingDocumentList, error)
	ApproveDocument(adminID, documentID uint) (*model.VerificationDocument, error)
	RejectDocument(adminID, documentID uint, reason string) (*model.VerificationDocument, error)
}

type verificationService struct {
	businessRepo repository.BusinessRepository
	documentRepo repository.DocumentRepository
	catalog      catalog.Catalog
	notifier     NotificationService
}

// NewVerificationService wires the scoring engine. notifier may be nil in
// contexts that do not deliver notifications (seeding, reports).
func NewVerificationService(
	businessRepo repository.BusinessRepository,
	documentRepo repository.DocumentRepository,
	cat catalog.Catalog,
	notifier NotificationService,
) VerificationService {
	return &verificationService{
		businessRepo: businessRepo,
		documentRepo: documentRepo,
		catalog:      cat,
		notifier:     notifier,
	}
}

// CalculateScore computes the completeness percentage for a business from
// the latest upload of each required document type. Pending, rejected and
// expired uploads count as missing. Pure with respect to document state.
func (s *verificationService) CalculateScore(businessID uint) (*VerificationScore, error) {
	business, err := s.businessRepo.FindByID(businessID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, err
	}

	latest, err := s.documentRepo.FindLatestByType(businessID)
	if err != nil {
		logger.Error("Failed to load documents for scoring", err, map[string]interface{}{
			"business_id": businessID,
		})
		return nil, err
	}

	requirements := s.catalog.Requirements(business.Subsector)

	score := &VerificationScore{
		MissingCoreDocuments:   []string{},
		MissingSectorDocuments: []string{},
	}

	totalWeight := 0
	verifiedWeight := 0
	for _, req := range requirements {
		totalWeight += req.Weight

		doc, ok := latest[req.Type]
		if ok && doc.Status == model.DocumentStatusVerified {
			verifiedWeight += req.Weight
			score.VerifiedDocumentsCount++
			continue
		}

		if req.Category == model.DocumentCategoryCore {
			score.MissingCoreDocuments = append(score.MissingCoreDocuments, req.Name)
		} else {
			score.MissingSectorDocuments = append(score.MissingSectorDocuments, req.Name)
		}
	}

	// A subsector with no requirements defined scores 100: the business
	// cannot be penalized for documents nobody asked for.
	if totalWeight == 0 {
		score.TotalPercentage = 100
	} else {
		pct := int(math.Round(100 * float64(verifiedWeight) / float64(totalWeight)))
		if pct < 0 {
			pct = 0
		}
		if pct > 100 {
			pct = 100
		}
		score.TotalPercentage = pct
	}

	score.Tier = tierForPercentage(score.TotalPercentage)

	return score, nil
}

func (s *verificationService) GetTierInfo(businessID uint) (*TierInfo, error) {
	score, err := s.CalculateScore(businessID)
	if err != nil {
		return nil, err
	}

	return &TierInfo{
		Tier:                 score.Tier,
		TotalPercentage:      score.TotalPercentage,
		PercentageToNextTier: percentageToNextTier(score.TotalPercentage),
		Benefits:             tierBenefits[score.Tier],
	}, nil
}

func (s *verificationService) CanReceiveInvestment(businessID uint) (bool, error) {
	score, err := s.CalculateScore(businessID)
	if err != nil {
		return false, err
	}
	return score.TotalPercentage >= InvestableThreshold, nil
}

func (s *verificationService) ListDocuments(userID, businessID uint) ([]model.VerificationDocument, error) {
	business, err := s.businessRepo.FindByID(businessID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, err
	}

	if business.OwnerID != userID {
		return nil, ErrBusinessAccessDenied
	}

	return s.documentRepo.FindByBusinessID(businessID)
}

func (s *verificationService) UploadDocument(userID, businessID uint, input DocumentUpload) (*model.VerificationDocument, error) {
	logger.Info("Uploading verification document", map[string]interface{}{
		"business_id":   businessID,
		"user_id":       userID,
		"document_type": input.DocumentType,
	})

	business, err := s.businessRepo.FindByID(businessID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, err
	}

	if business.OwnerID != userID {
		logger.Warn("Document upload forbidden", map[string]interface{}{
			"business_id": businessID,
			"user_id":     userID,
		})
		return nil, ErrBusinessAccessDenied
	}

	req, ok := catalog.FindRequirement(s.catalog, business.Subsector, input.DocumentType)
	if !ok {
		return nil, ErrDocumentUnknownType
	}

	// A re-upload is a new pending row; the scorer only ever reads the
	// latest row per type, so the old one simply stops mattering.
	doc := &model.VerificationDocument{
		BusinessID:   businessID,
		DocumentType: req.Type,
		Category:     req.Category,
		FileURL:      input.FileURL,
		FileName:     input.FileName,
		FileSize:     input.FileSize,
		Status:       model.DocumentStatusPending,
		SubmittedAt:  time.Now(),
	}

	if err := s.documentRepo.Create(doc); err != nil {
		logger.Error("Failed to create verification document", err, map[string]interface{}{
			"business_id":   businessID,
			"document_type": input.DocumentType,
		})
		return nil, err
	}

	logger.Info("Verification document uploaded", map[string]interface{}{
		"document_id": doc.ID,
		"business_id": businessID,
	})
	return doc, nil
}

func (s *verificationService) DeleteDocument(userID, documentID uint) error {
	doc, err := s.documentRepo.FindByID(documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDocumentNotFound
		}
		return err
	}

	business, err := s.businessRepo.FindByID(doc.BusinessID)
	if err != nil {
		return err
	}

	if business.OwnerID != userID {
		logger.Warn("Document delete forbidden", map[string]interface{}{
			"document_id": documentID,
			"user_id":     userID,
		})
		return ErrBusinessAccessDenied
	}

	if err := s.documentRepo.Delete(documentID); err != nil {
		logger.Error("Failed to delete verification document", err, map[string]interface{}{
			"document_id": documentID,
		})
		return err
	}

	logger.Info("Verification document deleted", map[string]interface{}{
		"document_id": documentID,
		"business_id": doc.BusinessID,
	})
	return nil
}

func (s *verificationService) ListPendingDocuments(page, pageSize int) (*PendingDocumentList, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	docs, total, err := s.documentRepo.FindPending(pageSize, (page-1)*pageSize)
	if err != nil {
		logger.Error("Failed to list pending documents", err)
		return nil, err
	}

	return &PendingDocumentList{Documents: docs, TotalCount: total}, nil
}

func (s *verificationService) ApproveDocument(adminID, documentID uint) (*model.VerificationDocument, error) {
	doc, err := s.documentRepo.FindByID(documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}

	// Re-approving an already verified document is a harmless no-op.
	if doc.Status == model.DocumentStatusVerified {
		return doc, nil
	}
	if doc.Status != model.DocumentStatusPending {
		return nil, ErrDocumentNotPending
	}

	now := time.Now()
	doc.Status = model.DocumentStatusVerified
	doc.ReviewedAt = &now
	doc.ReviewedBy = &adminID
	doc.VerifiedAt = &now

	if err := s.documentRepo.Update(doc); err != nil {
		logger.Error("Failed to approve document", err, map[string]interface{}{
			"document_id": documentID,
		})
		return nil, err
	}

	logger.Info("Document approved", map[string]interface{}{
		"document_id": documentID,
		"admin_id":    adminID,
	})

	if s.notifier != nil {
		s.notifier.NotifyDocumentReviewed(doc, true, "")
	}

	return doc, nil
}

func (s *verificationService) RejectDocument(adminID, documentID uint, reason string) (*model.VerificationDocument, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, ErrRejectionReasonRequired
	}

	doc, err := s.documentRepo.FindByID(documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}

	if doc.Status != model.DocumentStatusPending {
		return nil, ErrDocumentNotPending
	}

	now := time.Now()
	doc.Status = model.DocumentStatusRejected
	doc.ReviewedAt = &now
	doc.ReviewedBy = &adminID
	doc.RejectionReason = reason

	if err := s.documentRepo.Update(doc); err != nil {
		logger.Error("Failed to reject document", err, map[string]interface{}{
			"document_id": documentID,
		})
		return nil, err
	}

	logger.Info("Document rejected", map[string]interface{}{
		"document_id": documentID,
		"admin_id":    adminID,
	})

	if s.notifier != nil {
		s.notifier.NotifyDocumentReviewed(doc, false, reason)
	}

	return doc, nil
}

// tierForPercentage maps a percentage to its tier. Lower bounds inclusive.
func tierForPercentage(pct int) string {
	switch {
	case pct >= 95:
		return TierPremium
	case pct >= 85:
		return TierHighlyVerified
	case pct >= 75:
		return TierPartnershipReady
	case pct >= 50:
		return TierVerified
	default:
		return TierBasic
	}
}

// percentageToNextTier returns the distance to the next threshold, 0 at PREMIUM.
func percentageToNextTier(pct int) int {
	for _, threshold := range []int{50, 75, 85, 95} {
		if pct < threshold {
			return threshold - pct
		}
	}
	return 0
}

// Display-only benefit lists per tier.
var tierBenefits = map[string][]string{
	TierBasic: {
		"Public directory listing",
	},
	TierVerified: {
		"Public directory listing",
		"Verified badge on profile",
	},
	TierPartnershipReady: {
		"Public directory listing",
		"Verified badge on profile",
		"Eligible for investor connections",
	},
	TierHighlyVerified: {
		"Public directory listing",
		"Verified badge on profile",
		"Eligible for investor connections",
		"Priority placement in match suggestions",
	},
	TierPremium: {
		"Public directory listing",
		"Verified badge on profile",
		"Eligible for investor connections",
		"Priority placement in match suggestions",
		"Featured on the platform homepage",
	},
}
