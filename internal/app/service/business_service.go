package service

import (
	"errors"

	"github.com/venturelink/venturelink-backend/internal/app/model"
	"github.com/venturelink/venturelink-backend/internal/app/repository"
	"github.com/venturelink/venturelink-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrBusinessOwnerRoleRequired  = errors.New("a business account is required to register a business")
	ErrRegistrationNumberConflict = errors.New("registration number already registered")
)

// BusinessWithTier is a directory entry enriched with the live tier.
type BusinessWithTier struct {
	model.BusinessProfile
	Verification *TierInfo `json:"verification,omitempty"`
}

type BusinessInput struct {
	Name               string
	RegistrationNumber string
	Sector             string
	Subsector          string
	Description        string
	Website            string
}

// BusinessMutation updates sections independently; nil leaves a field alone.
type BusinessMutation struct {
	Name          *string
	Sector        *string
	Subsector     *string
	Description   *string
	Mission       *string
	TeamSummary   *string
	Website       *string
	LogoURL       *string
	MediaURLs     []string
	FoundedYear   *int
	EmployeeCount *int
	AnnualRevenue *int64
	FundingTarget *int64
}

type BusinessListOptions struct {
	Sector    string
	Subsector string
	Search    string
}

type BusinessService interface {
	CreateBusiness(ownerID uint, input BusinessInput) (*model.BusinessProfile, error)
	UpdateBusiness(ownerID, businessID uint, input BusinessMutation) (*model.BusinessProfile, error)
	ListBusinesses(opts BusinessListOptions) ([]BusinessWithTier, error)
	GetBusiness(id uint) (*BusinessWithTier, error)
	GetBusinessBySlug(slug string) (*BusinessWithTier, error)
	GetMyBusinesses(ownerID uint) ([]model.BusinessProfile, error)
}

type businessService struct {
	repo         repository.BusinessRepository
	userRepo     repository.UserRepository
	verification VerificationService
}

func NewBusinessService(
	repo repository.BusinessRepository,
	userRepo repository.UserRepository,
	verification VerificationService,
) BusinessService {
	return &businessService{
		repo:         repo,
		userRepo:     userRepo,
		verification: verification,
	}
}

func (s *businessService) CreateBusiness(ownerID uint, input BusinessInput) (*model.BusinessProfile, error) {
	logger.Info("Creating business profile", map[string]interface{}{
		"owner_id": ownerID,
		"name":     input.Name,
	})

	owner, err := s.userRepo.FindByID(ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if owner.Role != model.RoleBusiness && owner.Role != model.RoleAdmin {
		return nil, ErrBusinessOwnerRoleRequired
	}

	existing, err := s.repo.FindByRegistrationNumber(input.RegistrationNumber)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		logger.Warn("Business registration number conflict", map[string]interface{}{
			"registration_number": input.RegistrationNumber,
		})
		return nil, ErrRegistrationNumberConflict
	}

	business := &model.BusinessProfile{
		OwnerID:            ownerID,
		Name:               input.Name,
		RegistrationNumber: input.RegistrationNumber,
		Sector:             input.Sector,
		Subsector:          input.Subsector,
		Description:        input.Description,
		Website:            input.Website,
	}

	if err := s.repo.Create(business); err != nil {
		logger.Error("Failed to create business profile", err, map[string]interface{}{
			"owner_id": ownerID,
			"name":     input.Name,
		})
		return nil, err
	}

	logger.Info("Business profile created", map[string]interface{}{
		"business_id": business.ID,
		"slug":        business.Slug,
	})
	return business, nil
}

func (s *businessService) UpdateBusiness(ownerID, businessID uint, input BusinessMutation) (*model.BusinessProfile, error) {
	existing, err := s.repo.FindByID(businessID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, err
	}

	if existing.OwnerID != ownerID {
		logger.Warn("Business update forbidden", map[string]interface{}{
			"business_id": businessID,
			"user_id":     ownerID,
		})
		return nil, ErrBusinessAccessDenied
	}

	if input.Name != nil {
		existing.Name = *input.Name
	}
	if input.Sector != nil {
		existing.Sector = *input.Sector
	}
	if input.Subsector != nil {
		existing.Subsector = *input.Subsector
	}
	if input.Description != nil {
		existing.Description = *input.Description
	}
	if input.Mission != nil {
		existing.Mission = *input.Mission
	}
	if input.TeamSummary != nil {
		existing.TeamSummary = *input.TeamSummary
	}
	if input.Website != nil {
		existing.Website = *input.Website
	}
	if input.LogoURL != nil {
		existing.LogoURL = *input.LogoURL
	}
	if input.MediaURLs != nil {
		existing.MediaURLs = input.MediaURLs
	}
	if input.FoundedYear != nil {
		existing.FoundedYear = input.FoundedYear
	}
	if input.EmployeeCount != nil {
		existing.EmployeeCount = input.EmployeeCount
	}
	if input.AnnualRevenue != nil {
		existing.AnnualRevenue = input.AnnualRevenue
	}
	if input.FundingTarget != nil {
		existing.FundingTarget = input.FundingTarget
	}

	if err := s.repo.Update(existing); err != nil {
		logger.Error("Failed to update business profile", err, map[string]interface{}{
			"business_id": businessID,
		})
		return nil, err
	}

	logger.Info("Business profile updated", map[string]interface{}{
		"business_id": businessID,
	})
	return existing, nil
}

func (s *businessService) ListBusinesses(opts BusinessListOptions) ([]BusinessWithTier, error) {
	businesses, err := s.repo.FindAll(repository.BusinessFilter{
		Sector:    opts.Sector,
		Subsector: opts.Subsector,
		Search:    opts.Search,
	})
	if err != nil {
		logger.Error("Failed to list businesses", err)
		return nil, err
	}

	result := make([]BusinessWithTier, 0, len(businesses))
	for _, business := range businesses {
		entry := BusinessWithTier{BusinessProfile: business}
		if tier, tierErr := s.verification.GetTierInfo(business.ID); tierErr == nil {
			entry.Verification = tier
		}
		result = append(result, entry)
	}

	return result, nil
}

func (s *businessService) GetBusiness(id uint) (*BusinessWithTier, error) {
	business, err := s.repo.FindByIDWithOwner(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, err
	}

	return s.withTier(business)
}

func (s *businessService) GetBusinessBySlug(slug string) (*BusinessWithTier, error) {
	business, err := s.repo.FindBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, err
	}

	return s.withTier(business)
}

func (s *businessService) GetMyBusinesses(ownerID uint) ([]model.BusinessProfile, error) {
	return s.repo.FindByOwnerID(ownerID)
}

func (s *businessService) withTier(business *model.BusinessProfile) (*BusinessWithTier, error) {
	entry := &BusinessWithTier{BusinessProfile: *business}

	tier, err := s.verification.GetTierInfo(business.ID)
	if err != nil {
		logger.Warn("Failed to compute tier for business", map[string]interface{}{
			"business_id": business.ID,
			"error":       err.Error(),
		})
		return entry, nil
	}

	entry.Verification = tier
	return entry, nil
}
