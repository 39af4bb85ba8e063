package service

import (
	"errors"

	"github.com/venturelink/venturelink-backend/internal/app/model"
	"github.com/venturelink/venturelink-backend/internal/app/repository"
	"github.com/venturelink/venturelink-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrMatchNotFound     = errors.New("match suggestion not found")
	ErrMatchAccessDenied = errors.New("no permission for this match suggestion")
)

// Score composition: a preferred-sector hit is worth 40 points, the
// verification percentage fills the remaining 60.
const (
	matchSectorScore       = 40
	matchVerificationScale = 60
)

type MatchService interface {
	// GenerateSuggestions scans the investor's preferred sectors for
	// investable businesses and upserts suggestion rows. Existing rows
	// (contacted or dismissed included) are never downgraded.
	GenerateSuggestions(investorID uint) ([]model.MatchSuggestion, error)
	GetSuggestions(investorID uint) ([]model.MatchSuggestion, error)
	DismissSuggestion(investorID, suggestionID uint) error
}

type matchService struct {
	repo         repository.MatchRepository
	userRepo     repository.UserRepository
	businessRepo repository.BusinessRepository
	verification VerificationService
}

func NewMatchService(
	repo repository.MatchRepository,
	userRepo repository.UserRepository,
	businessRepo repository.BusinessRepository,
	verification VerificationService,
) MatchService {
	return &matchService{
		repo:         repo,
		userRepo:     userRepo,
		businessRepo: businessRepo,
		verification: verification,
	}
}

func (s *matchService) GenerateSuggestions(investorID uint) ([]model.MatchSuggestion, error) {
	investor, err := s.userRepo.FindByID(investorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	logger.Info("Generating match suggestions", map[string]interface{}{
		"investor_id": investorID,
		"sectors":     len(investor.PreferredSectors),
	})

	created := 0
	for _, sector := range investor.PreferredSectors {
		businesses, err := s.businessRepo.FindAll(repository.BusinessFilter{Sector: sector})
		if err != nil {
			logger.Error("Failed to list businesses for matching", err, map[string]interface{}{
				"sector": sector,
			})
			return nil, err
		}

		for _, business := range businesses {
			if business.OwnerID == investorID {
				continue
			}

			existing, err := s.repo.FindByPair(investorID, business.ID)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				continue
			}

			score, err := s.verification.CalculateScore(business.ID)
			if err != nil {
				logger.Warn("Skipping business in matching, scoring failed", map[string]interface{}{
					"business_id": business.ID,
					"error":       err.Error(),
				})
				continue
			}

			if score.TotalPercentage < InvestableThreshold {
				continue
			}

			suggestion := &model.MatchSuggestion{
				InvestorID: investorID,
				BusinessID: business.ID,
				Score:      matchSectorScore + matchVerificationScale*score.TotalPercentage/100,
				Status:     model.MatchStatusSuggested,
			}
			if err := s.repo.Create(suggestion); err != nil {
				logger.Error("Failed to create match suggestion", err, map[string]interface{}{
					"investor_id": investorID,
					"business_id": business.ID,
				})
				return nil, err
			}
			created++
		}
	}

	logger.Info("Match suggestions generated", map[string]interface{}{
		"investor_id": investorID,
		"created":     created,
	})

	return s.repo.FindByInvestorID(investorID)
}

func (s *matchService) GetSuggestions(investorID uint) ([]model.MatchSuggestion, error) {
	return s.repo.FindByInvestorID(investorID)
}

func (s *matchService) DismissSuggestion(investorID, suggestionID uint) error {
	suggestion, err := s.repo.FindByID(suggestionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMatchNotFound
		}
		return err
	}

	if suggestion.InvestorID != investorID {
		return ErrMatchAccessDenied
	}

	suggestion.Status = model.MatchStatusDismissed
	if err := s.repo.Update(suggestion); err != nil {
		logger.Error("Failed to dismiss match suggestion", err, map[string]interface{}{
			"suggestion_id": suggestionID,
		})
		return err
	}

	logger.Info("Match suggestion dismissed", map[string]interface{}{
		"suggestion_id": suggestionID,
		"investor_id":   investorID,
	})
	return nil
}
