package repository

import (
	"github.com/venturelink/venturelink-backend/internal/app/model"
	"gorm.io/gorm"
)

type MatchRepository interface {
	Create(match *model.MatchSuggestion) error
	Update(match *model.MatchSuggestion) error
	FindByID(id uint) (*model.MatchSuggestion, error)
	FindByPair(investorID, businessID uint) (*model.MatchSuggestion, error)
	FindByInvestorID(investorID uint) ([]model.MatchSuggestion, error)
	MarkContacted(investorID, businessID uint) error
}

type matchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(db *gorm.DB) MatchRepository {
	return &matchRepository{db: db}
}

func (r *matchRepository) Create(match *model.MatchSuggestion) error {
	return r.db.Create(match).Error
}

func (r *matchRepository) Update(match *model.MatchSuggestion) error {
	return r.db.Save(match).Error
}

func (r *matchRepository) FindByID(id uint) (*model.MatchSuggestion, error) {
	var match model.MatchSuggestion
	if err := r.db.First(&match, id).Error; err != nil {
		return nil, err
	}
	return &match, nil
}

func (r *matchRepository) FindByPair(investorID, businessID uint) (*model.MatchSuggestion, error) {
	var match model.MatchSuggestion
	err := r.db.
		Where("investor_id = ? AND business_id = ?", investorID, businessID).
		First(&match).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &match, nil
}

func (r *matchRepository) FindByInvestorID(investorID uint) ([]model.MatchSuggestion, error) {
	var matches []model.MatchSuggestion
	if err := r.db.
		Where("investor_id = ? AND status = ?", investorID, model.MatchStatusSuggested).
		Preload("Business").
		Order("score DESC").
		Find(&matches).Error; err != nil {
		return nil, err
	}
	return matches, nil
}

// MarkContacted flips a suggestion to contacted when one exists for the pair.
// Missing suggestions are not an error; not every connection starts from one.
func (r *matchRepository) MarkContacted(investorID, businessID uint) error {
	return r.db.Model(&model.MatchSuggestion{}).
		Where("investor_id = ? AND business_id = ?", investorID, businessID).
		Update("status", model.MatchStatusContacted).Error
}
