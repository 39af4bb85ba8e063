package repository

import (
	"github.com/venturelink/venturelink-backend/internal/app/model"
	"gorm.io/gorm"
)

type MilestoneRepository interface {
	Create(milestone *model.Milestone) error
	Update(milestone *model.Milestone) error
	FindByID(id uint) (*model.Milestone, error)
	FindByConnectionID(connectionID uint) ([]model.Milestone, error)

	CreateExtension(ext *model.MilestoneExtension) error
	UpdateExtension(ext *model.MilestoneExtension) error
	FindExtensionByID(id uint) (*model.MilestoneExtension, error)
	FindPendingExtension(milestoneID uint) (*model.MilestoneExtension, error)
}

type milestoneRepository struct {
	db *gorm.DB
}

func NewMilestoneRepository(db *gorm.DB) MilestoneRepository {
	return &milestoneRepository{db: db}
}

func (r *milestoneRepository) Create(milestone *model.Milestone) error {
	return r.db.Create(milestone).Error
}

func (r *milestoneRepository) Update(milestone *model.Milestone) error {
	return r.db.Save(milestone).Error
}

func (r *milestoneRepository) FindByID(id uint) (*model.Milestone, error) {
	var milestone model.Milestone
	if err := r.db.First(&milestone, id).Error; err != nil {
		return nil, err
	}
	return &milestone, nil
}

func (r *milestoneRepository) FindByConnectionID(connectionID uint) ([]model.Milestone, error) {
	var milestones []model.Milestone
	if err := r.db.
		Where("connection_id = ?", connectionID).
		Preload("Extensions").
		Order("created_at ASC").
		Find(&milestones).Error; err != nil {
		return nil, err
	}
	return milestones, nil
}

func (r *milestoneRepository) CreateExtension(ext *model.MilestoneExtension) error {
	return r.db.Create(ext).Error
}

func (r *milestoneRepository) UpdateExtension(ext *model.MilestoneExtension) error {
	return r.db.Save(ext).Error
}

func (r *milestoneRepository) FindExtensionByID(id uint) (*model.MilestoneExtension, error) {
	var ext model.MilestoneExtension
	if err := r.db.First(&ext, id).Error; err != nil {
		return nil, err
	}
	return &ext, nil
}

// FindPendingExtension returns the open extension request on a milestone,
// or nil when there is none.
func (r *milestoneRepository) FindPendingExtension(milestoneID uint) (*model.MilestoneExtension, error) {
	var ext model.MilestoneExtension
	err := r.db.
		Where("milestone_id = ? AND status = ?", milestoneID, model.ExtensionStatusPending).
		First(&ext).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &ext, nil
}
