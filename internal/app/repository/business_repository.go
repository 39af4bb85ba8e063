package repository

import (
	"github.com/venturelink/venturelink-backend/internal/app/model"
	"github.com/venturelink/venturelink-backend/pkg/logger"
	"gorm.io/gorm"
)

type BusinessFilter struct {
	Sector           string
	Subsector        string
	Search           string
	IncludeDocuments bool
}

type BusinessRepository interface {
	Create(business *model.BusinessProfile) error
	Update(business *model.BusinessProfile) error
	FindAll(filter BusinessFilter) ([]model.BusinessProfile, error)
	FindByID(id uint) (*model.BusinessProfile, error)
	FindByIDWithOwner(id uint) (*model.BusinessProfile, error)
	FindBySlug(slug string) (*model.BusinessProfile, error)
	FindByOwnerID(ownerID uint) ([]model.BusinessProfile, error)
	FindByRegistrationNumber(registrationNumber string) (*model.BusinessProfile, error)
	BulkCreate(businesses []model.BusinessProfile, batchSize int) error
}

type businessRepository struct {
	db *gorm.DB
}

func NewBusinessRepository(db *gorm.DB) BusinessRepository {
	return &businessRepository{db: db}
}

func (r *businessRepository) Create(business *model.BusinessProfile) error {
	logger.Debug("Creating business profile", map[string]interface{}{
		"name":     business.Name,
		"sector":   business.Sector,
		"owner_id": business.OwnerID,
	})

	if err := r.db.Create(business).Error; err != nil {
		logger.Error("Failed to create business profile", err, map[string]interface{}{
			"name":     business.Name,
			"owner_id": business.OwnerID,
		})
		return err
	}

	return nil
}

func (r *businessRepository) Update(business *model.BusinessProfile) error {
	if err := r.db.Save(business).Error; err != nil {
		logger.Error("Failed to update business profile", err, map[string]interface{}{
			"business_id": business.ID,
		})
		return err
	}
	return nil
}

func (r *businessRepository) FindAll(filter BusinessFilter) ([]model.BusinessProfile, error) {
	query := r.db.Model(&model.BusinessProfile{})

	if filter.IncludeDocuments {
		query = query.Preload("Documents")
	}
	if filter.Sector != "" {
		query = query.Where("sector = ?", filter.Sector)
	}
	if filter.Subsector != "" {
		query = query.Where("subsector = ?", filter.Subsector)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("name LIKE ?", like)
	}

	var businesses []model.BusinessProfile
	if err := query.Order("name ASC").Find(&businesses).Error; err != nil {
		logger.Error("Failed to list business profiles", err, map[string]interface{}{
			"sector":    filter.Sector,
			"subsector": filter.Subsector,
		})
		return nil, err
	}

	return businesses, nil
}

func (r *businessRepository) FindByID(id uint) (*model.BusinessProfile, error) {
	var business model.BusinessProfile
	if err := r.db.First(&business, id).Error; err != nil {
		return nil, err
	}
	return &business, nil
}

func (r *businessRepository) FindByIDWithOwner(id uint) (*model.BusinessProfile, error) {
	var business model.BusinessProfile
	if err := r.db.Preload("Owner").First(&business, id).Error; err != nil {
		return nil, err
	}
	return &business, nil
}

func (r *businessRepository) FindBySlug(slug string) (*model.BusinessProfile, error) {
	var business model.BusinessProfile
	if err := r.db.Where("slug = ?", slug).First(&business).Error; err != nil {
		return nil, err
	}
	return &business, nil
}

func (r *businessRepository) FindByOwnerID(ownerID uint) ([]model.BusinessProfile, error) {
	var businesses []model.BusinessProfile
	if err := r.db.Where("owner_id = ?", ownerID).Order("created_at ASC").Find(&businesses).Error; err != nil {
		return nil, err
	}
	return businesses, nil
}

func (r *businessRepository) FindByRegistrationNumber(registrationNumber string) (*model.BusinessProfile, error) {
	var business model.BusinessProfile
	if err := r.db.Where("registration_number = ?", registrationNumber).First(&business).Error; err != nil {
		return nil, err
	}
	return &business, nil
}

func (r *businessRepository) BulkCreate(businesses []model.BusinessProfile, batchSize int) error {
	if err := r.db.CreateInBatches(businesses, batchSize).Error; err != nil {
		logger.Error("Failed to bulk create business profiles", err, map[string]interface{}{
			"count": len(businesses),
		})
		return err
	}
	return nil
}
