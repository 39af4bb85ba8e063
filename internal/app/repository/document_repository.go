package repository

import (
	"time"

	"github.com/venturelink/venturelink-backend/internal/app/model"
	"gorm.io/gorm"
)

type DocumentRepository interface {
	Create(doc *model.VerificationDocument) error
	Update(doc *model.VerificationDocument) error
	Delete(id uint) error
	FindByID(id uint) (*model.VerificationDocument, error)
	FindByBusinessID(businessID uint) ([]model.VerificationDocument, error)
	// FindLatestByType returns the most recent upload per document type for
	// a business; scoring only ever looks at the latest row of each type.
	FindLatestByType(businessID uint) (map[string]model.VerificationDocument, error)
	FindPending(limit, offset int) ([]model.VerificationDocument, int64, error)
	// ExpireVerifiedBefore marks verified documents approved before the
	// cutoff as expired and returns how many rows changed.
	ExpireVerifiedBefore(cutoff time.Time) (int64, error)
}

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(doc *model.VerificationDocument) error {
	return r.db.Create(doc).Error
}

func (r *documentRepository) Update(doc *model.VerificationDocument) error {
	return r.db.Save(doc).Error
}

func (r *documentRepository) Delete(id uint) error {
	return r.db.Delete(&model.VerificationDocument{}, id).Error
}

func (r *documentRepository) FindByID(id uint) (*model.VerificationDocument, error) {
	var doc model.VerificationDocument
	if err := r.db.First(&doc, id).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) FindByBusinessID(businessID uint) ([]model.VerificationDocument, error) {
	var docs []model.VerificationDocument
	if err := r.db.
		Where("business_id = ?", businessID).
		Order("created_at DESC").
		Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *documentRepository) FindLatestByType(businessID uint) (map[string]model.VerificationDocument, error) {
	docs, err := r.FindByBusinessID(businessID)
	if err != nil {
		return nil, err
	}

	// docs are newest first; keep the first row seen per type
	latest := make(map[string]model.VerificationDocument, len(docs))
	for _, doc := range docs {
		if _, ok := latest[doc.DocumentType]; !ok {
			latest[doc.DocumentType] = doc
		}
	}
	return latest, nil
}

func (r *documentRepository) FindPending(limit, offset int) ([]model.VerificationDocument, int64, error) {
	var docs []model.VerificationDocument
	var total int64

	query := r.db.Model(&model.VerificationDocument{}).
		Where("status = ?", model.DocumentStatusPending)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Preload("Business").
		Order("submitted_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&docs).Error; err != nil {
		return nil, 0, err
	}

	return docs, total, nil
}

func (r *documentRepository) ExpireVerifiedBefore(cutoff time.Time) (int64, error) {
	result := r.db.Model(&model.VerificationDocument{}).
		Where("status = ?", model.DocumentStatusVerified).
		Where("verified_at < ?", cutoff).
		Update("status", model.DocumentStatusExpired)
	return result.RowsAffected, result.Error
}
