package model

import (
	"time"

	"gorm.io/gorm"
)

// DocumentStatus is the review lifecycle of a single upload.
// pending -> verified | rejected -> expired. Rejection and expiry are terminal
// for the upload; a new upload of the same type creates a new row.
type DocumentStatus string

const (
	DocumentStatusPending  DocumentStatus = "pending"
	DocumentStatusVerified DocumentStatus = "verified"
	DocumentStatusRejected DocumentStatus = "rejected"
	DocumentStatusExpired  DocumentStatus = "expired"
)

// DocumentCategory mirrors the requirement catalog categories
type DocumentCategory string

const (
	DocumentCategoryCore           DocumentCategory = "core"
	DocumentCategorySectorSpecific DocumentCategory = "sector_specific"
	DocumentCategoryAdditional     DocumentCategory = "additional"
)

// VerificationDocument is one uploaded document for a business.
type VerificationDocument struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	BusinessID uint            `gorm:"not null;index:idx_business_doc_type,priority:1;index" json:"business_id"`
	Business   BusinessProfile `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	// DocumentType is an identifier from the requirement catalog
	DocumentType string           `gorm:"type:varchar(50);not null;index:idx_business_doc_type,priority:2" json:"document_type"`
	Category     DocumentCategory `gorm:"type:varchar(20);not null" json:"category"`

	// Upload metadata; the file itself lives in object storage
	FileURL  string `gorm:"type:text;not null" json:"file_url"`
	FileName string `gorm:"type:varchar(255)" json:"file_name"`
	FileSize int64  `json:"file_size"`

	Status          DocumentStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	SubmittedAt     time.Time      `json:"submitted_at"`
	ReviewedAt      *time.Time     `json:"reviewed_at,omitempty"`
	ReviewedBy      *uint          `json:"reviewed_by,omitempty"` // reviewing admin ID
	VerifiedAt      *time.Time     `json:"verified_at,omitempty"`
	RejectionReason string         `gorm:"type:text" json:"rejection_reason,omitempty"`
}

func (VerificationDocument) TableName() string {
	return "verification_documents"
}
