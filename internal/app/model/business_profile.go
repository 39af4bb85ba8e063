package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// BusinessProfile is a business listed in the directory. Exactly one owner;
// edited section by section, never deleted in the normal flow.
type BusinessProfile struct {
	ID      uint  `gorm:"primarykey" json:"id"`
	OwnerID uint  `gorm:"not null;index" json:"owner_id"`
	Owner   User  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"owner,omitempty"`

	Name               string `gorm:"not null" json:"name"`
	Slug               string `gorm:"uniqueIndex" json:"slug"` // URL identifier (SEO)
	RegistrationNumber string `gorm:"type:varchar(30);uniqueIndex;not null" json:"registration_number"`
	Sector             string `gorm:"index;not null" json:"sector"`
	Subsector          string `gorm:"index;not null" json:"subsector"`

	// Descriptive sections, all optional and filled in over time
	Description   string         `gorm:"type:text" json:"description"`
	Mission       string         `gorm:"type:text" json:"mission"`
	TeamSummary   string         `gorm:"type:text" json:"team_summary"`
	Website       string         `json:"website"`
	LogoURL       string         `json:"logo_url"`
	MediaURLs     pq.StringArray `gorm:"type:text[];default:'{}';not null" json:"media_urls"`
	FoundedYear   *int           `json:"founded_year,omitempty"`
	EmployeeCount *int           `json:"employee_count,omitempty"`
	AnnualRevenue *int64         `json:"annual_revenue,omitempty"`
	FundingTarget *int64         `json:"funding_target,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Documents []VerificationDocument `gorm:"foreignKey:BusinessID" json:"documents,omitempty"`
}

func (BusinessProfile) TableName() string {
	return "business_profiles"
}

// generateSlug builds a URL slug from the sector and business name
func generateSlug(sector, name string) string {
	slug := fmt.Sprintf("%s-%s", sector, name)

	// Keep letters, digits and hyphens only
	reg := regexp.MustCompile(`[^\p{L}\p{N}-]+`)
	slug = reg.ReplaceAllString(slug, "-")

	// Collapse consecutive hyphens
	reg = regexp.MustCompile(`-+`)
	slug = reg.ReplaceAllString(slug, "-")

	slug = strings.Trim(slug, "-")
	slug = strings.ToLower(slug)

	return slug
}

// BeforeCreate assigns a unique slug when none is set
func (b *BusinessProfile) BeforeCreate(tx *gorm.DB) error {
	if b.Slug == "" {
		baseSlug := generateSlug(b.Sector, b.Name)
		slug := baseSlug

		counter := 1
		for {
			var count int64
			if err := tx.Model(&BusinessProfile{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
				return err
			}

			if count == 0 {
				break
			}

			counter++
			slug = fmt.Sprintf("%s-%d", baseSlug, counter)
		}

		b.Slug = slug
	}
	return nil
}
