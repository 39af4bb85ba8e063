package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

type UserRole string // account role

const (
	RoleInvestor UserRole = "investor" // investor account
	RoleBusiness UserRole = "business" // business owner account
	RoleAdmin    UserRole = "admin"    // platform administrator
)

type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Name         string         `gorm:"not null" json:"name"`
	Role         UserRole       `gorm:"type:varchar(20);default:'investor'" json:"role"`
	ProfileImage string         `json:"profile_image"`
	Bio          string         `gorm:"type:text" json:"bio"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Investor preferences (drive match suggestions)
	PreferredSectors pq.StringArray `gorm:"type:text[];default:'{}';not null" json:"preferred_sectors"`
	TicketMin        *int64         `json:"ticket_min,omitempty"` // minimum investment size
	TicketMax        *int64         `json:"ticket_max,omitempty"` // maximum investment size

	Businesses []BusinessProfile `gorm:"foreignKey:OwnerID" json:"businesses,omitempty"` // owned business profiles
}

func (User) TableName() string {
	return "users"
}
