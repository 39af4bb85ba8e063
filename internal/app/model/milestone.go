package model

import (
	"time"

	"gorm.io/gorm"
)

// MilestoneStatus lifecycle: proposed -> agreed -> completed, with rejected
// (from proposed) and cancelled (from proposed or agreed) as terminals.
type MilestoneStatus string

const (
	MilestoneStatusProposed  MilestoneStatus = "proposed"
	MilestoneStatusAgreed    MilestoneStatus = "agreed"
	MilestoneStatusCompleted MilestoneStatus = "completed"
	MilestoneStatusRejected  MilestoneStatus = "rejected"
	MilestoneStatusCancelled MilestoneStatus = "cancelled"
)

// ExtensionStatus lifecycle: pending -> approved | rejected
type ExtensionStatus string

const (
	ExtensionStatusPending  ExtensionStatus = "pending"
	ExtensionStatusApproved ExtensionStatus = "approved"
	ExtensionStatusRejected ExtensionStatus = "rejected"
)

// Milestone tracks an agreed piece of work or funding step on a connection.
type Milestone struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	ConnectionID uint       `gorm:"not null;index" json:"connection_id"`
	Connection   Connection `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Amount      *int64 `json:"amount,omitempty"` // optional funding amount

	Status   MilestoneStatus `gorm:"type:varchar(20);default:'proposed';index" json:"status"`
	Deadline *time.Time      `json:"deadline,omitempty"`

	ProposedBy  uint       `gorm:"not null" json:"proposed_by"` // proposing party user ID
	AgreedBy    *uint      `json:"agreed_by,omitempty"`
	AgreedAt    *time.Time `json:"agreed_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Extensions []MilestoneExtension `gorm:"foreignKey:MilestoneID" json:"extensions,omitempty"`
}

func (Milestone) TableName() string {
	return "milestones"
}

// IsTerminal reports whether the milestone can no longer change state
func (m *Milestone) IsTerminal() bool {
	return m.Status == MilestoneStatusCompleted ||
		m.Status == MilestoneStatusRejected ||
		m.Status == MilestoneStatusCancelled
}

// MilestoneExtension is a deadline-extension request on an agreed milestone.
type MilestoneExtension struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	MilestoneID uint      `gorm:"not null;index" json:"milestone_id"`
	Milestone   Milestone `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	RequestedBy uint      `gorm:"not null" json:"requested_by"`
	NewDeadline time.Time `gorm:"not null" json:"new_deadline"`
	Reason      string    `gorm:"type:text" json:"reason"`

	Status    ExtensionStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	DecidedBy *uint           `json:"decided_by,omitempty"`
	DecidedAt *time.Time      `json:"decided_at,omitempty"`
}

func (MilestoneExtension) TableName() string {
	return "milestone_extensions"
}
