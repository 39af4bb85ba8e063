package model

import (
	"time"

	"gorm.io/gorm"
)

// ConnectionStatus is a strictly forward-moving lifecycle:
// lead -> connected -> contract -> closed, with rejected reachable only
// from lead. closed and rejected are terminal.
type ConnectionStatus string

const (
	ConnectionStatusLead      ConnectionStatus = "lead"
	ConnectionStatusConnected ConnectionStatus = "connected"
	ConnectionStatusContract  ConnectionStatus = "contract"
	ConnectionStatusClosed    ConnectionStatus = "closed"
	ConnectionStatusRejected  ConnectionStatus = "rejected"
)

// Connection is the durable relationship between one investor and one
// business. At most one per (investor, business) pair; never deleted.
type Connection struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	InvestorID uint `gorm:"not null;index:idx_investor_business,unique;index" json:"investor_id"`
	BusinessID uint `gorm:"not null;index:idx_investor_business,unique;index" json:"business_id"`

	Investor User            `gorm:"foreignKey:InvestorID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"investor,omitempty"`
	Business BusinessProfile `gorm:"foreignKey:BusinessID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"business,omitempty"`

	Status ConnectionStatus `gorm:"type:varchar(20);default:'lead';index" json:"status"`

	ConnectedAt *time.Time `json:"connected_at,omitempty"` // lead -> connected
	ContractAt  *time.Time `json:"contract_at,omitempty"`  // connected -> contract
	ClosedAt    *time.Time `json:"closed_at,omitempty"`    // contract -> closed
	RejectedAt  *time.Time `json:"rejected_at,omitempty"`  // lead -> rejected

	Milestones []Milestone `gorm:"foreignKey:ConnectionID" json:"milestones,omitempty"`
}

func (Connection) TableName() string {
	return "connections"
}

// IsTerminal reports whether no further transitions are possible
func (c *Connection) IsTerminal() bool {
	return c.Status == ConnectionStatusClosed || c.Status == ConnectionStatusRejected
}

// Involves reports whether the given user is the investor on this connection
// or the owner of its business. Business must be preloaded.
func (c *Connection) Involves(userID uint) bool {
	return c.InvestorID == userID || c.Business.OwnerID == userID
}
