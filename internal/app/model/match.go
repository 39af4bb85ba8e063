package model

import (
	"time"
)

// MatchStatus marks what happened to a suggestion
type MatchStatus string

const (
	MatchStatusSuggested MatchStatus = "suggested"
	MatchStatusContacted MatchStatus = "contacted" // investor initiated a connection
	MatchStatusDismissed MatchStatus = "dismissed"
)

// MatchSuggestion is a precomputed pairing of an investor and a business,
// scored by sector preference and verification completeness.
type MatchSuggestion struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	InvestorID uint `gorm:"not null;index:idx_match_investor_business,unique" json:"investor_id"`
	BusinessID uint `gorm:"not null;index:idx_match_investor_business,unique" json:"business_id"`

	Investor User            `gorm:"foreignKey:InvestorID" json:"-"`
	Business BusinessProfile `gorm:"foreignKey:BusinessID" json:"business,omitempty"`

	Score  int         `gorm:"not null" json:"score"` // 0-100
	Status MatchStatus `gorm:"type:varchar(20);default:'suggested';index" json:"status"`
}

func (MatchSuggestion) TableName() string {
	return "match_suggestions"
}
