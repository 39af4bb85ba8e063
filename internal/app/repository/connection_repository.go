package repository

import (
	"github.com/venturelink/venturelink-backend/internal/app/model"
	"gorm.io/gorm"
)

type ConnectionRepository interface {
	Create(conn *model.Connection) error
	Update(conn *model.Connection) error
	FindByID(id uint) (*model.Connection, error)
	FindByIDWithParties(id uint) (*model.Connection, error)
	FindByPair(investorID, businessID uint) (*model.Connection, error)
	FindByInvestorID(investorID uint) ([]model.Connection, error)
	FindByBusinessIDs(businessIDs []uint) ([]model.Connection, error)
}

type connectionRepository struct {
	db *gorm.DB
}

func NewConnectionRepository(db *gorm.DB) ConnectionRepository {
	return &connectionRepository{db: db}
}

func (r *connectionRepository) Create(conn *model.Connection) error {
	return r.db.Create(conn).Error
}

func (r *connectionRepository) Update(conn *model.Connection) error {
	return r.db.Save(conn).Error
}

func (r *connectionRepository) FindByID(id uint) (*model.Connection, error) {
	var conn model.Connection
	if err := r.db.First(&conn, id).Error; err != nil {
		return nil, err
	}
	return &conn, nil
}

// FindByIDWithParties loads the connection with its investor and business
// (including the business owner, needed for authorization checks).
func (r *connectionRepository) FindByIDWithParties(id uint) (*model.Connection, error) {
	var conn model.Connection
	if err := r.db.
		Preload("Investor").
		Preload("Business").
		Preload("Business.Owner").
		First(&conn, id).Error; err != nil {
		return nil, err
	}
	return &conn, nil
}

// FindByPair returns the connection for an (investor, business) pair, or
// nil when none exists.
func (r *connectionRepository) FindByPair(investorID, businessID uint) (*model.Connection, error) {
	var conn model.Connection
	err := r.db.
		Where("investor_id = ? AND business_id = ?", investorID, businessID).
		First(&conn).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &conn, nil
}

func (r *connectionRepository) FindByInvestorID(investorID uint) ([]model.Connection, error) {
	var conns []model.Connection
	if err := r.db.
		Where("investor_id = ?", investorID).
		Preload("Business").
		Order("updated_at DESC").
		Find(&conns).Error; err != nil {
		return nil, err
	}
	return conns, nil
}

// FindByBusinessIDs returns connections on any of the given businesses in a
// single indexed query.
func (r *connectionRepository) FindByBusinessIDs(businessIDs []uint) ([]model.Connection, error) {
	if len(businessIDs) == 0 {
		return nil, nil
	}

	var conns []model.Connection
	if err := r.db.
		Where("business_id IN ?", businessIDs).
		Preload("Investor").
		Preload("Business").
		Order("updated_at DESC").
		Find(&conns).Error; err != nil {
		return nil, err
	}
	return conns, nil
}
