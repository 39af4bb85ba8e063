package repository

import (
	"github.com/venturelink/venturelink-backend/internal/app/model"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(user *model.User) error
	Update(user *model.User) error
	FindByID(id uint) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	FindInvestorsBySector(sector string) ([]model.User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

func (r *userRepository) Update(user *model.User) error {
	return r.db.Save(user).Error
}

func (r *userRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindInvestorsBySector returns investors whose preferences include the sector
func (r *userRepository) FindInvestorsBySector(sector string) ([]model.User, error) {
	var users []model.User
	if err := r.db.
		Where("role = ?", model.RoleInvestor).
		Where("? = ANY(preferred_sectors)", sector).
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
