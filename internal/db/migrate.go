package db

import (
	"github.com/venturelink/venturelink-backend/internal/app/model"
	"github.com/venturelink/venturelink-backend/pkg/logger"
	"github.com/venturelink/venturelink-backend/pkg/util"
)

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := []interface{}{
		&model.User{},
		&model.BusinessProfile{},
		&model.VerificationDocument{},
		&model.Connection{},
		&model.Conversation{},
		&model.Message{},
		&model.Milestone{},
		&model.MilestoneExtension{},
		&model.MatchSuggestion{},
		&model.Notification{},
	}

	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// Seed creates the default admin account if none exists
func Seed() error {
	var count int64
	if err := DB.Model(&model.User{}).Where("role = ?", model.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := util.HashPassword("changeme")
	if err != nil {
		return err
	}

	admin := &model.User{
		Email:        "admin@venturelink.local",
		PasswordHash: hash,
		Name:         "Platform Admin",
		Role:         model.RoleAdmin,
	}
	if err := DB.Create(admin).Error; err != nil {
		return err
	}

	logger.Info("Seeded default admin account", map[string]interface{}{
		"email": admin.Email,
	})
	return nil
}
