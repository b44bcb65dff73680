package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/noah-isme/leetnote-go-api/internal/models"
)

// AutoMigrate creates or updates the tables owned by the service.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Problem{},
		&models.UserProblemStatus{},
		&models.Submission{},
		&models.Evaluation{},
		&models.LeetcodeProfile{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	return nil
}
