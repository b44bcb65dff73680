package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/noah-isme/leetnote-go-api/internal/models"
)

// LeetcodeProfileRepository persists the LeetCode statistics linked to a user.
type LeetcodeProfileRepository interface {
	GetByUserID(ctx context.Context, userID uint) (models.LeetcodeProfile, bool, error)
	UsernameTaken(ctx context.Context, username string, exceptUserID uint) (bool, error)
	Save(ctx context.Context, profile *models.LeetcodeProfile) error
}

// NewLeetcodeProfileRepository constructs a LeetCode profile repository.
func NewLeetcodeProfileRepository(db *gorm.DB) LeetcodeProfileRepository {
	return &leetcodeProfileRepository{db: db}
}

type leetcodeProfileRepository struct {
	db *gorm.DB
}

func (r *leetcodeProfileRepository) GetByUserID(ctx context.Context, userID uint) (models.LeetcodeProfile, bool, error) {
	var profile models.LeetcodeProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.LeetcodeProfile{}, false, nil
	}
	if err != nil {
		return models.LeetcodeProfile{}, false, err
	}
	return profile, true, nil
}

func (r *leetcodeProfileRepository) UsernameTaken(ctx context.Context, username string, exceptUserID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.LeetcodeProfile{}).
		Where("LOWER(username) = LOWER(?) AND user_id <> ?", username, exceptUserID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save inserts a new profile or updates the existing one by primary key.
func (r *leetcodeProfileRepository) Save(ctx context.Context, profile *models.LeetcodeProfile) error {
	return r.db.WithContext(ctx).Omit("User").Save(profile).Error
}
