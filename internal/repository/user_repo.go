package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/leetnote-go-api/internal/models"
)

// UserRepository persists local user accounts.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (models.User, error)
	FindOrCreate(ctx context.Context, externalUID, email string) (models.User, error)
	UsernameTaken(ctx context.Context, username string, exceptID uint) (bool, error)
	UpdateUsername(ctx context.Context, id uint, username string) error
	UpdateProfileURL(ctx context.Context, id uint, url *string) error
}

// NewUserRepository constructs a user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

type userRepository struct {
	db *gorm.DB
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

// FindOrCreate returns the user linked to externalUID, creating it on first sight.
// Concurrent first requests for the same subject converge on one row.
func (r *userRepository) FindOrCreate(ctx context.Context, externalUID, email string) (models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("external_uid = ?", externalUID).First(&user).Error
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, err
	}

	user = models.User{ExternalUID: externalUID, Email: email}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&user).Error; err != nil {
		return models.User{}, err
	}

	var stored models.User
	if err := r.db.WithContext(ctx).Where("external_uid = ?", externalUID).First(&stored).Error; err != nil {
		return models.User{}, err
	}
	return stored, nil
}

func (r *userRepository) UsernameTaken(ctx context.Context, username string, exceptID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("username = ? AND id <> ?", username, exceptID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userRepository) UpdateUsername(ctx context.Context, id uint, username string) error {
	return r.updateColumn(ctx, id, "username", username)
}

// UpdateProfileURL sets the picture url; nil clears it.
func (r *userRepository) UpdateProfileURL(ctx context.Context, id uint, url *string) error {
	return r.updateColumn(ctx, id, "profile_url", url)
}

func (r *userRepository) updateColumn(ctx context.Context, id uint, column string, value interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update(column, value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
