package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/leetnote-go-api/internal/models"
)

// ProblemStatusRepository persists per-user solved and favourite flags.
type ProblemStatusRepository interface {
	Get(ctx context.Context, userID, problemID uint) (models.UserProblemStatus, bool, error)
	Upsert(ctx context.Context, status *models.UserProblemStatus) error
}

// NewProblemStatusRepository constructs a status repository.
func NewProblemStatusRepository(db *gorm.DB) ProblemStatusRepository {
	return &problemStatusRepository{db: db}
}

type problemStatusRepository struct {
	db *gorm.DB
}

func (r *problemStatusRepository) Get(ctx context.Context, userID, problemID uint) (models.UserProblemStatus, bool, error) {
	var status models.UserProblemStatus
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND problem_id = ?", userID, problemID).
		First(&status).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.UserProblemStatus{UserID: userID, ProblemID: problemID}, false, nil
	}
	if err != nil {
		return models.UserProblemStatus{}, false, err
	}
	return status, true, nil
}

func (r *problemStatusRepository) Upsert(ctx context.Context, status *models.UserProblemStatus) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "problem_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_solved", "is_favorited", "updated_at"}),
	}).Create(status).Error
}
