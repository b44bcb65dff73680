package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/leetnote-go-api/internal/models"
)

// SubmissionRepository exposes persistence helpers for pseudocode submissions.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	ListByUserAndProblem(ctx context.Context, userID, problemID uint) ([]models.Submission, error)
	LatestByUserAndProblem(ctx context.Context, userID, problemID uint) (models.Submission, error)
	DeleteWithEvaluations(ctx context.Context, ids []uint) error
}

// NewSubmissionRepository constructs a submission repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

type submissionRepository struct {
	db *gorm.DB
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Omit("Evaluations").Create(submission).Error
}

// ListByUserAndProblem returns the pair's submissions, newest first.
func (r *submissionRepository) ListByUserAndProblem(ctx context.Context, userID, problemID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND problem_id = ?", userID, problemID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}
	return submissions, nil
}

func (r *submissionRepository) LatestByUserAndProblem(ctx context.Context, userID, problemID uint) (models.Submission, error) {
	var submission models.Submission
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND problem_id = ?", userID, problemID).
		Order("created_at DESC").
		Order("id DESC").
		First(&submission).Error
	if err != nil {
		return models.Submission{}, err
	}
	return submission, nil
}

// DeleteWithEvaluations removes the evaluations of the given submissions, then the submissions.
// Callers needing atomicity run it inside a transaction.
func (r *submissionRepository) DeleteWithEvaluations(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}

	db := r.db.WithContext(ctx)
	if err := db.Where("submission_id IN ?", ids).Delete(&models.Evaluation{}).Error; err != nil {
		return err
	}
	return db.Where("id IN ?", ids).Delete(&models.Submission{}).Error
}
