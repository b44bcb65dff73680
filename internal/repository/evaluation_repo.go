package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/leetnote-go-api/internal/models"
)

// EvaluationRepository exposes persistence helpers for stored evaluations.
type EvaluationRepository interface {
	Create(ctx context.Context, evaluation *models.Evaluation) error
	GetByID(ctx context.Context, id uint) (models.Evaluation, error)
	LatestByUserAndProblem(ctx context.Context, userID, problemID uint) (models.Evaluation, error)
	ListByUserAndProblem(ctx context.Context, userID, problemID uint) ([]models.Evaluation, error)
	LatestPerProblem(ctx context.Context, userID uint) ([]models.Evaluation, error)
}

// NewEvaluationRepository constructs an evaluation repository.
func NewEvaluationRepository(db *gorm.DB) EvaluationRepository {
	return &evaluationRepository{db: db}
}

type evaluationRepository struct {
	db *gorm.DB
}

func (r *evaluationRepository) Create(ctx context.Context, evaluation *models.Evaluation) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(evaluation).Error
}

// GetByID loads the evaluation together with its submission.
func (r *evaluationRepository) GetByID(ctx context.Context, id uint) (models.Evaluation, error) {
	var evaluation models.Evaluation
	if err := r.db.WithContext(ctx).Preload("Submission").First(&evaluation, id).Error; err != nil {
		return models.Evaluation{}, err
	}
	return evaluation, nil
}

func (r *evaluationRepository) forPair(ctx context.Context, userID, problemID uint) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Evaluation{}).
		Select("evaluations.*").
		Joins("JOIN submissions ON submissions.id = evaluations.submission_id").
		Where("submissions.user_id = ? AND submissions.problem_id = ?", userID, problemID).
		Order("evaluations.created_at DESC").
		Order("evaluations.id DESC")
}

func (r *evaluationRepository) LatestByUserAndProblem(ctx context.Context, userID, problemID uint) (models.Evaluation, error) {
	var evaluation models.Evaluation
	if err := r.forPair(ctx, userID, problemID).Preload("Submission").First(&evaluation).Error; err != nil {
		return models.Evaluation{}, err
	}
	return evaluation, nil
}

func (r *evaluationRepository) ListByUserAndProblem(ctx context.Context, userID, problemID uint) ([]models.Evaluation, error) {
	var evaluations []models.Evaluation
	if err := r.forPair(ctx, userID, problemID).Preload("Submission").Find(&evaluations).Error; err != nil {
		return nil, err
	}
	return evaluations, nil
}

// LatestPerProblem returns, per problem the user evaluated, the evaluation with the highest id.
func (r *evaluationRepository) LatestPerProblem(ctx context.Context, userID uint) ([]models.Evaluation, error) {
	latest := r.db.WithContext(ctx).
		Table("evaluations AS e").
		Select("MAX(e.id)").
		Joins("JOIN submissions AS s ON s.id = e.submission_id").
		Where("s.user_id = ?", userID).
		Group("s.problem_id")

	var evaluations []models.Evaluation
	err := r.db.WithContext(ctx).
		Preload("Submission").
		Where("id IN (?)", latest).
		Order("created_at DESC").
		Order("id DESC").
		Find(&evaluations).Error
	if err != nil {
		return nil, err
	}
	return evaluations, nil
}
