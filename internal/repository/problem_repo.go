package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/noah-isme/leetnote-go-api/internal/models"
)

// ProblemQuery filters the problem catalogue for a single user.
type ProblemQuery struct {
	UserID       uint
	Keywords     []string
	Difficulties []string
	Solved       *bool
	Favorite     *bool
	Offset       int
	Limit        int
}

// ProblemRow is a catalogue entry joined with the user's status.
type ProblemRow struct {
	ID          uint
	Title       string
	Difficulty  string
	IsSolved    bool
	IsFavorited bool
}

// ProblemRepository exposes read access to the problem catalogue.
type ProblemRepository interface {
	List(ctx context.Context, query ProblemQuery) ([]ProblemRow, int64, error)
	GetByID(ctx context.Context, id uint) (models.Problem, error)
	FindDescription(ctx context.Context, id uint) (string, bool, error)
	FindTitle(ctx context.Context, id uint) (string, bool, error)
	FindDifficulty(ctx context.Context, id uint) (string, bool, error)
	FindTitles(ctx context.Context, ids []uint) (map[uint]string, error)
}

// NewProblemRepository constructs a problem repository.
func NewProblemRepository(db *gorm.DB) ProblemRepository {
	return &problemRepository{db: db}
}

type problemRepository struct {
	db *gorm.DB
}

func (r *problemRepository) filtered(ctx context.Context, query ProblemQuery) *gorm.DB {
	tx := r.db.WithContext(ctx).
		Table("problems AS p").
		Joins("LEFT JOIN user_problem_statuses AS ups ON ups.problem_id = p.id AND ups.user_id = ?", query.UserID)

	for _, keyword := range query.Keywords {
		if keyword == "" {
			continue
		}
		tx = tx.Where("LOWER(p.title) LIKE ?", "%"+keyword+"%")
	}
	if len(query.Difficulties) > 0 {
		tx = tx.Where("p.difficulty IN ?", query.Difficulties)
	}
	if query.Solved != nil {
		tx = tx.Where("COALESCE(ups.is_solved, ?) = ?", false, *query.Solved)
	}
	if query.Favorite != nil {
		tx = tx.Where("COALESCE(ups.is_favorited, ?) = ?", false, *query.Favorite)
	}

	return tx
}

func (r *problemRepository) List(ctx context.Context, query ProblemQuery) ([]ProblemRow, int64, error) {
	var total int64
	if err := r.filtered(ctx, query).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []ProblemRow
	tx := r.filtered(ctx, query).
		Select("p.id AS id, p.title AS title, p.difficulty AS difficulty, " +
			"COALESCE(ups.is_solved, false) AS is_solved, COALESCE(ups.is_favorited, false) AS is_favorited").
		Order("p.id ASC")
	if query.Limit > 0 {
		tx = tx.Limit(query.Limit)
	}
	if query.Offset > 0 {
		tx = tx.Offset(query.Offset)
	}
	if err := tx.Scan(&rows).Error; err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}

func (r *problemRepository) GetByID(ctx context.Context, id uint) (models.Problem, error) {
	var problem models.Problem
	if err := r.db.WithContext(ctx).First(&problem, id).Error; err != nil {
		return models.Problem{}, err
	}
	return problem, nil
}

func (r *problemRepository) FindDescription(ctx context.Context, id uint) (string, bool, error) {
	return r.findColumn(ctx, id, "description")
}

func (r *problemRepository) FindTitle(ctx context.Context, id uint) (string, bool, error) {
	return r.findColumn(ctx, id, "title")
}

func (r *problemRepository) FindDifficulty(ctx context.Context, id uint) (string, bool, error) {
	return r.findColumn(ctx, id, "difficulty")
}

func (r *problemRepository) findColumn(ctx context.Context, id uint, column string) (string, bool, error) {
	var problem models.Problem
	err := r.db.WithContext(ctx).Select("id", column).First(&problem, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	switch column {
	case "description":
		return problem.Description, true, nil
	case "title":
		return problem.Title, true, nil
	default:
		return problem.Difficulty, true, nil
	}
}

func (r *problemRepository) FindTitles(ctx context.Context, ids []uint) (map[uint]string, error) {
	titles := make(map[uint]string, len(ids))
	if len(ids) == 0 {
		return titles, nil
	}

	var problems []models.Problem
	if err := r.db.WithContext(ctx).Select("id", "title").Where("id IN ?", ids).Find(&problems).Error; err != nil {
		return nil, err
	}
	for _, problem := range problems {
		titles[problem.ID] = problem.Title
	}
	return titles, nil
}
