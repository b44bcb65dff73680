package service

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/leetnote-go-api/internal/cache"
	"github.com/noah-isme/leetnote-go-api/internal/dto"
	"github.com/noah-isme/leetnote-go-api/internal/models"
	"github.com/noah-isme/leetnote-go-api/internal/repository"
)

const (
	defaultProblemPageSize = 20
	maxProblemPageSize     = 100
)

// ErrProblemNotFound indicates the problem does not exist.
var ErrProblemNotFound = errors.New("problem not found")

// ProblemService serves the problem catalogue and per-user progress flags.
type ProblemService interface {
	List(ctx context.Context, userID uint, filter dto.ProblemListFilter) (dto.ProblemListResponse, error)
	Detail(ctx context.Context, userID, problemID uint) (dto.ProblemDetailResponse, error)
	UpdateStatus(ctx context.Context, userID, problemID uint, isSolved, isFavorite bool) (dto.ProblemListItem, error)
}

type problemService struct {
	problems repository.ProblemRepository
	statuses repository.ProblemStatusRepository
	cache    *cache.Cache
	logger   zerolog.Logger
}

// NewProblemService constructs the catalogue service. cache may be nil.
func NewProblemService(problems repository.ProblemRepository, statuses repository.ProblemStatusRepository, cache *cache.Cache, logger zerolog.Logger) ProblemService {
	return &problemService{
		problems: problems,
		statuses: statuses,
		cache:    cache,
		logger:   logger.With().Str("component", "problem_service").Logger(),
	}
}

func (s *problemService) List(ctx context.Context, userID uint, filter dto.ProblemListFilter) (dto.ProblemListResponse, error) {
	page := filter.Page
	if page < 0 {
		page = 0
	}
	size := filter.Size
	if size <= 0 {
		size = defaultProblemPageSize
	}
	if size > maxProblemPageSize {
		size = maxProblemPageSize
	}

	rows, total, err := s.problems.List(ctx, repository.ProblemQuery{
		UserID:       userID,
		Keywords:     normalizeKeywords(filter.Keyword),
		Difficulties: filter.Difficulties,
		Solved:       filter.IsSolved,
		Favorite:     filter.IsFavorite,
		Offset:       page * size,
		Limit:        size,
	})
	if err != nil {
		return dto.ProblemListResponse{}, err
	}

	items := make([]dto.ProblemListItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, dto.ProblemListItem{
			ProblemID:  row.ID,
			Title:      row.Title,
			Difficulty: row.Difficulty,
			IsFavorite: row.IsFavorited,
			IsSolved:   row.IsSolved,
		})
	}

	return dto.ProblemListResponse{
		Items: items,
		Pagination: dto.PaginationMeta{
			Page:       page,
			Size:       size,
			TotalItems: total,
			TotalPages: int(math.Ceil(float64(total) / float64(size))),
		},
	}, nil
}

// Detail returns the problem with the caller's flags. The problem itself is cached, the flags are not.
func (s *problemService) Detail(ctx context.Context, userID, problemID uint) (dto.ProblemDetailResponse, error) {
	key := strconv.FormatUint(uint64(problemID), 10)

	var detail dto.ProblemDetailResponse
	if !s.cache.Get(ctx, cache.ProblemDetails, key, &detail) {
		problem, err := s.problems.GetByID(ctx, problemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.ProblemDetailResponse{}, ErrProblemNotFound
			}
			return dto.ProblemDetailResponse{}, err
		}
		detail = newProblemDetail(problem)
		s.cache.Set(ctx, cache.ProblemDetails, key, detail)
	}

	status, _, err := s.statuses.Get(ctx, userID, problemID)
	if err != nil {
		return dto.ProblemDetailResponse{}, err
	}
	detail.IsSolved = status.IsSolved
	detail.IsFavorite = status.IsFavorited

	return detail, nil
}

func (s *problemService) UpdateStatus(ctx context.Context, userID, problemID uint, isSolved, isFavorite bool) (dto.ProblemListItem, error) {
	problem, err := s.problems.GetByID(ctx, problemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProblemListItem{}, ErrProblemNotFound
		}
		return dto.ProblemListItem{}, err
	}

	status := models.UserProblemStatus{
		UserID:      userID,
		ProblemID:   problemID,
		IsSolved:    isSolved,
		IsFavorited: isFavorite,
	}
	if err := s.statuses.Upsert(ctx, &status); err != nil {
		return dto.ProblemListItem{}, err
	}

	s.logger.Debug().
		Uint("user_id", userID).
		Uint("problem_id", problemID).
		Bool("solved", isSolved).
		Bool("favorite", isFavorite).
		Msg("problem status updated")

	return dto.ProblemListItem{
		ProblemID:  problem.ID,
		Title:      problem.Title,
		Difficulty: problem.Difficulty,
		IsFavorite: status.IsFavorited,
		IsSolved:   status.IsSolved,
	}, nil
}

func newProblemDetail(problem models.Problem) dto.ProblemDetailResponse {
	detail := dto.ProblemDetailResponse{
		ProblemID:   problem.ID,
		Title:       problem.Title,
		Difficulty:  problem.Difficulty,
		Description: problem.Description,
	}

	if problem.Solution != nil {
		detail.Solution = &dto.ProblemSolution{
			Approach:        stringField(problem.Solution, "approach"),
			Code:            stringField(problem.Solution, "code"),
			TimeComplexity:  stringField(problem.Solution, "time_complexity"),
			SpaceComplexity: stringField(problem.Solution, "space_complexity"),
		}
	}

	return detail
}

func stringField(values map[string]interface{}, key string) string {
	if value, ok := values[key].(string); ok {
		return value
	}
	return ""
}

// normalizeKeywords splits a search phrase into lower-case alphanumeric words.
func normalizeKeywords(keyword string) []string {
	words := strings.Fields(strings.ToLower(keyword))
	cleaned := make([]string, 0, len(words))
	for _, word := range words {
		word = strings.Map(func(r rune) rune {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
				return r
			}
			return -1
		}, word)
		if word != "" {
			cleaned = append(cleaned, word)
		}
	}
	return cleaned
}
