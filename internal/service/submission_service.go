package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/noah-isme/leetnote-go-api/internal/dto"
	"github.com/noah-isme/leetnote-go-api/internal/repository"
)

// ErrSubmissionNotFound indicates the user has no submission for the problem.
var ErrSubmissionNotFound = errors.New("submission not found")

// SubmissionService exposes read access to stored submissions.
type SubmissionService interface {
	Last(ctx context.Context, userID, problemID uint) (dto.SubmissionResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
}

// NewSubmissionService constructs a submission service.
func NewSubmissionService(submissions repository.SubmissionRepository) SubmissionService {
	return &submissionService{submissions: submissions}
}

func (s *submissionService) Last(ctx context.Context, userID, problemID uint) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.LatestByUserAndProblem(ctx, userID, problemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}
	return dto.NewSubmissionResponse(submission), nil
}
