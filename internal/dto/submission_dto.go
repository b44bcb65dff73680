package dto

import (
	"time"

	"github.com/noah-isme/leetnote-go-api/internal/models"
)

// SubmissionResponse represents a stored pseudocode submission.
type SubmissionResponse struct {
	SubmissionID uint      `json:"submissionId"`
	ProblemID    uint      `json:"problemId"`
	SolutionText string    `json:"solutionText"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NewSubmissionResponse builds a response DTO from a model.
func NewSubmissionResponse(submission models.Submission) SubmissionResponse {
	return SubmissionResponse{
		SubmissionID: submission.ID,
		ProblemID:    submission.ProblemID,
		SolutionText: submission.SolutionText,
		CreatedAt:    submission.CreatedAt,
	}
}
