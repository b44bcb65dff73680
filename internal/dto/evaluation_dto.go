package dto

import (
	"time"

	"github.com/noah-isme/leetnote-go-api/internal/models"
	"github.com/noah-isme/leetnote-go-api/pkg/ai"
)

// EvaluationRequest is the payload of POST /evaluations.
type EvaluationRequest struct {
	ProblemID    uint   `json:"problemId" validate:"required,gt=0"`
	SolutionText string `json:"solutionText" validate:"required,notblank"`
}

// EvaluationResponse describes a stored evaluation.
type EvaluationResponse struct {
	EvaluationID uint                 `json:"evaluationId"`
	SubmissionID uint                 `json:"submissionId"`
	ProblemID    uint                 `json:"problemId"`
	Version      int16                `json:"version"`
	Evaluation   ai.EvaluationPayload `json:"evaluation"`
	CreatedAt    time.Time            `json:"createdAt"`
}

// EvaluationDetailResponse joins an evaluation with its problem and submitted text.
type EvaluationDetailResponse struct {
	EvaluationID uint                 `json:"evaluationId"`
	ProblemID    uint                 `json:"problemId"`
	ProblemTitle string               `json:"problemTitle"`
	Difficulty   string               `json:"difficulty"`
	CreatedAt    time.Time            `json:"createdAt"`
	Evaluation   ai.EvaluationPayload `json:"evaluation"`
	SolutionText string               `json:"solutionText"`
}

// EvaluationListItem summarises the latest evaluation of one problem.
type EvaluationListItem struct {
	EvaluationID uint      `json:"evaluationId"`
	ProblemID    uint      `json:"problemId"`
	ProblemTitle string    `json:"problemTitle"`
	CreatedAt    time.Time `json:"createdAt"`
}

// EvaluationCreatedEvent is published after an evaluation has been stored.
type EvaluationCreatedEvent struct {
	EvaluationID uint      `json:"evaluationId"`
	SubmissionID uint      `json:"submissionId"`
	UserID       uint      `json:"userId"`
	ProblemID    uint      `json:"problemId"`
	Rating       int       `json:"rating"`
	Fallback     bool      `json:"fallback"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NewEvaluationResponse builds a response DTO from a model with its submission loaded.
func NewEvaluationResponse(evaluation models.Evaluation) EvaluationResponse {
	return EvaluationResponse{
		EvaluationID: evaluation.ID,
		SubmissionID: evaluation.SubmissionID,
		ProblemID:    evaluation.Submission.ProblemID,
		Version:      evaluation.Version,
		Evaluation:   evaluation.Payload.Data(),
		CreatedAt:    evaluation.CreatedAt,
	}
}
