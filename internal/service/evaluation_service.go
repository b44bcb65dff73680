package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/leetnote-go-api/internal/dto"
	"github.com/noah-isme/leetnote-go-api/internal/models"
	"github.com/noah-isme/leetnote-go-api/internal/observability"
	"github.com/noah-isme/leetnote-go-api/internal/repository"
	"github.com/noah-isme/leetnote-go-api/pkg/ai"
)

const (
	// RetainedSubmissions is how many submissions are kept per user and problem.
	RetainedSubmissions = 3

	missingProblemDescription = "No problem found."
	unknownProblemTitle       = "Unknown Problem"
)

// ErrEvaluationNotFound indicates the evaluation does not exist or belongs to another user.
var ErrEvaluationNotFound = errors.New("evaluation not found")

// ServiceUnavailableError reports that the model endpoint could not produce an answer.
type ServiceUnavailableError struct {
	Message string
	Err     error
}

func (e *ServiceUnavailableError) Error() string { return e.Message }

func (e *ServiceUnavailableError) Unwrap() error { return e.Err }

// EvaluationService runs the submission pipeline and serves stored evaluations.
type EvaluationService interface {
	Submit(ctx context.Context, userID uint, payload dto.EvaluationRequest) (ai.EvaluationPayload, error)
	LastEvaluation(ctx context.Context, userID, problemID uint) (dto.EvaluationResponse, error)
	EvaluationDetail(ctx context.Context, userID, evaluationID uint) (dto.EvaluationDetailResponse, error)
	LastEvaluationDetail(ctx context.Context, userID, problemID uint) (dto.EvaluationDetailResponse, error)
	AllLatestEvaluations(ctx context.Context, userID uint) ([]dto.EvaluationListItem, error)
	History(ctx context.Context, userID, problemID uint) ([]dto.EvaluationResponse, error)
}

type evaluationService struct {
	problems    repository.ProblemRepository
	submissions repository.SubmissionRepository
	evaluations repository.EvaluationRepository
	transactor  repository.Transactor
	completer   ai.Completer
	publisher   EvaluationPublisher
	validator   *validator.Validate
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewEvaluationService constructs the evaluation pipeline. publisher may be nil.
func NewEvaluationService(
	problems repository.ProblemRepository,
	submissions repository.SubmissionRepository,
	evaluations repository.EvaluationRepository,
	transactor repository.Transactor,
	completer ai.Completer,
	publisher EvaluationPublisher,
	validate *validator.Validate,
	logger zerolog.Logger,
) EvaluationService {
	return &evaluationService{
		problems:    problems,
		submissions: submissions,
		evaluations: evaluations,
		transactor:  transactor,
		completer:   completer,
		publisher:   publisher,
		validator:   validate,
		logger:      logger.With().Str("component", "evaluation_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/leetnote-go-api/internal/service/evaluation"),
		now:         time.Now,
	}
}

// Submit stores the submission, asks the model for a verdict and keeps the newest three submissions.
// A model failure leaves the submission in place and returns *ServiceUnavailableError.
func (s *evaluationService) Submit(ctx context.Context, userID uint, payload dto.EvaluationRequest) (ai.EvaluationPayload, error) {
	ctx, span := s.tracer.Start(ctx, "evaluation.submit", trace.WithAttributes(
		attribute.Int("evaluation.user_id", int(userID)),
		attribute.Int("evaluation.problem_id", int(payload.ProblemID)),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.SetStatus(codes.Error, "validation failed")
		return ai.EvaluationPayload{}, err
	}

	submission := models.Submission{
		UserID:       userID,
		ProblemID:    payload.ProblemID,
		SolutionText: payload.SolutionText,
		CreatedAt:    s.now(),
	}
	if err := s.submissions.Create(ctx, &submission); err != nil {
		return ai.EvaluationPayload{}, s.fail(span, fmt.Errorf("save submission: %w", err))
	}

	description, found, err := s.problems.FindDescription(ctx, payload.ProblemID)
	if err != nil {
		return ai.EvaluationPayload{}, s.fail(span, fmt.Errorf("load problem description: %w", err))
	}
	if !found {
		description = missingProblemDescription
	}

	raw, err := s.completer.Complete(ctx, ai.BuildPrompt(description, payload.SolutionText))
	if err != nil {
		if unavailable := asServiceUnavailable(err); unavailable != nil {
			observability.Evaluations().WithLabelValues("unavailable").Inc()
			span.RecordError(err)
			span.SetStatus(codes.Error, unavailable.Message)
			s.logger.Error().Err(err).
				Uint("submission_id", submission.ID).
				Uint("problem_id", payload.ProblemID).
				Msg("evaluation service unavailable")
			return ai.EvaluationPayload{}, unavailable
		}
		return ai.EvaluationPayload{}, s.fail(span, fmt.Errorf("complete evaluation: %w", err))
	}

	parsed := ai.ParseEvaluation(raw)
	if parsed.Fallback {
		s.logger.Warn().Err(parsed.Err).
			Uint("submission_id", submission.ID).
			Msg("model output could not be parsed, storing fallback evaluation")
	}
	span.SetAttributes(
		attribute.Bool("evaluation.fallback", parsed.Fallback),
		attribute.Int("evaluation.rating", parsed.Payload.Rating),
	)

	evaluation := models.Evaluation{
		SubmissionID: submission.ID,
		Version:      models.EvaluationVersion,
		Payload:      datatypes.NewJSONType(parsed.Payload),
		CreatedAt:    s.now(),
	}

	var trimmed int
	err = s.transactor.WithinTransaction(ctx, func(tx repository.Tx) error {
		if err := tx.Evaluations.Create(ctx, &evaluation); err != nil {
			return fmt.Errorf("save evaluation: %w", err)
		}

		history, err := tx.Submissions.ListByUserAndProblem(ctx, userID, payload.ProblemID)
		if err != nil {
			return fmt.Errorf("list submissions: %w", err)
		}
		if len(history) <= RetainedSubmissions {
			return nil
		}

		stale := make([]uint, 0, len(history)-RetainedSubmissions)
		for _, old := range history[RetainedSubmissions:] {
			stale = append(stale, old.ID)
		}
		if err := tx.Submissions.DeleteWithEvaluations(ctx, stale); err != nil {
			return fmt.Errorf("trim submissions: %w", err)
		}
		trimmed = len(stale)
		return nil
	})
	if err != nil {
		return ai.EvaluationPayload{}, s.fail(span, err)
	}

	if trimmed > 0 {
		observability.RetentionDeleted().Add(float64(trimmed))
		s.logger.Debug().
			Uint("user_id", userID).
			Uint("problem_id", payload.ProblemID).
			Int("removed", trimmed).
			Msg("trimmed submission history")
	}

	outcome := "evaluated"
	if parsed.Fallback {
		outcome = "fallback"
	}
	observability.Evaluations().WithLabelValues(outcome).Inc()

	s.publish(ctx, dto.EvaluationCreatedEvent{
		EvaluationID: evaluation.ID,
		SubmissionID: submission.ID,
		UserID:       userID,
		ProblemID:    payload.ProblemID,
		Rating:       parsed.Payload.Rating,
		Fallback:     parsed.Fallback,
		CreatedAt:    evaluation.CreatedAt,
	})

	span.SetStatus(codes.Ok, outcome)
	return parsed.Payload, nil
}

func (s *evaluationService) LastEvaluation(ctx context.Context, userID, problemID uint) (dto.EvaluationResponse, error) {
	evaluation, err := s.evaluations.LatestByUserAndProblem(ctx, userID, problemID)
	if err != nil {
		return dto.EvaluationResponse{}, translateEvaluationError(err)
	}
	return dto.NewEvaluationResponse(evaluation), nil
}

func (s *evaluationService) EvaluationDetail(ctx context.Context, userID, evaluationID uint) (dto.EvaluationDetailResponse, error) {
	evaluation, err := s.evaluations.GetByID(ctx, evaluationID)
	if err != nil {
		return dto.EvaluationDetailResponse{}, translateEvaluationError(err)
	}
	if evaluation.Submission.UserID != userID {
		return dto.EvaluationDetailResponse{}, ErrEvaluationNotFound
	}
	return s.buildDetail(ctx, evaluation)
}

func (s *evaluationService) LastEvaluationDetail(ctx context.Context, userID, problemID uint) (dto.EvaluationDetailResponse, error) {
	latest, err := s.LastEvaluation(ctx, userID, problemID)
	if err != nil {
		return dto.EvaluationDetailResponse{}, err
	}
	return s.EvaluationDetail(ctx, userID, latest.EvaluationID)
}

func (s *evaluationService) AllLatestEvaluations(ctx context.Context, userID uint) ([]dto.EvaluationListItem, error) {
	evaluations, err := s.evaluations.LatestPerProblem(ctx, userID)
	if err != nil {
		return nil, err
	}

	problemIDs := make([]uint, 0, len(evaluations))
	for _, evaluation := range evaluations {
		problemIDs = append(problemIDs, evaluation.Submission.ProblemID)
	}
	titles, err := s.problems.FindTitles(ctx, problemIDs)
	if err != nil {
		return nil, err
	}

	items := make([]dto.EvaluationListItem, 0, len(evaluations))
	for _, evaluation := range evaluations {
		problemID := evaluation.Submission.ProblemID
		title, ok := titles[problemID]
		if !ok {
			title = unknownProblemTitle
		}
		items = append(items, dto.EvaluationListItem{
			EvaluationID: evaluation.ID,
			ProblemID:    problemID,
			ProblemTitle: title,
			CreatedAt:    evaluation.CreatedAt,
		})
	}
	return items, nil
}

func (s *evaluationService) History(ctx context.Context, userID, problemID uint) ([]dto.EvaluationResponse, error) {
	evaluations, err := s.evaluations.ListByUserAndProblem(ctx, userID, problemID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.EvaluationResponse, 0, len(evaluations))
	for _, evaluation := range evaluations {
		responses = append(responses, dto.NewEvaluationResponse(evaluation))
	}
	return responses, nil
}

func (s *evaluationService) buildDetail(ctx context.Context, evaluation models.Evaluation) (dto.EvaluationDetailResponse, error) {
	problemID := evaluation.Submission.ProblemID

	title, found, err := s.problems.FindTitle(ctx, problemID)
	if err != nil {
		return dto.EvaluationDetailResponse{}, err
	}
	if !found {
		title = unknownProblemTitle
	}

	difficulty, _, err := s.problems.FindDifficulty(ctx, problemID)
	if err != nil {
		return dto.EvaluationDetailResponse{}, err
	}

	return dto.EvaluationDetailResponse{
		EvaluationID: evaluation.ID,
		ProblemID:    problemID,
		ProblemTitle: title,
		Difficulty:   difficulty,
		CreatedAt:    evaluation.CreatedAt,
		Evaluation:   evaluation.Payload.Data(),
		SolutionText: evaluation.Submission.SolutionText,
	}, nil
}

func (s *evaluationService) publish(ctx context.Context, event dto.EvaluationCreatedEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEvaluationCreated(ctx, event); err != nil {
		s.logger.Warn().Err(err).Uint("evaluation_id", event.EvaluationID).Msg("failed to publish evaluation event")
	}
}

func (s *evaluationService) fail(span trace.Span, err error) error {
	observability.Evaluations().WithLabelValues("failed").Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.logger.Error().Err(err).Msg("evaluation pipeline failed")
	return err
}

// asServiceUnavailable maps model client failures onto the error surfaced to callers.
func asServiceUnavailable(err error) *ServiceUnavailableError {
	var connErr *ai.ConnectionError
	if errors.As(err, &connErr) {
		return &ServiceUnavailableError{Message: "failed to connect to the evaluation service", Err: err}
	}

	var upstreamErr *ai.UpstreamError
	if errors.As(err, &upstreamErr) {
		return &ServiceUnavailableError{Message: "evaluation service error: " + upstreamErr.Status(), Err: err}
	}

	var protocolErr *ai.ProtocolError
	if errors.As(err, &protocolErr) {
		return &ServiceUnavailableError{Message: "evaluation service error: invalid response", Err: err}
	}

	return nil
}

func translateEvaluationError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrEvaluationNotFound
	}
	return err
}
