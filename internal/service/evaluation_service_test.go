package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/leetnote-go-api/internal/dto"
	"github.com/noah-isme/leetnote-go-api/internal/models"
	"github.com/noah-isme/leetnote-go-api/internal/repository"
	"github.com/noah-isme/leetnote-go-api/internal/utils"
	"github.com/noah-isme/leetnote-go-api/pkg/ai"
)

type stubCompleter struct {
	response string
	err      error
	prompts  []string
}

func (s *stubCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

type recordingPublisher struct {
	events []dto.EvaluationCreatedEvent
	err    error
}

func (p *recordingPublisher) PublishEvaluationCreated(ctx context.Context, event dto.EvaluationCreatedEvent) error {
	p.events = append(p.events, event)
	return p.err
}

type fixedClock struct {
	current time.Time
}

func (c *fixedClock) now() time.Time {
	c.current = c.current.Add(time.Second)
	return c.current
}

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Problem{},
		&models.UserProblemStatus{},
		&models.Submission{},
		&models.Evaluation{},
		&models.LeetcodeProfile{},
	))
	return db
}

func newEvaluationServiceForTest(t *testing.T, db *gorm.DB, completer ai.Completer, publisher EvaluationPublisher) (*evaluationService, *fixedClock) {
	t.Helper()

	svc := NewEvaluationService(
		repository.NewProblemRepository(db),
		repository.NewSubmissionRepository(db),
		repository.NewEvaluationRepository(db),
		repository.NewTransactor(db),
		completer,
		publisher,
		utils.NewValidator(),
		zerolog.Nop(),
	).(*evaluationService)

	clock := &fixedClock{current: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)}
	svc.now = clock.now
	return svc, clock
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(model).Count(&count).Error)
	return count
}

func seedHistory(t *testing.T, db *gorm.DB, clock *fixedClock, userID, problemID uint, n int) []models.Submission {
	t.Helper()

	submissions := make([]models.Submission, 0, n)
	for i := 0; i < n; i++ {
		at := clock.now()
		submission := models.Submission{UserID: userID, ProblemID: problemID, SolutionText: fmt.Sprintf("attempt %d", i), CreatedAt: at}
		require.NoError(t, db.Create(&submission).Error)
		evaluation := models.Evaluation{
			SubmissionID: submission.ID,
			Version:      models.EvaluationVersion,
			Payload:      datatypes.NewJSONType(ai.EvaluationPayload{Rating: 2, Issue: []string{"a"}, Feedback: []string{"b"}}),
			CreatedAt:    at,
		}
		require.NoError(t, db.Omit("Submission").Create(&evaluation).Error)
		submissions = append(submissions, submission)
	}
	return submissions
}

func TestSubmitStoresParsedEvaluation(t *testing.T) {
	db := setupServiceDB(t)
	require.NoError(t, db.Create(&models.Problem{ID: 42, Title: "Array Sum", Slug: "array-sum", Difficulty: models.DifficultyEasy, Description: "Sum every element of a."}).Error)

	completer := &stubCompleter{response: `{"rating":4,"issue":["minor"],"feedback":["good"]}`}
	publisher := &recordingPublisher{}
	svc, _ := newEvaluationServiceForTest(t, db, completer, publisher)

	payload, err := svc.Submit(context.Background(), 1, dto.EvaluationRequest{ProblemID: 42, SolutionText: "for i in range(n): sum+=a[i]"})
	require.NoError(t, err)
	require.Equal(t, ai.EvaluationPayload{Rating: 4, Issue: []string{"minor"}, Feedback: []string{"good"}}, payload)

	require.Len(t, completer.prompts, 1)
	require.Contains(t, completer.prompts[0], "Sum every element of a.")
	require.Contains(t, completer.prompts[0], "for i in range(n): sum+=a[i]")

	require.Equal(t, int64(1), countRows(t, db, &models.Submission{}))
	require.Equal(t, int64(1), countRows(t, db, &models.Evaluation{}))

	var evaluation models.Evaluation
	require.NoError(t, db.First(&evaluation).Error)
	require.Equal(t, models.EvaluationVersion, evaluation.Version)
	require.Equal(t, payload, evaluation.Payload.Data())

	require.Len(t, publisher.events, 1)
	require.Equal(t, evaluation.ID, publisher.events[0].EvaluationID)
	require.Equal(t, uint(42), publisher.events[0].ProblemID)
	require.Equal(t, 4, publisher.events[0].Rating)
	require.False(t, publisher.events[0].Fallback)
}

func TestSubmitUsesPlaceholderForMissingProblem(t *testing.T) {
	db := setupServiceDB(t)
	completer := &stubCompleter{response: `{"rating":1,"issue":["No pseudocode"],"feedback":["Write steps"]}`}
	svc, _ := newEvaluationServiceForTest(t, db, completer, nil)

	_, err := svc.Submit(context.Background(), 1, dto.EvaluationRequest{ProblemID: 99, SolutionText: "do it"})
	require.NoError(t, err)

	require.Len(t, completer.prompts, 1)
	require.Contains(t, completer.prompts[0], "No problem found.")
}

func TestSubmitStoresFallbackForUnparseableOutput(t *testing.T) {
	db := setupServiceDB(t)
	completer := &stubCompleter{response: "Sorry, I cannot help with that."}
	publisher := &recordingPublisher{err: errors.New("bus down")}
	svc, _ := newEvaluationServiceForTest(t, db, completer, publisher)

	payload, err := svc.Submit(context.Background(), 1, dto.EvaluationRequest{ProblemID: 5, SolutionText: "loop"})
	require.NoError(t, err)
	require.Equal(t, ai.FallbackPayload(), payload)
	require.Equal(t, int64(1), countRows(t, db, &models.Evaluation{}))
	require.Len(t, publisher.events, 1)
	require.True(t, publisher.events[0].Fallback)
}

func TestSubmitConnectionFailureKeepsSubmission(t *testing.T) {
	db := setupServiceDB(t)
	completer := &stubCompleter{err: &ai.ConnectionError{Err: errors.New("dial tcp: connection refused")}}
	publisher := &recordingPublisher{}
	svc, clock := newEvaluationServiceForTest(t, db, completer, publisher)
	seedHistory(t, db, clock, 1, 42, 3)

	_, err := svc.Submit(context.Background(), 1, dto.EvaluationRequest{ProblemID: 42, SolutionText: "for each x: total += x"})
	require.Error(t, err)

	var unavailable *ServiceUnavailableError
	require.True(t, errors.As(err, &unavailable))
	require.Contains(t, unavailable.Error(), "connect")

	require.Equal(t, int64(4), countRows(t, db, &models.Submission{}), "new submission persists and nothing is trimmed")
	require.Equal(t, int64(3), countRows(t, db, &models.Evaluation{}))
	require.Empty(t, publisher.events)
}

func TestSubmitUpstreamFailureReportsStatus(t *testing.T) {
	db := setupServiceDB(t)
	completer := &stubCompleter{err: &ai.UpstreamError{StatusCode: 502}}
	svc, _ := newEvaluationServiceForTest(t, db, completer, nil)

	_, err := svc.Submit(context.Background(), 1, dto.EvaluationRequest{ProblemID: 1, SolutionText: "x"})

	var unavailable *ServiceUnavailableError
	require.True(t, errors.As(err, &unavailable))
	require.Equal(t, "evaluation service error: 502 Bad Gateway", unavailable.Message)

	var upstream *ai.UpstreamError
	require.True(t, errors.As(err, &upstream))
	require.Equal(t, int64(0), countRows(t, db, &models.Evaluation{}))
}

func TestSubmitProtocolFailureIsUnavailable(t *testing.T) {
	db := setupServiceDB(t)
	completer := &stubCompleter{err: &ai.ProtocolError{Reason: "no choices returned"}}
	svc, _ := newEvaluationServiceForTest(t, db, completer, nil)

	_, err := svc.Submit(context.Background(), 1, dto.EvaluationRequest{ProblemID: 1, SolutionText: "x"})

	var unavailable *ServiceUnavailableError
	require.True(t, errors.As(err, &unavailable))
	require.Equal(t, "evaluation service error: invalid response", unavailable.Message)
}

func TestSubmitRejectsInvalidRequest(t *testing.T) {
	db := setupServiceDB(t)
	completer := &stubCompleter{response: "{}"}
	svc, _ := newEvaluationServiceForTest(t, db, completer, nil)

	_, err := svc.Submit(context.Background(), 1, dto.EvaluationRequest{ProblemID: 1, SolutionText: "   "})
	require.Error(t, err)

	_, err = svc.Submit(context.Background(), 1, dto.EvaluationRequest{SolutionText: "loop"})
	require.Error(t, err)

	require.Empty(t, completer.prompts)
	require.Equal(t, int64(0), countRows(t, db, &models.Submission{}))
}

func TestSubmitKeepsThreeNewestSubmissions(t *testing.T) {
	db := setupServiceDB(t)
	completer := &stubCompleter{response: `{"rating":5,"issue":["No major issues found"],"feedback":["Nice"]}`}
	svc, clock := newEvaluationServiceForTest(t, db, completer, nil)

	existing := seedHistory(t, db, clock, 1, 42, 5)
	other := seedHistory(t, db, clock, 2, 42, 4)

	_, err := svc.Submit(context.Background(), 1, dto.EvaluationRequest{ProblemID: 42, SolutionText: "newest"})
	require.NoError(t, err)

	var remaining []models.Submission
	require.NoError(t, db.Where("user_id = ? AND problem_id = ?", 1, 42).Order("created_at DESC").Find(&remaining).Error)
	require.Len(t, remaining, RetainedSubmissions)
	require.Equal(t, "newest", remaining[0].SolutionText)
	require.Equal(t, existing[4].ID, remaining[1].ID)
	require.Equal(t, existing[3].ID, remaining[2].ID)

	var orphaned int64
	require.NoError(t, db.Model(&models.Evaluation{}).
		Where("submission_id IN ?", []uint{existing[0].ID, existing[1].ID, existing[2].ID}).
		Count(&orphaned).Error)
	require.Zero(t, orphaned)

	require.Equal(t, int64(len(other)+RetainedSubmissions), countRows(t, db, &models.Submission{}))
	require.Equal(t, int64(len(other)+RetainedSubmissions), countRows(t, db, &models.Evaluation{}))
}

func TestEvaluationDetailHidesOtherUsersEvaluations(t *testing.T) {
	db := setupServiceDB(t)
	svc, clock := newEvaluationServiceForTest(t, db, &stubCompleter{}, nil)
	require.NoError(t, db.Create(&models.Problem{ID: 7, Title: "Two Sum", Slug: "two-sum", Difficulty: models.DifficultyEasy}).Error)

	foreign := seedHistory(t, db, clock, 2, 7, 1)
	var evaluation models.Evaluation
	require.NoError(t, db.Where("submission_id = ?", foreign[0].ID).First(&evaluation).Error)

	_, err := svc.EvaluationDetail(context.Background(), 1, evaluation.ID)
	require.ErrorIs(t, err, ErrEvaluationNotFound)

	detail, err := svc.EvaluationDetail(context.Background(), 2, evaluation.ID)
	require.NoError(t, err)
	require.Equal(t, "Two Sum", detail.ProblemTitle)
	require.Equal(t, models.DifficultyEasy, detail.Difficulty)
	require.Equal(t, "attempt 0", detail.SolutionText)

	_, err = svc.EvaluationDetail(context.Background(), 2, 12345)
	require.ErrorIs(t, err, ErrEvaluationNotFound)
}

func TestEvaluationQueriesDegradeForDeletedProblems(t *testing.T) {
	db := setupServiceDB(t)
	svc, clock := newEvaluationServiceForTest(t, db, &stubCompleter{}, nil)
	require.NoError(t, db.Create(&models.Problem{ID: 1, Title: "Two Sum", Slug: "two-sum", Difficulty: models.DifficultyEasy}).Error)

	known := seedHistory(t, db, clock, 1, 1, 2)
	seedHistory(t, db, clock, 1, 404, 1)
	ctx := context.Background()

	items, err := svc.AllLatestEvaluations(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, uint(404), items[0].ProblemID)
	require.Equal(t, "Unknown Problem", items[0].ProblemTitle)
	require.Equal(t, "Two Sum", items[1].ProblemTitle)

	detail, err := svc.LastEvaluationDetail(ctx, 1, 404)
	require.NoError(t, err)
	require.Equal(t, "Unknown Problem", detail.ProblemTitle)
	require.Empty(t, detail.Difficulty)

	latest, err := svc.LastEvaluation(ctx, 1, 1)
	require.NoError(t, err)
	require.Equal(t, known[1].ID, latest.SubmissionID)
	require.Equal(t, uint(1), latest.ProblemID)

	history, err := svc.History(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.True(t, history[0].CreatedAt.After(history[1].CreatedAt))

	_, err = svc.LastEvaluation(ctx, 1, 999)
	require.ErrorIs(t, err, ErrEvaluationNotFound)

	_, err = svc.LastEvaluationDetail(ctx, 1, 999)
	require.ErrorIs(t, err, ErrEvaluationNotFound)
}
