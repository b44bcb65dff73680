package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/leetnote-go-api/internal/dto"
	"github.com/noah-isme/leetnote-go-api/internal/service"
	"github.com/noah-isme/leetnote-go-api/internal/utils"
)

// EvaluationHandler exposes the pseudocode evaluation endpoints.
type EvaluationHandler struct {
	service service.EvaluationService
	logger  zerolog.Logger
}

// NewEvaluationHandler constructs an evaluation handler.
func NewEvaluationHandler(service service.EvaluationService, logger zerolog.Logger) *EvaluationHandler {
	return &EvaluationHandler{
		service: service,
		logger:  logger.With().Str("component", "evaluation_handler").Logger(),
	}
}

// Register mounts the evaluation routes.
func (h *EvaluationHandler) Register(router fiber.Router) {
	router.Post("", h.submit)
	router.Get("/last", h.last)
	router.Get("/new", h.latest)
	router.Get("/all", h.all)
	router.Get("/history", h.history)
}

func (h *EvaluationHandler) submit(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return h.handleError(c, errMissingUser)
	}

	var payload dto.EvaluationRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Submit(c.UserContext(), userID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "evaluation completed", result)
}

func (h *EvaluationHandler) last(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return h.handleError(c, errMissingUser)
	}

	evaluationID, err := parseQueryUint(c, "evaluationId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	problemID, err := parseQueryUint(c, "problemId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var detail dto.EvaluationDetailResponse
	switch {
	case evaluationID != nil:
		detail, err = h.service.EvaluationDetail(c.UserContext(), userID, *evaluationID)
	case problemID != nil:
		detail, err = h.service.LastEvaluationDetail(c.UserContext(), userID, *problemID)
	default:
		return utils.SendError(c, fiber.StatusBadRequest, "evaluationId or problemId is required")
	}
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "evaluation retrieved", detail)
}

func (h *EvaluationHandler) latest(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return h.handleError(c, errMissingUser)
	}

	problemID, err := requireQueryUint(c, "problemId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	evaluation, err := h.service.LastEvaluation(c.UserContext(), userID, problemID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "evaluation retrieved", evaluation)
}

func (h *EvaluationHandler) all(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return h.handleError(c, errMissingUser)
	}

	items, err := h.service.AllLatestEvaluations(c.UserContext(), userID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "evaluations retrieved", items)
}

func (h *EvaluationHandler) history(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return h.handleError(c, errMissingUser)
	}

	problemID, err := requireQueryUint(c, "problemId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	evaluations, err := h.service.History(c.UserContext(), userID, problemID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "evaluations retrieved", evaluations)
}

func (h *EvaluationHandler) handleError(c *fiber.Ctx, err error) error {
	var unavailable *service.ServiceUnavailableError
	switch {
	case errors.Is(err, errMissingUser):
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrEvaluationNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "evaluation not found")
	case errors.As(err, &unavailable):
		return utils.SendError(c, fiber.StatusServiceUnavailable, unavailable.Message)
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("evaluation request failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
