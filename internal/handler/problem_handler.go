package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/leetnote-go-api/internal/dto"
	"github.com/noah-isme/leetnote-go-api/internal/service"
	"github.com/noah-isme/leetnote-go-api/internal/utils"
)

// ProblemHandler exposes the problem catalogue.
type ProblemHandler struct {
	service service.ProblemService
	logger  zerolog.Logger
}

// NewProblemHandler constructs a problem handler.
func NewProblemHandler(service service.ProblemService, logger zerolog.Logger) *ProblemHandler {
	return &ProblemHandler{
		service: service,
		logger:  logger.With().Str("component", "problem_handler").Logger(),
	}
}

// Register mounts the catalogue routes.
func (h *ProblemHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/detail", h.detail)
	router.Put("/:problemId/status", h.updateStatus)
}

func (h *ProblemHandler) list(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, errMissingUser.Error())
	}

	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	size, err := parseQueryInt(c, "size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid size")
	}
	isSolved, err := parseOptionalBool(c, "isSolved")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	isFavorite, err := parseOptionalBool(c, "isFavorite")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	filter := dto.ProblemListFilter{
		Keyword:      c.Query("keyword"),
		Difficulties: splitAndTrim(c.Query("difficulties")),
		IsSolved:     isSolved,
		IsFavorite:   isFavorite,
		Page:         page,
		Size:         size,
	}

	result, err := h.service.List(c.UserContext(), userID, filter)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.OK(c, result.Items, "problems retrieved", result.Pagination)
}

func (h *ProblemHandler) detail(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, errMissingUser.Error())
	}

	problemID, err := requireQueryUint(c, "problemId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	detail, err := h.service.Detail(c.UserContext(), userID, problemID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "problem retrieved", detail)
}

func (h *ProblemHandler) updateStatus(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, errMissingUser.Error())
	}

	problemID, err := parseUintParam(c, "problemId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	isSolved, err := parseOptionalBool(c, "isSolved")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	isFavorite, err := parseOptionalBool(c, "isFavorite")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	if isSolved == nil || isFavorite == nil {
		return utils.SendError(c, fiber.StatusBadRequest, "isSolved and isFavorite are required")
	}

	status, err := h.service.UpdateStatus(c.UserContext(), userID, problemID, *isSolved, *isFavorite)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "problem status updated", status)
}

func (h *ProblemHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrProblemNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "problem not found")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("problem request failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
