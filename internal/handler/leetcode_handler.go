package handler

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/leetnote-go-api/internal/dto"
	"github.com/noah-isme/leetnote-go-api/internal/service"
	"github.com/noah-isme/leetnote-go-api/internal/utils"
)

// LeetcodeHandler exposes the linked LeetCode account endpoints.
type LeetcodeHandler struct {
	service   service.LeetcodeService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewLeetcodeHandler constructs a LeetCode handler.
func NewLeetcodeHandler(service service.LeetcodeService, validator *validator.Validate, logger zerolog.Logger) *LeetcodeHandler {
	return &LeetcodeHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "leetcode_handler").Logger(),
	}
}

// Register mounts the LeetCode routes.
func (h *LeetcodeHandler) Register(router fiber.Router) {
	router.Get("/profile", h.profile)
	router.Post("/username", h.saveUsername)
	router.Put("/username", h.updateUsername)
	router.Post("/refresh", h.refresh)
}

func (h *LeetcodeHandler) profile(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, errMissingUser.Error())
	}

	stats, err := h.service.Stats(c.UserContext(), userID)
	if err != nil {
		return h.handleError(c, err)
	}
	if stats == nil {
		return h.handleError(c, service.ErrLeetcodeProfileMissing)
	}

	return utils.SendSuccess(c, "leetcode profile retrieved", stats)
}

func (h *LeetcodeHandler) saveUsername(c *fiber.Ctx) error {
	return h.withUsername(c, h.service.SaveUsername, "leetcode username saved")
}

func (h *LeetcodeHandler) updateUsername(c *fiber.Ctx) error {
	return h.withUsername(c, h.service.UpdateUsername, "leetcode username updated")
}

func (h *LeetcodeHandler) withUsername(
	c *fiber.Ctx,
	apply func(ctx context.Context, userID uint, username string) (dto.LeetcodeStatsResponse, error),
	message string,
) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, errMissingUser.Error())
	}

	var payload dto.LeetcodeUsernameRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return h.handleError(c, err)
	}

	stats, err := apply(c.UserContext(), userID, payload.Username)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, message, stats)
}

func (h *LeetcodeHandler) refresh(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, errMissingUser.Error())
	}

	stats, err := h.service.Refresh(c.UserContext(), userID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "leetcode stats refreshed", stats)
}

func (h *LeetcodeHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrLeetcodeProfileMissing):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrLeetcodeUserNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrLeetcodeUsernameTaken):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "user not found")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("leetcode request failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
