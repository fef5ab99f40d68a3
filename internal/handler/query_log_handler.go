package handler

import (
	"context"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/samriddhi-college/chatbot-api/internal/dto"
	"github.com/samriddhi-college/chatbot-api/internal/repository"
	"github.com/samriddhi-college/chatbot-api/internal/utils"
)

// QueryLogHandler exposes the processed-question audit log to admins.
type QueryLogHandler struct {
	repo      repository.QueryLogRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewQueryLogHandler creates a query log handler instance.
func NewQueryLogHandler(repo repository.QueryLogRepository, validate *validator.Validate, logger zerolog.Logger) *QueryLogHandler {
	return &QueryLogHandler{
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "query_log_handler").Logger(),
	}
}

// Register binds the query log routes under the provided router group.
func (h *QueryLogHandler) Register(router fiber.Router) {
	router.Get("/queries", h.list)
}

func (h *QueryLogHandler) list(c *fiber.Ctx) error {
	query := dto.QueryLogQuery{
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", 20),
		Role:     c.Query("role"),
		Intent:   c.Query("intent"),
	}
	if deniedRaw := c.Query("denied"); deniedRaw != "" {
		denied, err := strconv.ParseBool(deniedRaw)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid denied filter")
		}
		query.Denied = &denied
	}

	if err := h.validator.Struct(query); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	entries, total, err := h.repo.List(ctx, repository.QueryLogFilter{
		Page:     query.Page,
		PageSize: query.PageSize,
		Role:     query.Role,
		Intent:   query.Intent,
		Denied:   query.Denied,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("query log listing failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list queries")
	}

	meta := fiber.Map{
		"total":     total,
		"page":      query.Page,
		"page_size": query.PageSize,
	}
	return utils.OK(c, entries, "query log", meta)
}
