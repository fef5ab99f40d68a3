package handler

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/samriddhi-college/chatbot-api/internal/dto"
	"github.com/samriddhi-college/chatbot-api/internal/middleware"
	"github.com/samriddhi-college/chatbot-api/internal/models"
	"github.com/samriddhi-college/chatbot-api/internal/observability"
	"github.com/samriddhi-college/chatbot-api/internal/repository"
	"github.com/samriddhi-college/chatbot-api/internal/service"
	"github.com/samriddhi-college/chatbot-api/internal/utils"
)

// ChatService is the slice of the query engine the transport layer needs.
type ChatService interface {
	Respond(ctx context.Context, q service.Question) service.Result
}

// ChatHandler wires the chat endpoints, including the websocket upgrade.
type ChatHandler struct {
	service   ChatService
	directory repository.DirectoryRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewChatHandler creates a chat handler instance.
func NewChatHandler(svc ChatService, directory repository.DirectoryRepository, validate *validator.Validate, logger zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		service:   svc,
		directory: directory,
		validator: validate,
		logger:    logger.With().Str("component", "chat_handler").Logger(),
	}
}

// Register binds chat routes under the provided router group.
func (h *ChatHandler) Register(router fiber.Router) {
	router.Post("/chat", h.chat)

	router.Use("/ws/chat", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("correlation_id", middleware.GetCorrelationID(c))
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get("/ws/chat", websocket.New(h.handleConnection))
}

func (h *ChatHandler) chat(c *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	role := middleware.RoleFromContext(c)
	correlationID := middleware.GetCorrelationID(c)
	caller := h.resolveCaller(ctx, role, middleware.EmailFromContext(c))

	result := h.service.Respond(ctx, service.Question{
		Text:          req.Message,
		Role:          role,
		Caller:        caller,
		CorrelationID: correlationID,
	})

	return utils.SendSuccess(c, "answer generated", dto.ChatResponse{
		Reply:         result.Answer,
		Intent:        string(result.Intent),
		Role:          string(role),
		CorrelationID: correlationID,
	})
}

func (h *ChatHandler) handleConnection(conn *websocket.Conn) {
	observability.ChatConnections().Inc()

	role := models.NormalizeRole(localString(conn, "user_role"))
	correlationID := localString(conn, "correlation_id")
	caller := h.resolveCaller(context.Background(), role, localString(conn, "user_email"))

	h.logger.Info().Str("role", string(role)).Str("correlation_id", correlationID).Msg("chat websocket connected")

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			break
		}

		message := decodeWSMessage(payload)
		result := h.service.Respond(context.Background(), service.Question{
			Text:          message,
			Role:          role,
			Caller:        caller,
			CorrelationID: correlationID,
		})

		reply := dto.ChatResponse{
			Reply:  result.Answer,
			Intent: string(result.Intent),
			Role:   string(role),
		}
		if err := conn.WriteJSON(reply); err != nil {
			break
		}
	}

	h.logger.Info().Str("correlation_id", correlationID).Msg("chat websocket disconnected")
}

// resolveCaller maps an authenticated student's email to their directory
// record so self-referential questions can be answered. Lookup failures leave
// the caller anonymous rather than failing the request.
func (h *ChatHandler) resolveCaller(ctx context.Context, role models.Role, email string) *models.Student {
	if role != models.RoleStudent || email == "" {
		return nil
	}

	student, err := h.directory.FindStudentByEmail(ctx, email)
	if err != nil {
		h.logger.Warn().Err(err).Msg("caller lookup failed")
		return nil
	}
	return student
}

// decodeWSMessage accepts either a ChatRequest JSON payload or a bare text
// frame.
func decodeWSMessage(payload []byte) string {
	var req dto.ChatRequest
	if err := json.Unmarshal(payload, &req); err == nil && req.Message != "" {
		return req.Message
	}
	return strings.TrimSpace(string(payload))
}

func localString(conn *websocket.Conn, key string) string {
	if value := conn.Locals(key); value != nil {
		if str, ok := value.(string); ok {
			return strings.TrimSpace(str)
		}
	}
	return ""
}
