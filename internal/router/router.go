package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/samriddhi-college/chatbot-api/internal/config"
	"github.com/samriddhi-college/chatbot-api/internal/handler"
	"github.com/samriddhi-college/chatbot-api/internal/middleware"
	"github.com/samriddhi-college/chatbot-api/internal/models"
	"github.com/samriddhi-college/chatbot-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ChatHandler     *handler.ChatHandler
	QueryLogHandler *handler.QueryLogHandler
	OptionalAuth    fiber.Handler
	AdminAuth       fiber.Handler
	ChatRateLimit   fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	optionalAuth := deps.OptionalAuth
	if optionalAuth == nil {
		optionalAuth = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.ChatHandler != nil {
		chat := api.Group("", optionalAuth)
		if deps.ChatRateLimit != nil {
			chat = chat.Group("", deps.ChatRateLimit)
		}
		deps.ChatHandler.Register(chat)
	}

	if deps.QueryLogHandler != nil {
		adminAuth := deps.AdminAuth
		if adminAuth == nil {
			adminAuth = func(c *fiber.Ctx) error { return c.Next() }
		}
		admin := api.Group("/admin", adminAuth, middleware.RequireRole(models.RoleAdmin, models.RoleTeacher))
		deps.QueryLogHandler.Register(admin)
	}
}
