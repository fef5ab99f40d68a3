package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/samriddhi-college/chatbot-api/internal/config"
	"github.com/samriddhi-college/chatbot-api/internal/utils"
)

// HealthResponse reports service identity plus the answering configuration,
// so operators can confirm which model a deployment is answering with.
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Service     string    `json:"service"`
	Environment string    `json:"environment"`
	Provider    string    `json:"provider"`
	Model       string    `json:"model"`
}

// HealthCheck returns a handler that reports application health information.
func HealthCheck(cfg config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
			Provider:    cfg.AIProvider,
			Model:       cfg.AIModel,
		}

		return utils.SendSuccess(c, "service healthy", payload)
	}
}
