package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/samriddhi-college/chatbot-api/internal/models"
	"github.com/samriddhi-college/chatbot-api/internal/utils"
)

// RequireRole gates a route on the caller's directory role. Unknown or
// missing roles normalise to guest and are refused.
func RequireRole(roles ...models.Role) fiber.Handler {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[models.NormalizeRole(string(role))] = struct{}{}
	}
	delete(allowed, models.RoleGuest)

	return func(c *fiber.Ctx) error {
		if _, ok := allowed[RoleFromContext(c)]; !ok {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}
