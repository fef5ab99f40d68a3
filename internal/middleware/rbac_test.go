package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/samriddhi-college/chatbot-api/internal/models"
)

func rbacApp(role string) *fiber.App {
	app := fiber.New()
	if role != "" {
		app.Use(func(c *fiber.Ctx) error {
			c.Locals("user_role", role)
			return c.Next()
		})
	}
	app.Use(RequireRole(models.RoleAdmin, models.RoleTeacher))
	app.Get("/admin", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestRequireRoleAllowsStaff(t *testing.T) {
	for _, role := range []string{"admin", "teacher"} {
		app := rbacApp(role)
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/admin", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode, "role %s", role)
	}
}

func TestRequireRoleRejectsStudentsAndGuests(t *testing.T) {
	for _, role := range []string{"student", "guest", ""} {
		app := rbacApp(role)
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/admin", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusForbidden, resp.StatusCode, "role %q", role)
	}
}
