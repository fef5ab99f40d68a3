package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/samriddhi-college/chatbot-api/internal/models"
	"github.com/samriddhi-college/chatbot-api/internal/utils"
)

// OptionalAuth resolves the caller's role from a bearer token when one is
// presented, defaulting to the guest role for anonymous requests. A malformed
// or expired token is rejected rather than silently downgraded, so a caller
// never gets a guest answer because their session quietly lapsed.
func OptionalAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := strings.TrimSpace(c.Get("Authorization"))
		if authorization == "" {
			c.Locals("user_role", string(models.RoleGuest))
			return c.Next()
		}

		claims, err := parseBearer(authorization, secret)
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		applyClaims(c, claims)
		return c.Next()
	}
}

// JWTProtected rejects requests without a valid bearer token. Used for the
// admin surfaces where anonymous access makes no sense.
func JWTProtected(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := strings.TrimSpace(c.Get("Authorization"))
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		claims, err := parseBearer(authorization, secret)
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		applyClaims(c, claims)
		return c.Next()
	}
}

func parseBearer(authorization, secret string) (jwt.MapClaims, error) {
	const bearer = "bearer "
	if !strings.HasPrefix(strings.ToLower(authorization), bearer) {
		return nil, fmt.Errorf("not a bearer token")
	}

	tokenString := strings.TrimSpace(authorization[len(bearer):])
	if tokenString == "" {
		return nil, fmt.Errorf("empty token")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

func applyClaims(c *fiber.Ctx, claims jwt.MapClaims) {
	role := models.NormalizeRole(extractRoleFromClaims(claims))
	c.Locals("user_role", string(role))

	if email := extractEmailFromClaims(claims); email != "" {
		c.Locals("user_email", email)
	}
}

func extractRoleFromClaims(claims jwt.MapClaims) string {
	for _, key := range []string{"role", "roles"} {
		if value, ok := claims[key]; ok {
			if role := normalizeRoleClaim(value); role != "" {
				return role
			}
		}
	}
	return ""
}

func normalizeRoleClaim(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.ToLower(strings.TrimSpace(v))
	case []interface{}:
		for _, item := range v {
			if str, ok := item.(string); ok {
				if role := strings.ToLower(strings.TrimSpace(str)); role != "" {
					return role
				}
			}
		}
	}
	return ""
}

func extractEmailFromClaims(claims jwt.MapClaims) string {
	for _, key := range []string{"email", "sub"} {
		if value, ok := claims[key]; ok {
			if str, ok := value.(string); ok && strings.Contains(str, "@") {
				return strings.ToLower(strings.TrimSpace(str))
			}
		}
	}
	return ""
}

// RoleFromContext returns the request's resolved role, guest when absent.
func RoleFromContext(c *fiber.Ctx) models.Role {
	if value := c.Locals("user_role"); value != nil {
		if role, ok := value.(string); ok {
			return models.NormalizeRole(role)
		}
	}
	return models.RoleGuest
}

// EmailFromContext returns the authenticated caller's email, if any.
func EmailFromContext(c *fiber.Ctx) string {
	if value := c.Locals("user_email"); value != nil {
		if email, ok := value.(string); ok {
			return email
		}
	}
	return ""
}
