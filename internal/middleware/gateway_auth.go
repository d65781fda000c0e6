package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-challenge-api/internal/utils"
)

// GatewayAuth guards the webhook the messaging gateway posts chat updates to.
// The gateway authenticates with a single shared bearer token rather than a
// per-user JWT.
func GatewayAuth(token string) fiber.Handler {
	expected := []byte(strings.TrimSpace(token))

	return func(c *fiber.Ctx) error {
		if len(expected) == 0 {
			return utils.SendError(c, fiber.StatusServiceUnavailable, "gateway access is not configured")
		}

		authorization := c.Get("Authorization")
		const bearer = "Bearer "
		if !strings.HasPrefix(authorization, bearer) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		presented := []byte(strings.TrimSpace(authorization[len(bearer):]))
		if subtle.ConstantTimeCompare(expected, presented) != 1 {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid gateway token")
		}

		c.Locals("user_role", "gateway")
		return c.Next()
	}
}
