package middleware

import (
	"crypto/subtle"
	"errors"

	"vbs_tickets/config"
	"vbs_tickets/constants"
	"vbs_tickets/utils"

	"github.com/gofiber/fiber/v2"
)

// RequireAdmin guards operator endpoints with the shared X-Admin-Key header.
// Websocket clients cannot set headers, so a ?key= query param is accepted too.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		adminKey := config.Config("ADMIN_KEY")
		key := c.Get("X-Admin-Key")
		if key == "" {
			key = c.Query("key")
		}
		if adminKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(adminKey)) != 1 {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, constants.UNAUTHORIZED, errors.New("invalid admin key"))
		}
		c.Locals("operator", key)
		return c.Next()
	}
}
