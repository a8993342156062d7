package middleware

import (
	"strings"

	"prompt-arena/config"
	"prompt-arena/models"
	"prompt-arena/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// RequireAuth validates the bearer token and loads the user into
// c.Locals("current_user"). Every failure mode returns the same body so a
// caller cannot distinguish a missing token from a bad or expired one.
func RequireAuth(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			return unauthorized(c)
		}

		userID, err := services.DecodeAccessToken(strings.TrimSpace(header[len(prefix):]), cfg.JWTSecret)
		if err != nil {
			return unauthorized(c)
		}

		var user models.User
		if err := db.First(&user, "id = ?", userID).Error; err != nil {
			return unauthorized(c)
		}

		c.Locals("current_user", &user)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx) error {
	c.Set("WWW-Authenticate", "Bearer")
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "Invalid authentication credentials",
	})
}
